// Package plan содержит чистые алгоритмы планирования: балансировку весов
// активностей и генерацию дневного расписания.
//
// Структура:
//   - balance.go  — Rebalance: пересчёт распределения после изменения ключа
//   - generate.go — Generate/FillMissing: раскрой суток на 96 слотов round-robin
//
// Пакет не имеет внешних зависимостей кроме domain и не обращается
// к хранилищам: вход и выход — обычные значения, что делает инварианты
// (сумма весов 100, равномерное покрытие дня) напрямую тестируемыми.
package plan
