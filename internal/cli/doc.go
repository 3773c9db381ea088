// Package cli реализует команды инструмента presence.
//
// Структура:
//   - client.go       — HTTP-клиент для Presence API
//   - output.go       — форматирование вывода (таблица / JSON)
//   - distribution.go — команды distribution (show, set, enable, disable)
//   - schedule.go     — команды schedule (show, regenerate)
//   - jobs.go         — команды jobs (list, show)
//   - dispatch.go     — команды dispatch (status, pause, resume, tick)
//   - session.go      — команды session (list, login, disconnect)
//
// Все команды ходят в HTTP API; исключение — session login,
// которая работает с каталогом профилей напрямую.
package cli
