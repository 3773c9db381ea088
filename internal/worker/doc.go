// Package worker выполняет задания из очереди.
//
// # Обзор
//
// Worker Pool — компонент, который забирает задания из Job Store
// и выполняет их через браузерные сессии. Отвечает за:
//
//   - Периодический опрос очереди заданий (polling — источник истины)
//   - Реакцию на подсказки из RabbitMQ (event-driven, ускоряет подхват)
//   - Атомарный захват задания (никакое задание не достаётся двум воркерам)
//   - Выполнение действия через Session.Do (строгая сериализация на аккаунт)
//   - Фиксацию результата в Job Store и публикацию события завершения
//
// Пулы масштабируются горизонтально: несколько процессов опрашивают
// один Job Store, атомарный захват исключает двойное выполнение.
//
// # Executor
//
// Интерфейс для выполнения конкретного типа задания:
//
//	type Executor interface {
//	    Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error)
//	}
//
// Executor получает драйверный контекст внутри Session.Do — он не может
// выполниться параллельно с другим действием того же аккаунта.
//
// # Registry
//
// Реестр executor'ов по паре (платформа, тип задания). NewRegistry()
// регистрирует стандартный набор: post, engage, follow,
// scan_notifications, fetch_analytics.
//
// # Ошибки
//
// Провал задания постоянен: воркер не делает retry. Повторение
// активности обеспечивают слоты следующего дня, а не переигрывание
// провалившегося задания.
package worker
