// Package dispatcher превращает расписание дня в задания.
//
// Dispatcher периодически (тиком) просматривает расписание текущего
// дня и для каждого наступившего слота ставит задание в Job Store.
// Постановка идемпотентна: ID задания наследуется от слота, повторный
// тик того же окна не создаёт дубликат.
//
// Структура:
//   - dispatcher.go — основная логика (Tick, Regenerate, propagate)
//   - control.go    — consumers RabbitMQ (управляющие команды, события завершения)
//
// Использование:
//
//	d := dispatcher.New(dispatcher.Config{
//	    Jobs:      jobStore,
//	    Schedules: scheduleStore,
//	    Settings:  settingsStore,
//	    Publisher: publisher, // опционально
//	    Logger:    logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в минуту)
//	if err := d.Tick(ctx); err != nil {
//	    logger.Error("dispatcher tick failed", "error", err)
//	}
//
// Leader Election:
//
// Dispatcher не реализует leader election самостоятельно.
// Это делается в main.go через pg_try_advisory_lock.
// Метод Tick() вызывается только лидером.
package dispatcher
