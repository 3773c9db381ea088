// Package session управляет браузерными сессиями платформ.
//
// Центральная гарантия: на пару (аккаунт, платформа) существует
// не более одной сессии, и все действия через неё строго
// последовательны. Последовательность обеспечивается конструкцией
// Session.Do (мьютекс + rate limiter), а не дисциплиной вызывающих.
//
// Структура:
//   - driver.go       — интерфейсы Driver и Context
//   - local_driver.go — локальный драйвер (файловый профиль)
//   - session.go      — Session: сериализация действий
//   - manager.go      — Manager: реестр сессий, lazy init
//   - profile.go      — блокировка каталога профиля
package session
