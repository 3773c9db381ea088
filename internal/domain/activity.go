package domain

// Platform — внешняя платформа, на которой выполняется автоматизация.
type Platform string

// Поддерживаемые платформы.
const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
)

// ActivityType — тип активности, назначаемый слоту расписания.
//
// Это закрытое перечисление: полный список задаётся статическим каталогом
// (Catalog), и маппинг на JobType является тотальным на уровне switch.
// Новая активность без ветки в JobType() не скомпилируется незамеченной —
// тесты каталога проверяют покрытие.
type ActivityType string

// Каталог активностей.
const (
	// ActivityTweet — публикация нового поста.
	ActivityTweet ActivityType = "tweet"

	// ActivityScrollEngage — просмотр ленты с реакциями (лайки, ответы).
	ActivityScrollEngage ActivityType = "scroll_engage"

	// ActivityFollowConnect — подписки и запросы на контакт.
	ActivityFollowConnect ActivityType = "follow_connect"

	// ActivityScanNotifications — проверка входящих уведомлений.
	ActivityScanNotifications ActivityType = "scan_notifications"

	// ActivityFetchAnalytics — сбор статистики по аккаунту.
	ActivityFetchAnalytics ActivityType = "fetch_analytics"

	// ActivityIdle — слот-заглушка: в этот интервал ничего не выполняется.
	// Генератор подставляет idle, когда ни одна активность не включена.
	ActivityIdle ActivityType = "idle"
)

// ActivityInfo — статические атрибуты активности.
type ActivityInfo struct {
	// Type — тип активности.
	Type ActivityType

	// Platform — платформа, на которой выполняется активность.
	Platform Platform

	// Priority — приоритет по умолчанию для создаваемых jobs (больше = раньше).
	Priority int
}

// catalog — статический каталог активностей.
// Порядок значим: балансировщик распределяет целочисленный остаток
// по первым ключам именно в этом порядке.
var catalog = []ActivityInfo{
	{Type: ActivityTweet, Platform: PlatformTwitter, Priority: 5},
	{Type: ActivityScrollEngage, Platform: PlatformTwitter, Priority: 3},
	{Type: ActivityFollowConnect, Platform: PlatformLinkedIn, Priority: 4},
	{Type: ActivityScanNotifications, Platform: PlatformLinkedIn, Priority: 2},
	{Type: ActivityFetchAnalytics, Platform: PlatformTwitter, Priority: 1},
}

// Catalog возвращает каталог активностей (без idle) в каноническом порядке.
func Catalog() []ActivityInfo {
	out := make([]ActivityInfo, len(catalog))
	copy(out, catalog)
	return out
}

// ActivityByType возвращает атрибуты активности из каталога.
func ActivityByType(t ActivityType) (ActivityInfo, bool) {
	for _, info := range catalog {
		if info.Type == t {
			return info, true
		}
	}
	return ActivityInfo{}, false
}

// JobType — тип job, исполняемый воркером.
type JobType string

// Типы jobs.
const (
	JobTypePost              JobType = "post"
	JobTypeEngage            JobType = "engage"
	JobTypeFollow            JobType = "follow"
	JobTypeScanNotifications JobType = "scan_notifications"
	JobTypeFetchAnalytics    JobType = "fetch_analytics"
)

// JobType возвращает тип job для активности.
//
// Маппинг тотален над каталогом. ok=false означает, что активность
// не порождает работу (idle) или не входит в каталог — диспетчер
// в этом случае помечает слот как skipped, это ошибка конфигурации,
// а не сбой.
func (t ActivityType) JobType() (JobType, bool) {
	switch t {
	case ActivityTweet:
		return JobTypePost, true
	case ActivityScrollEngage:
		return JobTypeEngage, true
	case ActivityFollowConnect:
		return JobTypeFollow, true
	case ActivityScanNotifications:
		return JobTypeScanNotifications, true
	case ActivityFetchAnalytics:
		return JobTypeFetchAnalytics, true
	default:
		return "", false
	}
}

// Distribution — распределение весов по активностям.
//
// Инвариант: сумма значений равна 100. Поддерживается балансировщиком
// (plan.Rebalance) при каждой мутации; генератор читает распределение
// только на чтение.
type Distribution map[ActivityType]int

// Sum возвращает сумму весов.
func (d Distribution) Sum() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// Clone возвращает копию распределения.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DefaultDistribution возвращает стартовое распределение: веса разделены
// поровну между активностями каталога, остаток — первым ключам.
func DefaultDistribution() Distribution {
	d := make(Distribution, len(catalog))
	base := 100 / len(catalog)
	rem := 100 % len(catalog)
	for i, info := range catalog {
		v := base
		if i < rem {
			v++
		}
		d[info.Type] = v
	}
	return d
}

// Enablement — плоская карта активность → эффективный вес.
// Значение > 0 означает, что активность включена. Потребляется генератором.
type Enablement map[ActivityType]int
