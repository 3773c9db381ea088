package plan

import (
	"math"
	"sort"

	"github.com/shaiso/Presence/internal/domain"
)

// Rebalance пересчитывает распределение весов после изменения одного ключа.
//
// Вход: прежнее распределение, изменённый ключ и его новое значение
// (обрезается до [0,100]). Выход: новое распределение с суммой ровно 100
// и D'[key]=value. Прежнее распределение не мутируется.
//
// Алгоритм:
//  1. target = 100 - value — требуемая сумма остальных ключей.
//  2. Если их прежняя сумма 0 — target делится поровну, целочисленный
//     остаток достаётся первым ключам в каноническом порядке.
//  3. Иначе каждый ключ масштабируется на target/prevSum и округляется;
//     дрейф округления корректируется по ±1: дефицит добирают ключи
//     с наибольшим дробным остатком, профицит снимается с ключей
//     с наибольшим текущим значением (чтобы не уйти в минус).
//
// Отрицательных весов не бывает. При единственном «другом» ключе результат —
// точное дополнение 100-value.
func Rebalance(prev domain.Distribution, key domain.ActivityType, value int) domain.Distribution {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	others := orderedKeys(prev, key)

	next := make(domain.Distribution, len(others)+1)
	next[key] = value

	// Без других ключей сумму 100 обеспечить нечем, кроме самого ключа.
	if len(others) == 0 {
		next[key] = 100
		return next
	}

	target := 100 - value

	prevSum := 0
	for _, k := range others {
		prevSum += prev[k]
	}

	if prevSum == 0 {
		base := target / len(others)
		rem := target % len(others)
		for i, k := range others {
			v := base
			if i < rem {
				v++
			}
			next[k] = v
		}
		return next
	}

	// Пропорциональное масштабирование с запоминанием дробных остатков.
	type scaled struct {
		key  domain.ActivityType
		val  int
		frac float64
	}
	vals := make([]scaled, len(others))
	total := value
	for i, k := range others {
		exact := float64(prev[k]) * float64(target) / float64(prevSum)
		v := int(math.Round(exact))
		vals[i] = scaled{key: k, val: v, frac: exact - math.Floor(exact)}
		total += v
	}

	// Дефицит: +1 ключам с наибольшим дробным остатком, по кругу.
	if total < 100 {
		order := make([]int, len(vals))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return vals[order[a]].frac > vals[order[b]].frac
		})
		for i := 0; total < 100; i++ {
			vals[order[i%len(order)]].val++
			total++
		}
	}

	// Профицит: -1 ключу с наибольшим значением, пока сумма не сойдётся.
	for total > 100 {
		best := -1
		for i := range vals {
			if vals[i].val > 0 && (best < 0 || vals[i].val > vals[best].val) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		vals[best].val--
		total--
	}

	for _, s := range vals {
		next[s.key] = s.val
	}
	return next
}

// orderedKeys возвращает ключи распределения кроме changed: сначала
// в порядке каталога, затем неизвестные каталогу ключи в лексикографическом
// порядке. Детерминированный порядок нужен для распределения остатка.
func orderedKeys(d domain.Distribution, changed domain.ActivityType) []domain.ActivityType {
	keys := make([]domain.ActivityType, 0, len(d))
	seen := make(map[domain.ActivityType]bool, len(d))

	for _, info := range domain.Catalog() {
		if info.Type == changed {
			continue
		}
		if _, ok := d[info.Type]; ok {
			keys = append(keys, info.Type)
			seen[info.Type] = true
		}
	}

	var extra []domain.ActivityType
	for k := range d {
		if k != changed && !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(a, b int) bool { return extra[a] < extra[b] })

	return append(keys, extra...)
}
