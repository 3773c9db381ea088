package plan

import (
	"testing"
	"time"

	"github.com/shaiso/Presence/internal/domain"
)

func TestGenerate_AllDisabledYieldsIdleDay(t *testing.T) {
	sched := Generate(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), domain.Enablement{})

	if len(sched.Slots) != domain.SlotsPerDay {
		t.Fatalf("got %d slots, want %d", len(sched.Slots), domain.SlotsPerDay)
	}
	for i, slot := range sched.Slots {
		if slot.Activity != domain.ActivityIdle {
			t.Fatalf("slot %d: activity = %s, want idle", i, slot.Activity)
		}
	}
}

func TestGenerate_SlotTimingCoversDay(t *testing.T) {
	sched := Generate(time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC), domain.Enablement{
		domain.ActivityTweet: 100,
	})

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !sched.Date.Equal(day) {
		t.Errorf("schedule date = %v, want %v", sched.Date, day)
	}

	for i, slot := range sched.Slots {
		wantStart := day.Add(time.Duration(i) * domain.SlotDuration)
		if !slot.StartTime.Equal(wantStart) {
			t.Fatalf("slot %d start = %v, want %v", i, slot.StartTime, wantStart)
		}
		if slot.EndTime.Sub(slot.StartTime) != domain.SlotDuration {
			t.Fatalf("slot %d duration = %v, want %v", i, slot.EndTime.Sub(slot.StartTime), domain.SlotDuration)
		}
		if slot.Status != domain.SlotStatusPending {
			t.Fatalf("slot %d status = %s, want pending", i, slot.Status)
		}
	}

	last := sched.Slots[len(sched.Slots)-1]
	if !last.EndTime.Equal(day.AddDate(0, 0, 1)) {
		t.Errorf("last slot ends at %v, want next midnight", last.EndTime)
	}
}

func TestGenerate_RoundRobinCoverage(t *testing.T) {
	enablement := domain.Enablement{
		domain.ActivityTweet:          30,
		domain.ActivityScrollEngage:   30,
		domain.ActivityFollowConnect:  20,
		domain.ActivityFetchAnalytics: 20,
	}
	sched := Generate(time.Now(), enablement)

	counts := make(map[domain.ActivityType]int)
	for _, slot := range sched.Slots {
		counts[slot.Activity]++
	}

	// 4 candidates over 96 slots: each appears exactly 24 times.
	for activity := range enablement {
		if counts[activity] != 24 {
			t.Errorf("%s appears %d times, want 24", activity, counts[activity])
		}
	}
}

func TestGenerate_RoundRobinRemainder(t *testing.T) {
	// 5 candidates over 96 slots: floor=19, ceil=20.
	enablement := domain.Enablement{}
	for _, info := range domain.Catalog() {
		enablement[info.Type] = 1
	}
	sched := Generate(time.Now(), enablement)

	counts := make(map[domain.ActivityType]int)
	for _, slot := range sched.Slots {
		counts[slot.Activity]++
	}

	total := 0
	for activity, n := range counts {
		if n != 19 && n != 20 {
			t.Errorf("%s appears %d times, want 19 or 20", activity, n)
		}
		total += n
	}
	if total != domain.SlotsPerDay {
		t.Errorf("counts sum to %d, want %d", total, domain.SlotsPerDay)
	}
}

func TestGenerate_TweetAndScrollEngageAlternate(t *testing.T) {
	sched := Generate(time.Now(), domain.Enablement{
		domain.ActivityTweet:        70,
		domain.ActivityScrollEngage: 30,
	})

	counts := make(map[domain.ActivityType]int)
	for i, slot := range sched.Slots {
		counts[slot.Activity]++

		// Strict alternation: tweet in even slots, scroll_engage in odd.
		want := domain.ActivityTweet
		if i%2 == 1 {
			want = domain.ActivityScrollEngage
		}
		if slot.Activity != want {
			t.Fatalf("slot %d: activity = %s, want %s", i, slot.Activity, want)
		}
	}

	if counts[domain.ActivityTweet] == 0 || counts[domain.ActivityScrollEngage] == 0 {
		t.Errorf("both activities must appear, got %v", counts)
	}
}

func TestFillMissing_KeepsCompletedAndInProgress(t *testing.T) {
	enablement := domain.Enablement{domain.ActivityTweet: 100}
	existing := Generate(time.Now(), enablement)
	existing.Slots[0].Status = domain.SlotStatusCompleted
	existing.Slots[1].Status = domain.SlotStatusInProgress
	existing.Slots[2].Status = domain.SlotStatusFailed
	existing.Slots[3].Status = domain.SlotStatusSkipped

	fresh := FillMissing(existing, enablement)

	if fresh.Slots[0].ID != existing.Slots[0].ID {
		t.Error("completed slot should be preserved")
	}
	if fresh.Slots[1].ID != existing.Slots[1].ID {
		t.Error("in_progress slot should be preserved")
	}
	if fresh.Slots[2].ID == existing.Slots[2].ID {
		t.Error("failed slot should be replaced")
	}
	if fresh.Slots[3].ID == existing.Slots[3].ID {
		t.Error("skipped slot should be replaced")
	}
	if fresh.Slots[2].Status != domain.SlotStatusPending {
		t.Errorf("replaced slot status = %s, want pending", fresh.Slots[2].Status)
	}
}
