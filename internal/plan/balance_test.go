package plan

import (
	"testing"

	"github.com/shaiso/Presence/internal/domain"
)

func TestRebalance_SumIsAlways100(t *testing.T) {
	distributions := []domain.Distribution{
		{domain.ActivityTweet: 20, domain.ActivityScrollEngage: 20, domain.ActivityFollowConnect: 20, domain.ActivityScanNotifications: 20, domain.ActivityFetchAnalytics: 20},
		{domain.ActivityTweet: 100, domain.ActivityScrollEngage: 0, domain.ActivityFollowConnect: 0},
		{domain.ActivityTweet: 33, domain.ActivityScrollEngage: 33, domain.ActivityFollowConnect: 34},
		{domain.ActivityTweet: 1, domain.ActivityScrollEngage: 1, domain.ActivityFollowConnect: 98},
		{domain.ActivityTweet: 50, domain.ActivityScrollEngage: 50},
	}

	for _, d := range distributions {
		for key := range d {
			for _, value := range []int{0, 1, 7, 33, 50, 99, 100} {
				got := Rebalance(d, key, value)

				if got.Sum() != 100 {
					t.Errorf("Rebalance(%v, %s, %d) sums to %d, want 100 (result %v)", d, key, value, got.Sum(), got)
				}
				if got[key] != value {
					t.Errorf("Rebalance(%v, %s, %d): changed key = %d, want %d", d, key, value, got[key], value)
				}
				for k, v := range got {
					if v < 0 {
						t.Errorf("Rebalance(%v, %s, %d): negative weight %s=%d", d, key, value, k, v)
					}
				}
			}
		}
	}
}

func TestRebalance_ClampsValue(t *testing.T) {
	d := domain.Distribution{domain.ActivityTweet: 50, domain.ActivityScrollEngage: 50}

	got := Rebalance(d, domain.ActivityTweet, 150)
	if got[domain.ActivityTweet] != 100 {
		t.Errorf("value above 100 should clamp to 100, got %d", got[domain.ActivityTweet])
	}

	got = Rebalance(d, domain.ActivityTweet, -5)
	if got[domain.ActivityTweet] != 0 {
		t.Errorf("value below 0 should clamp to 0, got %d", got[domain.ActivityTweet])
	}
}

func TestRebalance_SingleOtherKeyIsExactComplement(t *testing.T) {
	d := domain.Distribution{domain.ActivityTweet: 30, domain.ActivityScrollEngage: 70}

	for v := 0; v <= 100; v++ {
		got := Rebalance(d, domain.ActivityTweet, v)
		if got[domain.ActivityScrollEngage] != 100-v {
			t.Fatalf("value=%d: other key = %d, want exact complement %d", v, got[domain.ActivityScrollEngage], 100-v)
		}
	}
}

func TestRebalance_ZeroOtherSumSplitsEvenly(t *testing.T) {
	d := domain.Distribution{
		domain.ActivityTweet:          100,
		domain.ActivityScrollEngage:   0,
		domain.ActivityFollowConnect:  0,
		domain.ActivityFetchAnalytics: 0,
	}

	got := Rebalance(d, domain.ActivityTweet, 20)

	// target=80 over three keys: 27+27+26, remainder goes to the first
	// keys in catalog order (scroll_engage, follow_connect, fetch_analytics).
	if got[domain.ActivityScrollEngage] != 27 {
		t.Errorf("scroll_engage = %d, want 27", got[domain.ActivityScrollEngage])
	}
	if got[domain.ActivityFollowConnect] != 27 {
		t.Errorf("follow_connect = %d, want 27", got[domain.ActivityFollowConnect])
	}
	if got[domain.ActivityFetchAnalytics] != 26 {
		t.Errorf("fetch_analytics = %d, want 26", got[domain.ActivityFetchAnalytics])
	}
}

func TestRebalance_ScalesProportionally(t *testing.T) {
	d := domain.Distribution{
		domain.ActivityTweet:         40,
		domain.ActivityScrollEngage:  40,
		domain.ActivityFollowConnect: 20,
	}

	// tweet 40→0: the other 60 scale up to 100 keeping the 2:1 ratio.
	got := Rebalance(d, domain.ActivityTweet, 0)

	if got[domain.ActivityScrollEngage] != 67 && got[domain.ActivityScrollEngage] != 66 {
		t.Errorf("scroll_engage = %d, want ~67", got[domain.ActivityScrollEngage])
	}
	if got.Sum() != 100 {
		t.Errorf("sum = %d, want 100", got.Sum())
	}
	if got[domain.ActivityScrollEngage] <= got[domain.ActivityFollowConnect] {
		t.Errorf("proportions lost: scroll_engage=%d should stay above follow_connect=%d",
			got[domain.ActivityScrollEngage], got[domain.ActivityFollowConnect])
	}
}

func TestRebalance_DoesNotMutateInput(t *testing.T) {
	d := domain.Distribution{domain.ActivityTweet: 60, domain.ActivityScrollEngage: 40}

	_ = Rebalance(d, domain.ActivityTweet, 10)

	if d[domain.ActivityTweet] != 60 || d[domain.ActivityScrollEngage] != 40 {
		t.Errorf("input distribution mutated: %v", d)
	}
}

func TestDefaultDistribution_SumsTo100(t *testing.T) {
	d := domain.DefaultDistribution()
	if d.Sum() != 100 {
		t.Errorf("default distribution sums to %d, want 100", d.Sum())
	}
	if len(d) != len(domain.Catalog()) {
		t.Errorf("default distribution has %d keys, want %d", len(d), len(domain.Catalog()))
	}
}
