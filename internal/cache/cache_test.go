package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantfinder-engine/internal/domain"
)

func records(titles ...string) []domain.Grant {
	out := make([]domain.Grant, len(titles))
	for i, t := range titles {
		out[i] = domain.Grant{Title: t}
	}
	return out
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	s := New(time.Minute)
	var calls int32
	fetch := func(ctx context.Context) []domain.Grant {
		atomic.AddInt32(&calls, 1)
		return records("a", "b")
	}

	first := s.GetOrFetch(context.Background(), "k", fetch)
	second := s.GetOrFetch(context.Background(), "k", fetch)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Len())
}

func TestGetOrFetchExpires(t *testing.T) {
	now := time.Now()
	s := New(time.Minute)
	s.SetClock(func() time.Time { return now })

	var calls int32
	fetch := func(ctx context.Context) []domain.Grant {
		atomic.AddInt32(&calls, 1)
		return records("a")
	}

	s.GetOrFetch(context.Background(), "k", fetch)
	now = now.Add(59 * time.Second)
	s.GetOrFetch(context.Background(), "k", fetch)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(2 * time.Second)
	s.GetOrFetch(context.Background(), "k", fetch)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrFetchKeysAreIndependent(t *testing.T) {
	s := New(time.Minute)
	var calls int32
	fetch := func(ctx context.Context) []domain.Grant {
		atomic.AddInt32(&calls, 1)
		return records("a")
	}

	s.GetOrFetch(context.Background(), "Technology_Spain_All_All", fetch)
	s.GetOrFetch(context.Background(), "Energy_Spain_All_All", fetch)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, s.Len())
}

func TestGetOrFetchCoalescesConcurrentMisses(t *testing.T) {
	s := New(time.Minute)
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) []domain.Grant {
		atomic.AddInt32(&calls, 1)
		<-release
		return records("a")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := s.GetOrFetch(context.Background(), "k", fetch)
			assert.Len(t, got, 1)
		}()
	}
	// give the goroutines time to queue on the key, then let the single
	// in-flight fetch finish
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCoalescedCallersGetIndependentSlices(t *testing.T) {
	s := New(time.Minute)
	release := make(chan struct{})
	fetch := func(ctx context.Context) []domain.Grant {
		<-release
		return records("shared")
	}

	results := make([][]domain.Grant, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.GetOrFetch(context.Background(), "k", fetch)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// annotating one caller's copy must not leak into the other's
	results[0][0].Urgency = "critical"
	results[0][0].DaysRemaining = 3
	assert.Empty(t, results[1][0].Urgency)
	assert.Zero(t, results[1][0].DaysRemaining)
}

func TestCallerCannotMutateCachedRecords(t *testing.T) {
	s := New(time.Minute)
	fetch := func(ctx context.Context) []domain.Grant { return records("original") }

	got := s.GetOrFetch(context.Background(), "k", fetch)
	got[0].Title = "mutated"
	got[0].Urgency = "critical"

	again := s.GetOrFetch(context.Background(), "k", func(ctx context.Context) []domain.Grant {
		t.Fatal("fetch must not run on a warm key")
		return nil
	})
	require.Len(t, again, 1)
	assert.Equal(t, "original", again[0].Title)
	assert.Empty(t, again[0].Urgency)
}

func TestPrune(t *testing.T) {
	now := time.Now()
	s := New(time.Minute)
	s.SetClock(func() time.Time { return now })

	fetch := func(ctx context.Context) []domain.Grant { return records("a") }
	s.GetOrFetch(context.Background(), "old", fetch)
	now = now.Add(2 * time.Minute)
	s.GetOrFetch(context.Background(), "fresh", fetch)

	removed := s.Prune()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultTTL, s.ttl)
}
