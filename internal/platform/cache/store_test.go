package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type cachedLeaderboard struct {
	SessionID string
	Entries   int
}

func TestStore_GetOrLoad_CollapsesConcurrentLeaderboardLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return cachedLeaderboard{SessionID: "ladder-open-2026", Entries: 3}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "reports:leaderboard:ladder-open-2026", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(cachedLeaderboard); got.Entries != 3 {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesCachedReportAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return cachedLeaderboard{SessionID: "rated-spring-2026", Entries: 2}, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "reports:overview:rated-spring-2026", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "reports:overview:rated-spring-2026", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_DeletePrefix_DropsSessionReportKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "reports:leaderboard:ladder-open-2026", cachedLeaderboard{SessionID: "ladder-open-2026"})
	store.Set(ctx, "reports:overview:ladder-open-2026", cachedLeaderboard{SessionID: "ladder-open-2026"})
	store.Set(ctx, "reports:leaderboard:rated-spring-2026", cachedLeaderboard{SessionID: "rated-spring-2026"})

	store.DeletePrefix(ctx, "reports:leaderboard:")

	if _, ok := store.Get(ctx, "reports:leaderboard:ladder-open-2026"); ok {
		t.Fatal("leaderboard key survived prefix delete")
	}
	if _, ok := store.Get(ctx, "reports:overview:ladder-open-2026"); !ok {
		t.Fatal("overview key dropped by unrelated prefix delete")
	}
	if _, ok := store.Get(ctx, "reports:leaderboard:rated-spring-2026"); ok {
		t.Fatal("rated leaderboard key survived prefix delete")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
