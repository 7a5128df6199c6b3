package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetGetHonorsPerEntryTTL(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, Key("sportsfeed", "details", "m=1"), "payload", 10*time.Millisecond)
	if _, ok := store.Get(ctx, Key("sportsfeed", "details", "m=1")); !ok {
		t.Fatal("entry missing immediately after Set")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(ctx, Key("sportsfeed", "details", "m=1")); ok {
		t.Fatal("entry survived past its ttl")
	}
}

func TestStore_SetOverwritesMonotonically(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "k", "first", time.Minute)
	store.Set(ctx, "k", "second", time.Minute)

	value, ok := store.Get(ctx, "k")
	if !ok || value != "second" {
		t.Fatalf("got (%v,%t), want (second,true)", value, ok)
	}
}

func TestStore_DeletePrefixDropsOneProvider(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, Key("sportsfeed", "lineups", "m=1"), 1, time.Minute)
	store.Set(ctx, Key("leagueapi", "lineups", "m=1"), 2, time.Minute)

	store.DeletePrefix(ctx, "sportsfeed:")

	if _, ok := store.Get(ctx, Key("sportsfeed", "lineups", "m=1")); ok {
		t.Fatal("sportsfeed entry should be gone")
	}
	if _, ok := store.Get(ctx, Key("leagueapi", "lineups", "m=1")); !ok {
		t.Fatal("leagueapi entry should survive")
	}
}

func TestStore_GetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			value, err := store.GetOrLoad(context.Background(), "same-key", time.Minute, loader)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if got, _ := value.(string); got != "value" {
				t.Errorf("unexpected value %v", value)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoadServesCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader); err != nil {
		t.Fatalf("first GetOrLoad: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader); err != nil {
		t.Fatalf("second GetOrLoad: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}
