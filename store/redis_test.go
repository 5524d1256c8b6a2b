package store_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/justapithecus/seam/store"
	"github.com/justapithecus/seam/types"
)

func redisStore(t *testing.T) *store.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return store.NewRedisStoreWithClient(client, "seamtest")
}

func TestRedisStore(t *testing.T) {
	s := redisStore(t)
	defer s.Close()
	storeUnderTest(t, s)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := t.Context()

	a := store.NewRedisStoreWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "alpha")
	defer a.Close()
	b := store.NewRedisStoreWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "beta")
	defer b.Close()

	rec := record("orders", "region=eu", types.StatePending)
	if err := a.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := b.Get(ctx, "orders", rec.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("record visible across prefixes")
	}

	pending, err := b.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending under beta, got %d", len(pending))
	}
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	if _, err := store.NewRedisStore(store.RedisConfig{URL: "not-a-url"}); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := store.NewRedisStore(store.RedisConfig{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
