package store_test

import (
	"testing"
	"time"

	"github.com/justapithecus/seam/store"
	"github.com/justapithecus/seam/types"
)

func record(asset, keyStr string, state types.RunState) *types.RunRecord {
	key, err := types.ParsePartitionKey(keyStr)
	if err != nil {
		panic(err)
	}
	return &types.RunRecord{
		Asset:       asset,
		Key:         key,
		State:       state,
		RunID:       "run-1",
		Attempt:     1,
		ScheduledAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// storeUnderTest runs the Store contract suite against a backend.
func storeUnderTest(t *testing.T, s store.Store) {
	t.Helper()
	ctx := t.Context()

	t.Run("get absent returns nil", func(t *testing.T) {
		rec, err := s.Get(ctx, "orders", types.PartitionKey{{Dimension: "region", Value: "eu"}})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil, got %+v", rec)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		want := record("orders", "region=eu", types.StateSucceeded)
		want.Rows = 42
		want.Checks = []types.CheckResult{{CheckType: types.CheckSchema, Passed: true, Severity: types.SeverityError, Message: "ok"}}

		if err := s.Put(ctx, want); err != nil {
			t.Fatalf("put: %v", err)
		}

		got, err := s.Get(ctx, "orders", want.Key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got == nil {
			t.Fatal("expected record")
		}
		if got.State != types.StateSucceeded || got.Rows != 42 {
			t.Errorf("got %+v", got)
		}
		if len(got.Checks) != 1 || !got.Checks[0].Passed {
			t.Errorf("checks not persisted: %+v", got.Checks)
		}
		if !got.Key.Equal(want.Key) {
			t.Errorf("key = %v, want %v", got.Key, want.Key)
		}
	})

	t.Run("put overwrites", func(t *testing.T) {
		first := record("orders", "region=us", types.StatePending)
		if err := s.Put(ctx, first); err != nil {
			t.Fatalf("put: %v", err)
		}

		second := record("orders", "region=us", types.StateFailed)
		second.Error = "boom"
		if err := s.Put(ctx, second); err != nil {
			t.Fatalf("put: %v", err)
		}

		got, err := s.Get(ctx, "orders", second.Key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.State != types.StateFailed || got.Error != "boom" {
			t.Errorf("overwrite lost: %+v", got)
		}
	})

	t.Run("list by asset sorted", func(t *testing.T) {
		if err := s.Put(ctx, record("trips", "region=us", types.StateSucceeded)); err != nil {
			t.Fatalf("put: %v", err)
		}
		if err := s.Put(ctx, record("trips", "region=eu", types.StatePending)); err != nil {
			t.Fatalf("put: %v", err)
		}

		records, err := s.ListByAsset(ctx, "trips")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Key.String() != "region=eu" || records[1].Key.String() != "region=us" {
			t.Errorf("not sorted by key: %v, %v", records[0].Key, records[1].Key)
		}
	})

	t.Run("list pending filters and sorts", func(t *testing.T) {
		pending, err := s.ListPending(ctx)
		if err != nil {
			t.Fatalf("list pending: %v", err)
		}
		for _, rec := range pending {
			if rec.State != types.StatePending {
				t.Errorf("non-pending record in listing: %+v", rec)
			}
		}
		// region=us under orders was overwritten to failed; region=eu
		// under trips is pending.
		found := false
		for _, rec := range pending {
			if rec.Asset == "trips" && rec.Key.String() == "region=eu" {
				found = true
			}
		}
		if !found {
			t.Error("pending trips/region=eu not listed")
		}
	})
}

func TestMemStore(t *testing.T) {
	s := store.NewMemStore()
	defer s.Close()
	storeUnderTest(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()
	storeUnderTest(t, s)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	root := t.TempDir()
	ctx := t.Context()

	s1, err := store.NewFileStore(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s1.Put(ctx, record("orders", "region=eu|month=2024-05-01", types.StateSucceeded)); err != nil {
		t.Fatalf("put: %v", err)
	}
	s1.Close()

	s2, err := store.NewFileStore(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	key, _ := types.ParsePartitionKey("region=eu|month=2024-05-01")
	got, err := s2.Get(ctx, "orders", key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.State != types.StateSucceeded {
		t.Errorf("record lost across reopen: %+v", got)
	}
}

func TestMemStore_CloneIsolation(t *testing.T) {
	s := store.NewMemStore()
	ctx := t.Context()

	rec := record("orders", "region=eu", types.StatePending)
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's record or a returned record must not affect
	// the stored copy.
	rec.State = types.StateFailed

	got, err := s.Get(ctx, "orders", rec.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != types.StatePending {
		t.Errorf("caller mutation leaked into store: %s", got.State)
	}

	got.State = types.StateFailed
	again, err := s.Get(ctx, "orders", rec.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.State != types.StatePending {
		t.Errorf("reader mutation leaked into store: %s", again.State)
	}
}

func TestEncodeDecodeRecord(t *testing.T) {
	started := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	want := record("orders", "region=eu|month=2024-05-01", types.StateSucceededWithWarnings)
	want.StartedAt = &started
	want.Checks = []types.CheckResult{
		{CheckType: types.CheckVolume, Passed: false, Severity: types.SeverityWarn, Message: "low"},
	}

	data, err := store.EncodeRecord(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := store.DecodeRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != want.State || !got.Key.Equal(want.Key) {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Errorf("started_at lost: %v", got.StartedAt)
	}
	if len(got.Checks) != 1 || got.Checks[0].Severity != types.SeverityWarn {
		t.Errorf("checks lost: %+v", got.Checks)
	}
}

func TestDecodeRecord_Garbage(t *testing.T) {
	if _, err := store.DecodeRecord([]byte("not msgpack at all")); err == nil {
		t.Error("expected decode error")
	}
}
