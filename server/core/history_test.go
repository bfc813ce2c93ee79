package core

import (
	"errors"
	"testing"
	"time"

	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/segmentio/ksuid"
)

type memStore struct {
	items   map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string][]byte)}
}

func (m *memStore) LoadItem(key string) ([]byte, error) {
	return m.items[key], nil
}

func (m *memStore) SaveItem(key string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items[key] = data
	return nil
}

func result(points int) arena.Result {
	return arena.Result{
		Duration: 120 * time.Second,
		Rankings: []messages.RankEntry{{ID: 1, Name: "ada", Points: points, Kills: 1}},
	}
}

func TestHistoryRecordsAndTrims(t *testing.T) {
	store := newMemStore()
	h := NewHistory(store, 3)

	empty, err := h.Records()
	if err != nil || len(empty) != 0 {
		t.Fatalf("fresh history = %v, %v", empty, err)
	}

	for i := 0; i < 5; i++ {
		rec, err := h.Record("arena", result(i))
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if _, err := ksuid.Parse(rec.ID); err != nil {
			t.Fatalf("record id %q is not a ksuid: %v", rec.ID, err)
		}
	}

	records, err := h.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("kept %d records, want 3", len(records))
	}
	for i, rec := range records {
		if want := i + 2; rec.Rankings[0].Points != want {
			t.Fatalf("record %d has %d points, want %d (oldest dropped first)", i, rec.Rankings[0].Points, want)
		}
		if rec.Level != "arena" || rec.DurationSeconds != 120 {
			t.Fatalf("record %d = %+v", i, rec)
		}
	}
}

func TestHistorySaveError(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	h := NewHistory(store, 5)

	if _, err := h.Record("arena", result(1)); !errors.Is(err, store.saveErr) {
		t.Fatalf("err = %v, want wrapped save error", err)
	}
}

func TestHistoryRecoversFromCorruptData(t *testing.T) {
	store := newMemStore()
	store.items[historyKey] = []byte("{not json")
	h := NewHistory(store, 5)

	if _, err := h.Records(); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := h.Record("arena", result(7)); err != nil {
		t.Fatalf("record over corrupt data: %v", err)
	}
	records, err := h.Records()
	if err != nil || len(records) != 1 {
		t.Fatalf("records = %v, %v", records, err)
	}
}
