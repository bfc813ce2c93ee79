package core

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/quasilyte/gdata"
	"github.com/segmentio/ksuid"
)

const historyKey = "matches"

// Store is the key/value persistence History writes to. *gdata.Manager
// satisfies it.
type Store interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

// MatchRecord is one finished match as stored on disk.
type MatchRecord struct {
	ID              string               `json:"id"`
	EndedAt         time.Time            `json:"endedAt"`
	DurationSeconds float64              `json:"durationSeconds"`
	Level           string               `json:"level"`
	Rankings        []messages.RankEntry `json:"rankings"`
}

// History keeps the final rankings of the last few matches.
type History struct {
	store Store
	limit int
	now   func() time.Time
}

// OpenHistory opens the gdata store for appName.
func OpenHistory(appName string, limit int) (*History, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open match history: %w", err)
	}
	return NewHistory(m, limit), nil
}

// NewHistory keeps at most limit records in store. A limit below 1 keeps one.
func NewHistory(store Store, limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{store: store, limit: limit, now: time.Now}
}

// Records returns the stored matches, oldest first.
func (h *History) Records() ([]MatchRecord, error) {
	data, err := h.store.LoadItem(historyKey)
	if err != nil {
		return nil, fmt.Errorf("load match history: %w", err)
	}
	if len(data) == 0 {
		// Nothing recorded yet
		return nil, nil
	}

	var records []MatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse match history: %w", err)
	}
	return records, nil
}

// Record appends a finished match and trims the history to its limit.
func (h *History) Record(level string, res arena.Result) (MatchRecord, error) {
	rec := MatchRecord{
		ID:              ksuid.New().String(),
		EndedAt:         h.now().UTC(),
		DurationSeconds: res.Duration.Seconds(),
		Level:           level,
		Rankings:        res.Rankings,
	}

	records, err := h.Records()
	if err != nil {
		log.Printf("[history] discarding unreadable history: %v", err)
		records = nil
	}
	records = append(records, rec)
	if over := len(records) - h.limit; over > 0 {
		records = records[over:]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("serialize match history: %w", err)
	}
	if err := h.store.SaveItem(historyKey, data); err != nil {
		return MatchRecord{}, fmt.Errorf("save match history: %w", err)
	}

	log.Printf("[history] recorded match %s on %s (%d players)", rec.ID, level, len(rec.Rankings))
	return rec, nil
}

// LogSummary prints the stored matches, one line each.
func (h *History) LogSummary() {
	records, err := h.Records()
	if err != nil {
		log.Printf("[history] %v", err)
		return
	}
	log.Printf("[history] %d recorded matches", len(records))
	for _, r := range records {
		winner := "nobody"
		if len(r.Rankings) > 0 {
			winner = fmt.Sprintf("%s (%d pts)", r.Rankings[0].Name, r.Rankings[0].Points)
		}
		log.Printf("[history]   %s %s %s won by %s", r.EndedAt.Format(time.RFC3339), r.ID, r.Level, winner)
	}
}
