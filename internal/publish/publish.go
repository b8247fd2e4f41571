// Package publish announces a finished report run as a JSON event.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event summarizes one run.
type Event struct {
	RunID      string    `json:"run_id"`
	Job        string    `json:"job"`
	Rows       int       `json:"rows"`
	Valid      int       `json:"valid"`
	Invalid    int       `json:"invalid"`
	FanOut     int       `json:"fanout"`
	Checksum   string    `json:"checksum"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Encode returns the wire form of e.
func Encode(e Event) ([]byte, error) {
	e.FinishedAt = e.FinishedAt.UTC()
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}
