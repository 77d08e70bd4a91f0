package events

import (
	"encoding/json"
	"time"
)

const (
	TypeSearchStarted   = "search_started"
	TypeSearchCompleted = "search_completed"
	TypeCachePruned     = "cache_pruned"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SearchData describes a search's facets and outcome for stream consumers.
type SearchData struct {
	Sector      string `json:"sector"`
	Location    string `json:"location"`
	CompanyType string `json:"company_type"`
	Region      string `json:"region"`
	Results     int    `json:"results,omitempty"`
	DurationMs  int64  `json:"duration_ms,omitempty"`
}

type PruneData struct {
	Removed int `json:"removed"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
