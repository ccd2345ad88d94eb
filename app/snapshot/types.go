package snapshot

import (
	"time"

	"github.com/hjpark/finnews/app/crawler"
)

// Payload is the wire form of one persisted snapshot artifact.
type Payload struct {
	Date       string           `json:"date"`
	Timestamp  time.Time        `json:"timestamp"`
	TotalCount int              `json:"total_count"`
	DataHash   string           `json:"data_hash"`
	News       []crawler.Record `json:"news"`
}

func NewPayload(date string, records []crawler.Record) *Payload {
	return &Payload{
		Date:       date,
		Timestamp:  time.Now(),
		TotalCount: len(records),
		DataHash:   Hash(records),
		News:       records,
	}
}
