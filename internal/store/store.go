// Package store persists recognition outcomes for diagnostics and audit.
// The engine never touches it; only the CLI and server wire it, and only
// when a driver is configured.
package store

import (
	"context"
	"time"
)

// ScanRecord summarizes one recognition request.
type ScanRecord struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"` // winning stage, "" when exhausted
	TopCode    string        `json:"top_code"`
	MatchKind  string        `json:"match_kind"`
	Tier       string        `json:"tier"`
	Candidates int           `json:"candidates"`
	Diagnostic string        `json:"diagnostic"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Filter specifies criteria for listing scans.
type Filter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the scan-history persistence interface.
type Store interface {
	SaveScan(ctx context.Context, rec *ScanRecord) error
	ListScans(ctx context.Context, filter Filter) ([]ScanRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}
