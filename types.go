package pantrysync

import (
	"context"
	"fmt"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Notifier delivers sync summaries to people.
type Notifier interface {
	PostSummary(ctx context.Context, channel string, summary SyncSummary) error
}

// SyncSummary is the short, human-facing outcome of a sync.
type SyncSummary struct {
	ListID    string `json:"list_id"`
	Removed   int    `json:"lines_removed"`
	Updated   int    `json:"lines_updated"`
	Remaining int    `json:"remaining"`
}

func (s SyncSummary) String() string {
	if s.Remaining == 0 {
		return fmt.Sprintf("List %s: %d removed, %d updated, nothing left to buy", s.ListID, s.Removed, s.Updated)
	}
	return fmt.Sprintf("List %s: %d removed, %d updated, %d remaining", s.ListID, s.Removed, s.Updated, s.Remaining)
}

// Changed reports whether the sync touched the list at all.
func (s SyncSummary) Changed() bool {
	return s.Removed > 0 || s.Updated > 0
}
