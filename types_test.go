package pantrysync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary SyncSummary
		text    string
		changed bool
	}{
		{
			name:    "lines left",
			summary: SyncSummary{ListID: "weekly", Removed: 1, Updated: 2, Remaining: 3},
			text:    "List weekly: 1 removed, 2 updated, 3 remaining",
			changed: true,
		},
		{
			name:    "all covered",
			summary: SyncSummary{ListID: "weekly", Removed: 4},
			text:    "List weekly: 4 removed, 0 updated, nothing left to buy",
			changed: true,
		},
		{
			name:    "untouched",
			summary: SyncSummary{ListID: "weekly", Remaining: 2},
			text:    "List weekly: 0 removed, 0 updated, 2 remaining",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.summary.String())
			assert.Equal(t, tt.changed, tt.summary.Changed())
		})
	}
}
