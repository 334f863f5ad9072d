package core

import (
	"testing"

	"roomdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func history(statuses ...models.Status) []models.StatusHistoryEntry {
	entries := make([]models.StatusHistoryEntry, 0, len(statuses))
	for _, status := range statuses {
		entries = append(entries, models.StatusHistoryEntry{Status: status})
	}
	return entries
}

func TestResolveRestoreTarget(t *testing.T) {
	tests := []struct {
		name    string
		history []models.StatusHistoryEntry
		current models.Status
		want    models.Status
	}{
		{
			"deleted after publish returns to published",
			history(models.StatusDraft, models.StatusPending, models.StatusPublished, models.StatusDeleted),
			models.StatusDeleted,
			models.StatusPublished,
		},
		{
			"cancelled while pending returns to pending",
			history(models.StatusDraft, models.StatusPending, models.StatusCancelled),
			models.StatusCancelled,
			models.StatusPending,
		},
		{
			"repeated terminal entries are skipped",
			history(models.StatusDraft, models.StatusPending, models.StatusDeleted, models.StatusDeleted),
			models.StatusDeleted,
			models.StatusPending,
		},
		{
			"no prior status falls back to draft",
			history(models.StatusDeleted),
			models.StatusDeleted,
			models.StatusDraft,
		},
		{
			"empty history falls back to draft",
			nil,
			models.StatusCancelled,
			models.StatusDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveRestoreTarget(tt.history, tt.current))
		})
	}
}
