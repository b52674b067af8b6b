package task

import (
	"math"

	"github.com/taskpilot/backend/domain"
)

// DeriveProgress maps a checklist to its progress percentage and lifecycle
// status. forceComplete is the admin override path: it yields (100,
// Completed) regardless of the checklist, which is why a force-completed
// task can show 100% with items the callers ticked on its behalf.
//
// Without the override:
//   - no items, or none ticked: (0, Pending)
//   - some ticked: (round(c/n*90), "In Progress") — the cap below 100
//     reserves full progress for fully-checked or verified tasks
//   - all ticked: (100, Unverified), awaiting admin sign-off
func DeriveProgress(checklist []domain.ChecklistItem, forceComplete bool) (int, domain.Status) {
	if forceComplete {
		return 100, domain.StatusCompleted
	}

	total := len(checklist)
	completed := 0
	for _, item := range checklist {
		if item.Completed {
			completed++
		}
	}

	switch {
	case total > 0 && completed == total:
		return 100, domain.StatusUnverified
	case completed > 0:
		return int(math.Round(float64(completed) / float64(total) * 90)), domain.StatusInProgress
	default:
		return 0, domain.StatusPending
	}
}
