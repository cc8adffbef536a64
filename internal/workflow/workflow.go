package workflow

import (
	"errors"
	"time"

	"github.com/ekrsw/knowledge/internal/models"
)

var (
	ErrUnknownStatus       = errors.New("unknown status")
	ErrTransitionForbidden = errors.New("status transition not permitted")
)

// Allowed reports whether actor may move item from its current status
// to newStatus. Admins may perform any transition. The owner may only
// toggle between draft and submitted. Everyone else is rejected.
//
// There is no transition into published here: records reach it through
// direct administrative data edits (which the admin rule happens to
// cover), never through the normal review flow.
func Allowed(item *models.Knowledge, newStatus models.Status, actor *models.User) bool {
	if actor.IsAdmin {
		return true
	}
	if actor.ID == item.CreatedBy {
		cur := item.Status
		return (cur == models.StatusDraft && newStatus == models.StatusSubmitted) ||
			(cur == models.StatusSubmitted && newStatus == models.StatusDraft)
	}
	return false
}

// Apply validates the transition and returns a copy of item with status
// and derived audit fields updated as a function of
// (old status, new status, actor, now). The input is not mutated.
//
//   - entering submitted from another state stamps SubmittedAt; it is
//     never cleared on leaving submitted (it records "last submitted")
//   - entering approved from another state stamps ApprovedAt/ApprovedBy
//   - leaving approved clears both
func Apply(item models.Knowledge, newStatus models.Status, actor *models.User, now time.Time) (models.Knowledge, error) {
	if !newStatus.Valid() {
		return item, ErrUnknownStatus
	}
	if !Allowed(&item, newStatus, actor) {
		return item, ErrTransitionForbidden
	}

	oldStatus := item.Status
	item.Status = newStatus

	if newStatus == models.StatusSubmitted && oldStatus != models.StatusSubmitted {
		t := now
		item.SubmittedAt = &t
	}

	if newStatus == models.StatusApproved && oldStatus != models.StatusApproved {
		t := now
		approver := actor.ID
		item.ApprovedAt = &t
		item.ApprovedBy = &approver
	}

	if oldStatus == models.StatusApproved && newStatus != models.StatusApproved {
		item.ApprovedAt = nil
		item.ApprovedBy = nil
	}

	return item, nil
}
