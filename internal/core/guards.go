package core

import (
	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
)

// Action names one lifecycle transition for authorization purposes.
type Action string

const (
	ActionSubmit             Action = "submit"
	ActionEdit               Action = "edit"
	ActionPublish            Action = "publish"
	ActionReject             Action = "reject"
	ActionResubmit           Action = "resubmit"
	ActionRequestEdit        Action = "request_edit"
	ActionResolveEditRequest Action = "resolve_edit_request"
	ActionRemove             Action = "remove"
	ActionRestore            Action = "restore"
)

func owns(account *models.Account, r *models.Reservation) bool {
	return account.ID != "" && account.ID == r.RoomReservationData.RequesterID
}

func sameDepartment(account *models.Account, r *models.Reservation) bool {
	return account.Department != "" &&
		account.Department == r.RoomReservationData.Department
}

// Authorize is the single role/ownership/department predicate shared by
// every transition. It judges only who may attempt the action; status
// preconditions are enforced by the transitions themselves.
func Authorize(account *models.Account, r *models.Reservation, action Action) error {
	allowed := false

	switch action {
	case ActionSubmit:
		allowed = owns(account, r) || account.IsReviewer()
	case ActionEdit:
		if r.Status == models.StatusPublished {
			// in-place edits of a confirmed event are reviewer-only
			allowed = account.IsReviewer()
		} else {
			allowed = owns(account, r) || sameDepartment(account, r) || account.IsReviewer()
		}
	case ActionPublish, ActionReject, ActionResolveEditRequest:
		allowed = account.IsReviewer()
	case ActionResubmit, ActionRequestEdit:
		allowed = owns(account, r)
	case ActionRemove:
		allowed = account.IsReviewer() || owns(account, r)
	case ActionRestore:
		allowed = account.Role == models.RoleAdmin || owns(account, r)
	}

	if !allowed {
		return errmsg.PermissionDenied
	}

	return nil
}

// mayForceConflicts reports whether the force override is honored for the
// given actor and action. Only the reviewer/approver transitions may skip
// the conflict check; requester-initiated transitions never can.
func mayForceConflicts(account *models.Account, action Action) bool {
	switch action {
	case ActionPublish, ActionSubmit:
		return account.IsReviewer()
	case ActionRestore:
		return account.Role == models.RoleAdmin
	default:
		return false
	}
}
