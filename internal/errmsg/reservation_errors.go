package errmsg

import "net/http"

var (
	ReservationInvalidRequest = NewStatusError(
		http.StatusBadRequest,
		"invalid reservation request payload",
	)
	ReservationNotFound = NewStatusError(
		http.StatusNotFound,
		"reservation not found",
	)
	ReservationNotDraft = NewStatusError(
		http.StatusConflict,
		"reservation is not in draft status",
	)
	ReservationNotPending = NewStatusError(
		http.StatusConflict,
		"reservation is not in pending status",
	)
	ReservationNotPublished = NewStatusError(
		http.StatusConflict,
		"reservation is not in published status",
	)
	ReservationNotEditable = NewStatusError(
		http.StatusConflict,
		"reservation cannot be edited in its current status",
	)
	ReservationNotRejected = NewStatusError(
		http.StatusConflict,
		"reservation is not in rejected status",
	)
	ReservationAlreadyDeleted = NewStatusError(
		http.StatusConflict,
		"reservation has already been removed",
	)
	ReservationNotRemoved = NewStatusError(
		http.StatusConflict,
		"reservation is neither deleted nor cancelled",
	)
	ResubmissionNotAllowed = NewStatusError(
		http.StatusConflict,
		"resubmission has not been allowed for this reservation",
	)
	RejectionReasonRequired = NewStatusError(
		http.StatusBadRequest,
		"a reason is required to reject",
	)
	EditRequestAlreadyPresent = NewStatusError(
		http.StatusConflict,
		"an edit request is already awaiting review",
	)
	EditRequestNotFound = NewStatusError(
		http.StatusNotFound,
		"no edit request is awaiting review",
	)
	PermissionDenied = NewStatusError(
		http.StatusForbidden,
		"you are not allowed to perform this action",
	)
)

type _ReservationInvalidRequest struct {
	StatusCode int    `json:"statusCode" example:"400"`
	Message    string `json:"message" example:"invalid reservation request payload"`
}

type _ReservationNotFound struct {
	StatusCode int    `json:"statusCode" example:"404"`
	Message    string `json:"message" example:"reservation not found"`
}

type _PermissionDenied struct {
	StatusCode int    `json:"statusCode" example:"403"`
	Message    string `json:"message" example:"you are not allowed to perform this action"`
}
