package errmsg

import "net/http"

var (
	AccountNotExists = NewStatusError(
		http.StatusNotFound,
		"account does not exist",
	)
	AccountNoToken = NewStatusError(
		http.StatusUnauthorized,
		"no token has been provided",
	)
	AccountWrongPassword = NewStatusError(
		http.StatusUnauthorized,
		"email or password is incorrect",
	)
	AccountInvalidPayload = NewStatusError(
		http.StatusBadRequest,
		"email and password must be provided",
	)
)

type _AccountNotExists struct {
	StatusCode int    `json:"statusCode" example:"404"`
	Message    string `json:"message" example:"account does not exist"`
}

type _AccountNoToken struct {
	StatusCode int    `json:"statusCode" example:"401"`
	Message    string `json:"message" example:"no token has been provided"`
}

type _AccountWrongPassword struct {
	StatusCode int    `json:"statusCode" example:"401"`
	Message    string `json:"message" example:"email or password is incorrect"`
}

type _AccountInvalidPayload struct {
	StatusCode int    `json:"statusCode" example:"400"`
	Message    string `json:"message" example:"email and password must be provided"`
}
