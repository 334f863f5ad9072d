package accounts

import (
	"encoding/json"
	"strings"

	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
	"roomdesk/internal/utils"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginHandler authenticates an account and returns its bearer token.
// @Summary Log in
// @Description Exchanges email/password credentials for a bearer token.
// @Tags Accounts Auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errmsg._AccountInvalidPayload
// @Failure 401 {object} errmsg._AccountWrongPassword
// @Failure 404 {object} errmsg._AccountNotExists
// @Router /roomdesk/accounts/login [post]
func loginHandler(c fiber.Ctx) error {
	var body loginRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return utils.StatusError(c, errmsg.AccountInvalidPayload)
	}

	body.Email = strings.TrimSpace(body.Email)
	body.Password = strings.TrimSpace(body.Password)
	if body.Email == "" || body.Password == "" {
		return utils.StatusError(c, errmsg.AccountInvalidPayload)
	}

	account := models.Account{}
	if err := account.Get(body.Email); err != nil {
		return utils.RenderError(c, err)
	}

	if bcrypt.CompareHashAndPassword(
		[]byte(account.Password),
		[]byte(body.Password),
	) != nil {
		return utils.StatusError(c, errmsg.AccountWrongPassword)
	}

	// password hash never travels inside the token claims
	account.Password = ""
	token := account.GenToken()

	return c.JSON(fiber.Map{
		"token":   token,
		"account": account,
	})
}

// meHandler returns the account resolved from the bearer token.
// @Summary Current account
// @Tags Accounts Auth
// @Security AccountAuth
// @Produce json
// @Success 200 {object} models.Account
// @Failure 401 {object} errmsg._AccountNoToken
// @Router /roomdesk/accounts/me [get]
func meHandler(c fiber.Ctx) error {
	var account models.Account
	utils.GetLocals(c, "account", &account)

	return c.JSON(fiber.Map{
		"account": account,
	})
}
