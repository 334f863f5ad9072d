package accounts

import (
	"encoding/json"

	"roomdesk/internal/db"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/models"
	"roomdesk/internal/notify"
	"roomdesk/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type notifyPreferencesRequest struct {
	NotifyOptOut []string `json:"notifyOptOut"`
}

// notifyPreferencesHandler replaces the caller's notification opt-out
// list and drops the cached copy the dispatcher reads.
// @Summary Update notification preferences
// @Tags Accounts Auth
// @Security AccountAuth
// @Accept json
// @Produce json
// @Param payload body notifyPreferencesRequest true "actions to stop being notified about"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errmsg._AccountInvalidPayload
// @Failure 404 {object} errmsg._AccountNotExists
// @Router /roomdesk/accounts/me/notifications [patch]
func notifyPreferencesHandler(c fiber.Ctx) error {
	var account models.Account
	utils.GetLocals(c, "account", &account)

	var body notifyPreferencesRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return utils.StatusError(c, errmsg.AccountInvalidPayload)
	}

	if err := models.SetNotifyOptOut(account.Email, body.NotifyOptOut); err != nil {
		return utils.RenderError(c, err)
	}

	if err := db.CacheDel(notify.OptOutCacheKey(account.Email)); err != nil {
		return utils.RenderError(c, err)
	}

	account.NotifyOptOut = body.NotifyOptOut
	return c.JSON(fiber.Map{
		"account": account,
	})
}
