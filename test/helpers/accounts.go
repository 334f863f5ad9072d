package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"roomdesk/internal/db"
	"roomdesk/internal/models"
	"roomdesk/internal/notify"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAccount upserts a test account with the given role and returns
// its id. The password always equals the email.
func EnsureAccount(t *testing.T, email string, role models.Role, department string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(email), bcrypt.MinCost)
	require.NoError(t, err)

	id := "acct-" + email

	_, err = db.Accounts.DeleteOne(db.Ctx, bson.M{"email": email})
	require.NoError(t, err)

	// a previous run may have cached opt-out preferences for this email
	require.NoError(t, db.CacheDel(notify.OptOutCacheKey(email)))

	_, err = db.Accounts.InsertOne(db.Ctx, models.Account{
		ID:         id,
		Name:       email,
		Email:      email,
		Password:   string(hash),
		Role:       role,
		Department: department,
	})
	require.NoError(t, err)

	return id
}

// Login authenticates a seeded account and returns its bearer token.
func Login(t *testing.T, app *fiber.App, email string) string {
	body, statusCode := RequestRunner(t, app,
		http.MethodPost, "/roomdesk/accounts/login",
		[]byte(fmt.Sprintf(`{"email":%q,"password":%q}`, email, email)),
		nil,
	)
	require.Equal(t, http.StatusOK, statusCode)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NotEmpty(t, payload.Token)

	return payload.Token
}
