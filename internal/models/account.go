package models

import (
	"errors"
	"strings"
	"time"

	"roomdesk/internal/db"
	"roomdesk/internal/env"
	"roomdesk/internal/errmsg"
	"roomdesk/internal/utils"
	"net/http"

	sj "github.com/brianvoe/sjwt"
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Role string

const (
	RoleRequester Role = "requester"
	RoleApprover  Role = "approver"
	RoleAdmin     Role = "admin"
)

// Account is an authenticated user of the reservation service.
type Account struct {
	ID         string `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
	Password   string `bson:"password" json:"password,omitempty"`
	Role       Role   `bson:"role" json:"role"`
	Department string `bson:"department" json:"department"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`

	// actions the account has opted out of being notified about
	NotifyOptOut []string `bson:"notifyOptOut,omitempty" json:"notifyOptOut,omitempty"`
}

// IsReviewer reports whether the account may act on reservations it does
// not own (approve, reject, publish, restore others).
func (a *Account) IsReviewer() bool {
	return a.Role == RoleApprover || a.Role == RoleAdmin
}

func (a *Account) GenToken() string {
	claims, _ := sj.ToClaims(a)
	claims.SetExpiresAt(time.Now().Add(30 * 24 * time.Hour))

	token := claims.Generate(env.JWT_SECRET)
	return token
}

func (a *Account) ParseToken(token string) error {
	hasVerified := sj.Verify(token, env.JWT_SECRET)

	if !hasVerified {
		return nil
	}

	claims, _ := sj.Parse(token)
	err := claims.Validate()
	claims.ToStruct(&a)

	return err
}

func AccountMiddleware(c fiber.Ctx) error {
	var token string

	authHeader := c.Get("Authorization")

	if authHeader != "" &&
		strings.HasPrefix(authHeader, "Bearer") {

		tokens := strings.Fields(authHeader)
		if len(tokens) == 2 {
			token = tokens[1]
		}

		if token == "" {
			return utils.StatusError(c, errmsg.AccountNoToken)
		}

		var account Account
		err := account.ParseToken(token)
		if err != nil {
			return utils.Error(
				c,
				http.StatusUnauthorized,
				errors.New("unauthorized"),
			)
		}

		if account.ID == "" {
			return utils.Error(
				c,
				http.StatusUnauthorized,
				errors.New("unauthorized"),
			)
		}

		account.Password = ""
		utils.SetLocals(c, "account", account)
	}

	if token == "" {
		return utils.StatusError(c, errmsg.AccountNoToken)
	}

	return c.Next()
}

// RequireReviewer gates a route group to approver/admin accounts. It must
// run after AccountMiddleware.
func RequireReviewer(c fiber.Ctx) error {
	var account Account
	utils.GetLocals(c, "account", &account)

	if !account.IsReviewer() {
		return utils.StatusError(c, errmsg.PermissionDenied)
	}

	return c.Next()
}

func (a *Account) Get(email string) error {
	err := db.Accounts.FindOne(db.Ctx, bson.M{
		"email": email,
	}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errmsg.AccountNotExists
		}
		return err
	}

	return nil
}

// SetNotifyOptOut replaces the account's notification opt-out list.
// Callers holding a cached copy of the list must invalidate it.
func SetNotifyOptOut(email string, actions []string) error {
	result, err := db.Accounts.UpdateOne(db.Ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"notifyOptOut": actions}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errmsg.AccountNotExists
	}

	return nil
}

// GetAccountByEmail resolves an account for notification preference
// checks; a missing account is not an error at that boundary.
func GetAccountByEmail(email string) (*Account, bool) {
	var account Account
	err := db.Accounts.FindOne(db.Ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		return nil, false
	}
	return &account, true
}
