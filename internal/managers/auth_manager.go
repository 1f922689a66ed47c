package managers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// AuthMgr checks staff credentials and produces the session identity of a successful login.
type AuthMgr interface {
	Login(ctx context.Context, email, password string) (*schemas.SessionIdentity, error)
}

type AuthManager struct {
	DatabaseManager DatabaseMgr
	SessionLifetime time.Duration
	now             func() time.Time
}

// dummyHash is compared against when the email is unknown, so both failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("library-admin-dummy-password"), bcrypt.DefaultCost)

func NewAuthManager(databaseMgr DatabaseMgr, sessionLifetime time.Duration) AuthMgr {
	log.Info("Initializing auth manager")
	return &AuthManager{
		DatabaseManager: databaseMgr,
		SessionLifetime: sessionLifetime,
		now:             time.Now,
	}
}

// Login looks up the user by exact email and verifies the password against the stored bcrypt hash.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (am *AuthManager) Login(ctx context.Context, email, password string) (*schemas.SessionIdentity, error) {
	identity := &schemas.SessionIdentity{}
	var hash string

	queryString := "SELECT UserID, Name, UserType, Password FROM Users WHERE Email = $1"
	row := am.DatabaseManager.GetPool().QueryRow(ctx, queryString, email)
	if err := row.Scan(&identity.UserID, &identity.Name, &identity.UserType, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			utils.LogMessageWithFields(ctx, "info", "Login failed, unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		utils.LogMessageWithFields(ctx, "info", "Login failed, wrong password")
		return nil, ErrInvalidCredentials
	}

	identity.ExpiresAt = am.now().Add(am.SessionLifetime)
	utils.LogMessageWithFields(ctx, "info", fmt.Sprintf("User %d logged in", identity.UserID))
	return identity, nil
}

// HashPassword returns the salted bcrypt hash stored in the Password column.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
