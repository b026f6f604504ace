package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"dietplanner/internal/apperr"
	"dietplanner/internal/models"
	"dietplanner/internal/store"
)

var ErrInvalidCredentials = &apperr.Error{Kind: apperr.Unauthenticated, Message: "invalid credentials"}

// Accounts issues user ids against email/password credentials.
type Accounts struct {
	store store.Store
	now   func() time.Time
	cost  int
}

type AccountsOption func(*Accounts)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) AccountsOption {
	return func(a *Accounts) {
		a.cost = cost
	}
}

func NewAccounts(st store.Store, opts ...AccountsOption) *Accounts {
	a := &Accounts{store: st, now: time.Now, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func (a *Accounts) Register(ctx context.Context, email, password string) (models.Account, error) {
	creds := credentials{Email: normalizeEmail(email), Password: password}
	if err := apperr.ValidateStruct(creds); err != nil {
		return models.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), a.cost)
	if err != nil {
		log.Println("[AUTH] [ERROR] password hash failed:", err)
		return models.Account{}, apperr.Remote("password hash failed", err)
	}

	account := models.Account{
		UserID:       uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    a.now(),
	}

	path := store.Account(accountKey(creds.Email))
	err = a.store.RunTransaction(ctx, func(tx store.Tx) error {
		_, err := tx.Get(path)
		if err == nil {
			return apperr.Conflictf("email already registered")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Set(path, account)
	})
	if err != nil {
		if apperr.Is(err, apperr.Conflict) {
			log.Println("[AUTH] [ERROR] register email exists:", creds.Email)
			return models.Account{}, err
		}
		log.Println("[AUTH] [ERROR] register failed:", err)
		return models.Account{}, apperr.Remote("could not register account", err)
	}

	log.Println("[AUTH] [INFO] account registered:", creds.Email)
	return account, nil
}

func (a *Accounts) Login(ctx context.Context, email, password string) (models.Account, error) {
	normalized := normalizeEmail(email)
	if normalized == "" || strings.TrimSpace(password) == "" {
		return models.Account{}, apperr.Validation("email and password are required")
	}

	doc, err := a.store.Get(ctx, store.Account(accountKey(normalized)))
	if errors.Is(err, store.ErrNotFound) {
		log.Println("[AUTH] [ERROR] login unknown email")
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Println("[AUTH] [ERROR] login lookup failed:", err)
		return models.Account{}, apperr.Remote("could not look up account", err)
	}

	var account models.Account
	if err := doc.Decode(&account); err != nil {
		return models.Account{}, apperr.Remote("could not read account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		log.Println("[AUTH] [ERROR] login invalid credentials")
		return models.Account{}, ErrInvalidCredentials
	}

	log.Println("[AUTH] [INFO] login succeeded:", account.Email)
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// accountKey keeps arbitrary email characters out of the document path.
func accountKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
