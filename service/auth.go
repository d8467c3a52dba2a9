// Package service holds the domain logic that sits between the HTTP
// handlers and the database
package service

import (
	"errors"
	"time"

	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/security"
	"bitwise74/avatar-api/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	// ErrInvalidCredentials covers both unknown accounts and wrong
	// passwords so callers can't probe which emails are registered
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
)

type Auth struct {
	DB    *gorm.DB
	Argon *security.ArgonHash
}

func NewAuth(db *gorm.DB) *Auth {
	return &Auth{DB: db, Argon: security.NewArgon()}
}

// Authenticate checks an email+password pair. Unverified accounts are
// rejected before the hash compare with a distinct, actionable error;
// everything else collapses into ErrInvalidCredentials.
func (a *Auth) Authenticate(email, password string) (*model.User, error) {
	var user model.User

	err := a.DB.Where("email = ?", validators.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if user.PasswordHash == nil {
		// OAuth-only account, no password to compare against
		return nil, ErrInvalidCredentials
	}

	if user.EmailVerified == nil {
		return nil, ErrEmailNotVerified
	}

	ok, err := a.Argon.VerifyPasswd(password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// OAuthProfile is the federated identity handed over by a trusted
// OAuth gateway after the provider dance completed.
type OAuthProfile struct {
	Provider string
	Email    string
	Name     string
	Image    string
}

// OAuthSignIn creates a local account on first federated sign-in and
// links subsequent sign-ins by email. The provider already verified
// the address, so EmailVerified is set immediately and no local
// password exists.
func (a *Auth) OAuthSignIn(p OAuthProfile) (*model.User, error) {
	email := validators.NormalizeEmail(p.Email)

	var user model.User

	err := a.DB.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	user = model.User{
		ID:            id,
		Name:          p.Name,
		Email:         email,
		Role:          model.RoleUser,
		EmailVerified: &now,
	}
	if p.Image != "" {
		user.Image = &p.Image
	}

	if err := a.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// NewID mints a random identifier for users, avatars and messages
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, 16)
}
