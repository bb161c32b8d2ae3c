package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Password length limits. 72 bytes is the bcrypt limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MinUserNameLength = 2
)

// User validation errors
var (
	ErrEmptyUserID      = NewValidationError("id", "cannot be empty", nil)
	ErrEmptyEmail       = NewValidationError("email", "is required", nil)
	ErrInvalidEmail     = NewValidationError("email", "invalid email format", nil)
	ErrPasswordTooShort = NewValidationError("password", "must be at least 8 characters long", nil)
	ErrPasswordTooLong  = NewValidationError("password", "must be at most 72 characters long", nil)
	ErrEmptyPassword    = NewValidationError("password", "is required", nil)
	ErrUserNameTooShort = NewValidationError("name", "must be at least 2 characters long", nil)
)

// User represents a registered user of 10xCards.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Password       string    `json:"-"` // plaintext, only set during registration or reset
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, name and plaintext
// password. The caller hashes the password before storing the user.
func NewUser(email, name, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if u.Name != "" && utf8.RuneCountInString(u.Name) < MinUserNameLength {
		return ErrUserNameTooShort
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidatePassword checks the length limits on plaintext passwords.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}
