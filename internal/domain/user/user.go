package user

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/minsukang/accounts/internal/domain/shared"
)

// Collection is the document collection users are persisted in
const Collection = "users"

// User represents a user account document. PasswordHash is stored but
// never serialized to API responses; the resolver projects an explicit
// allow-list of fields.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// ObjectID returns the assigned identifier
func (u *User) ObjectID() bson.ObjectID {
	return u.ID
}

// SetObjectID assigns the identifier. Called once, at creation.
func (u *User) SetObjectID(id bson.ObjectID) {
	u.ID = id
}

// NewUser creates a new user with a hashed password. The identifier is
// assigned by the repository at creation time.
func NewUser(email string, plainPassword string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Authenticate verifies the password against the stored hash
func (u *User) Authenticate(plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword))
	return err == nil
}

// NormalizeEmail validates and canonicalizes an email address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return "", shared.ErrInvalidInput("Email address is not valid")
	}
	return email, nil
}

// HashPassword hashes a plain text password with bcrypt
func HashPassword(plainPassword string) (string, error) {
	if len(plainPassword) < 6 {
		return "", shared.ErrInvalidInput("Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
