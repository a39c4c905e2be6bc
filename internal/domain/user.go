package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserQuery selects an account by exactly one unique field.
type UserQuery struct {
	Name  string
	Email string
}

type UserRepository interface {
	Create(user *User) error
	GetByID(id uuid.UUID) (*User, error)
	GetByName(name string) (*User, error)
	GetByEmail(email string) (*User, error)
	DeleteByName(name string) error
}
