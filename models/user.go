package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        *string   `json:"email" db:"email"`
	Phone        *string   `json:"phone" db:"phone"`
	PasswordHash *string   `json:"password_hash" db:"password_hash"`
	FullName     *string   `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"` // helper, supervisor
	Availability bool      `json:"availability" db:"availability"`
	Skills       *string   `json:"skills" db:"skills"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (User) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT UNIQUE,
		phone TEXT UNIQUE,
		password_hash TEXT,
		full_name TEXT,
		role TEXT DEFAULT 'helper' CHECK (role IN ('helper', 'supervisor')),
		availability BOOLEAN DEFAULT FALSE,
		skills TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone);
	CREATE INDEX IF NOT EXISTS idx_users_availability ON users(availability);
	`
}
