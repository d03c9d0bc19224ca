package models

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Country    *string   `json:"country" db:"country"`
	Language   *string   `json:"language" db:"language"`
	Address    *string   `json:"address" db:"address"`
	City       *string   `json:"city" db:"city"`
	PostalCode *string   `json:"postal_code" db:"postal_code"`
	Comments   *string   `json:"comments" db:"comments"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (Contact) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contacts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		country TEXT,
		language TEXT,
		address TEXT,
		city TEXT,
		postal_code TEXT,
		comments TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
	`
}
