package models

import (
	"time"

	"github.com/google/uuid"
)

type ContactPhone struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ContactID uuid.UUID `json:"contact_id" db:"contact_id"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (ContactPhone) TableName() string {
	return "contact_phones"
}

func (ContactPhone) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS contact_phones (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contact_id UUID NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		phone TEXT NOT NULL UNIQUE REFERENCES phones(phone) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_contact_phones_contact_id ON contact_phones(contact_id);
	`
}
