package models

import (
	"time"

	"github.com/google/uuid"
)

// Seeded lookup ids, stable across installs (see lookups.go).
const (
	SenderTypeAutomated = 1
	SenderTypeContact   = 2
	SenderTypeUser      = 3

	MessageTypeSMS  = 1
	MessageTypeCall = 2
)

// Message is an append-only log entry; rows are never updated after
// creation (anonymization happens at capture time only).
type Message struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Phone             string    `json:"phone" db:"phone"`
	CaseID            int64     `json:"case_id" db:"case_id"`
	SenderTypeID      int       `json:"sender_type_id" db:"sender_type_id"`
	MessageTypeID     int       `json:"message_type_id" db:"message_type_id"`
	ProviderMessageID *string   `json:"provider_message_id" db:"provider_message_id"`
	Body              string    `json:"body" db:"body"`
	Sent              time.Time `json:"sent" db:"sent"`
}

func (Message) TableName() string {
	return "messages"
}

func (Message) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		phone TEXT NOT NULL,
		case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		sender_type_id INTEGER NOT NULL REFERENCES sender_types(id),
		message_type_id INTEGER NOT NULL REFERENCES message_types(id),
		provider_message_id TEXT,
		body TEXT NOT NULL,
		sent TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_case_id ON messages(case_id);
	CREATE INDEX IF NOT EXISTS idx_messages_phone ON messages(phone);
	CREATE INDEX IF NOT EXISTS idx_messages_sent ON messages(sent);
	`
}
