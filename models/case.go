package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CaseStateOpen   = "open"
	CaseStateClosed = "closed"
)

// Case ids are plain integers because they travel inside SMS bodies as
// chat#<id># references.
type Case struct {
	ID         int64      `json:"id" db:"id"`
	ContactID  uuid.UUID  `json:"contact_id" db:"contact_id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	CategoryID *int       `json:"category_id" db:"category_id"`
	OutcomeID  *int       `json:"outcome_id" db:"outcome_id"`
	SeverityID *int       `json:"severity_id" db:"severity_id"`
	State      string     `json:"state" db:"state"` // open, closed
	StartDate  time.Time  `json:"start_date" db:"start_date"`
	CloseDate  *time.Time `json:"close_date" db:"close_date"`
	Comments   *string    `json:"comments" db:"comments"`
}

func (c *Case) IsOpen() bool {
	return c.State == CaseStateOpen
}

func (Case) TableName() string {
	return "cases"
}

func (Case) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS cases (
		id SERIAL PRIMARY KEY,
		contact_id UUID NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id),
		category_id INTEGER REFERENCES case_categories(id),
		outcome_id INTEGER REFERENCES outcome_categories(id),
		severity_id INTEGER REFERENCES severities(id),
		state TEXT NOT NULL DEFAULT 'open' CHECK (state IN ('open', 'closed')),
		start_date TIMESTAMP WITH TIME ZONE DEFAULT now(),
		close_date TIMESTAMP WITH TIME ZONE,
		comments TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_cases_contact_id ON cases(contact_id);
	CREATE INDEX IF NOT EXISTS idx_cases_user_id ON cases(user_id);
	CREATE INDEX IF NOT EXISTS idx_cases_state ON cases(state);
	CREATE INDEX IF NOT EXISTS idx_cases_start_date ON cases(start_date);
	`
}
