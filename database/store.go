package database

import (
	"database/sql"
	"fmt"

	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/google/uuid"
)

// Store exposes typed persistence operations to the routing workflow
// and the HTTP handlers. It satisfies the repository interfaces
// declared in the services package.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, email, phone, password_hash, full_name, role, availability, skills, is_active, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Phone, &user.PasswordHash, &user.FullName,
		&user.Role, &user.Availability, &user.Skills, &user.IsActive, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// UserByPhone looks up a caseworker profile by phone number. Returns
// nil without error when the phone does not belong to a caseworker.
func (s *Store) UserByPhone(phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1 AND is_active = TRUE`
	return scanUser(s.db.QueryRow(query, phone))
}

func (s *Store) UserByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(query, id))
}

// NextAvailableUser picks the next caseworker with availability = TRUE.
// Ordering is insertion order; no fairness guarantee beyond that.
// Returns nil when the pool is empty.
func (s *Store) NextAvailableUser() (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE availability = TRUE AND is_active = TRUE
	          ORDER BY created_at, id LIMIT 1`
	return scanUser(s.db.QueryRow(query))
}

func (s *Store) PhoneExists(phone string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM contact_phones WHERE phone = $1)`
	if err := s.db.QueryRow(query, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check phone: %w", err)
	}
	return exists, nil
}

// CurrentCaseForPhone returns the most recent case for the contact
// linked to phone, or nil when the phone is unknown. Tie-break on
// equal start dates is the higher case id.
func (s *Store) CurrentCaseForPhone(phone string) (*models.Case, error) {
	query := `SELECT c.id, c.contact_id, c.user_id, c.category_id, c.outcome_id, c.severity_id,
	                 c.state, c.start_date, c.close_date, c.comments
	          FROM cases c
	          JOIN contact_phones cp ON cp.contact_id = c.contact_id
	          WHERE cp.phone = $1
	          ORDER BY c.start_date DESC, c.id DESC
	          LIMIT 1`
	return s.scanCase(s.db.QueryRow(query, phone))
}

func (s *Store) CaseByID(id int64) (*models.Case, error) {
	query := `SELECT id, contact_id, user_id, category_id, outcome_id, severity_id,
	                 state, start_date, close_date, comments
	          FROM cases WHERE id = $1`
	return s.scanCase(s.db.QueryRow(query, id))
}

func (s *Store) scanCase(row *sql.Row) (*models.Case, error) {
	var cse models.Case
	err := row.Scan(
		&cse.ID, &cse.ContactID, &cse.UserID, &cse.CategoryID, &cse.OutcomeID,
		&cse.SeverityID, &cse.State, &cse.StartDate, &cse.CloseDate, &cse.Comments,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan case: %w", err)
	}
	return &cse, nil
}

// ContactPhone returns the phone number of the contact a case belongs to.
func (s *Store) ContactPhone(caseID int64) (string, error) {
	var phone string
	query := `SELECT cp.phone FROM contact_phones cp
	          JOIN cases c ON c.contact_id = cp.contact_id
	          WHERE c.id = $1 LIMIT 1`
	err := s.db.QueryRow(query, caseID).Scan(&phone)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("case %d has no contact phone", caseID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up contact phone: %w", err)
	}
	return phone, nil
}

// CreateIntake creates the contact, phone, contact-phone link and open
// case for a first-time caller in one transaction. The phone and link
// inserts use ON CONFLICT DO NOTHING so that two near-simultaneous
// messages from the same new number cannot create duplicate rows; the
// loser of the race gets the winner's current case back. A phone that
// was registered through the contacts API but has no case yet gets a
// case opened for its existing contact instead.
func (s *Store) CreateIntake(name, phone string, userID uuid.UUID) (*models.Case, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin intake transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO phones (phone, comment) VALUES ($1, 'added by system')
		 ON CONFLICT (phone) DO NOTHING`, phone,
	); err != nil {
		return nil, fmt.Errorf("failed to insert phone: %w", err)
	}

	var contactID uuid.UUID
	if err := tx.QueryRow(
		`INSERT INTO contacts (name, comments) VALUES ($1, 'added by system') RETURNING id`, name,
	).Scan(&contactID); err != nil {
		return nil, fmt.Errorf("failed to insert contact: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO contact_phones (contact_id, phone) VALUES ($1, $2)
		 ON CONFLICT (phone) DO NOTHING`, contactID, phone,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to link phone: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// The phone is already linked to a contact, either by a
		// concurrent intake or through the contacts API.
		tx.Rollback()
		if cse, err := s.CurrentCaseForPhone(phone); err != nil || cse != nil {
			return cse, err
		}
		return s.createCaseForLinkedPhone(phone, userID)
	}

	var cse models.Case
	if err := tx.QueryRow(
		`INSERT INTO cases (contact_id, user_id, state) VALUES ($1, $2, 'open')
		 RETURNING id, contact_id, user_id, state, start_date`, contactID, userID,
	).Scan(&cse.ID, &cse.ContactID, &cse.UserID, &cse.State, &cse.StartDate); err != nil {
		return nil, fmt.Errorf("failed to insert case: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit intake: %w", err)
	}
	return &cse, nil
}

// createCaseForLinkedPhone opens a case for the contact a phone is
// already linked to. This covers contacts registered manually with a
// phone number before their first inbound message.
func (s *Store) createCaseForLinkedPhone(phone string, userID uuid.UUID) (*models.Case, error) {
	var contactID uuid.UUID
	err := s.db.QueryRow(`SELECT contact_id FROM contact_phones WHERE phone = $1`, phone).Scan(&contactID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("phone %s is not linked to a contact", phone)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact for phone: %w", err)
	}

	var cse models.Case
	if err := s.db.QueryRow(
		`INSERT INTO cases (contact_id, user_id, state) VALUES ($1, $2, 'open')
		 RETURNING id, contact_id, user_id, state, start_date`, contactID, userID,
	).Scan(&cse.ID, &cse.ContactID, &cse.UserID, &cse.State, &cse.StartDate); err != nil {
		return nil, fmt.Errorf("failed to insert case: %w", err)
	}
	return &cse, nil
}

// Reassign moves a case to a different caseworker.
func (s *Store) Reassign(caseID int64, userID uuid.UUID) error {
	if _, err := s.db.Exec(`UPDATE cases SET user_id = $1 WHERE id = $2`, userID, caseID); err != nil {
		return fmt.Errorf("failed to reassign case %d: %w", caseID, err)
	}
	return nil
}

// CreateMessage appends one immutable message row.
func (s *Store) CreateMessage(m *models.Message) error {
	query := `INSERT INTO messages (phone, case_id, sender_type_id, message_type_id, provider_message_id, body, sent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := s.db.QueryRow(
		query, m.Phone, m.CaseID, m.SenderTypeID, m.MessageTypeID, m.ProviderMessageID, m.Body, m.Sent,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}
