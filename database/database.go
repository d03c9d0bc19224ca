package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/open-ecommerce/helptext-sub001/models"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	// Enable pgcrypto extension
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Define the order of table creation (respecting foreign key dependencies)
	models := []interface{}{
		// Lookup tables first
		models.CaseCategory{},
		models.OutcomeCategory{},
		models.Severity{},
		models.SenderType{},
		models.MessageType{},
		// Core entities
		models.User{},
		models.Contact{},
		models.Phone{},
		models.ContactPhone{},
		models.Case{},
		models.Message{},
	}

	for _, model := range models {
		if tableModel, ok := model.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			tableName := tableModel.TableName()
			createSQL := tableModel.CreateTableSQL()

			log.Printf("Creating table: %s", tableName)
			if _, err := db.Exec(createSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableName, err)
			}
		}
	}

	if err := db.seedLookups(); err != nil {
		return fmt.Errorf("failed to seed lookup tables: %w", err)
	}

	log.Println("All tables created successfully!")
	return nil
}

// seedLookups inserts the static reference rows. sender_types and
// message_types use fixed ids the routing workflow relies on.
func (db *DB) seedLookups() error {
	seeds := []string{
		`INSERT INTO sender_types (id, name) VALUES
			(1, 'automated'), (2, 'contact'), (3, 'user')
			ON CONFLICT (id) DO NOTHING;`,
		`INSERT INTO message_types (id, name) VALUES
			(1, 'sms'), (2, 'call')
			ON CONFLICT (id) DO NOTHING;`,
		`INSERT INTO case_categories (name) VALUES
			('general'), ('housing'), ('health'), ('legal'), ('financial')
			ON CONFLICT (name) DO NOTHING;`,
		`INSERT INTO outcome_categories (name) VALUES
			('resolved'), ('referred'), ('no contact'), ('ongoing')
			ON CONFLICT (name) DO NOTHING;`,
		`INSERT INTO severities (name) VALUES
			('low'), ('medium'), ('high'), ('critical')
			ON CONFLICT (name) DO NOTHING;`,
	}

	for _, seed := range seeds {
		if _, err := db.Exec(seed); err != nil {
			return err
		}
	}
	return nil
}
