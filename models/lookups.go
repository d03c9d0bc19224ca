package models

// Static reference tables. Seeded once at startup; sender_types and
// message_types carry fixed ids the routing workflow depends on.

type CaseCategory struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (CaseCategory) TableName() string {
	return "case_categories"
}

func (CaseCategory) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS case_categories (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`
}

type OutcomeCategory struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (OutcomeCategory) TableName() string {
	return "outcome_categories"
}

func (OutcomeCategory) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS outcome_categories (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`
}

type Severity struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (Severity) TableName() string {
	return "severities"
}

func (Severity) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS severities (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`
}

type SenderType struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (SenderType) TableName() string {
	return "sender_types"
}

func (SenderType) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS sender_types (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`
}

type MessageType struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (MessageType) TableName() string {
	return "message_types"
}

func (MessageType) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS message_types (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`
}
