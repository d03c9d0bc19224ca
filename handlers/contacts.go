package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/open-ecommerce/helptext-sub001/database"
	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/gin-gonic/gin"
)

// GetContacts returns all contacts with pagination and search
func GetContacts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `
		SELECT ct.id, ct.name, ct.country, ct.language, ct.address, ct.city,
		       ct.postal_code, ct.comments, ct.created_at, ct.updated_at
		FROM contacts ct
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if search != "" {
		query += ` AND (
			ct.name ILIKE $` + strconv.Itoa(argIndex) + ` OR
			ct.id IN (SELECT contact_id FROM contact_phones WHERE phone ILIKE $` + strconv.Itoa(argIndex) + `)
		)`
		args = append(args, "%"+search+"%")
		argIndex++
	}

	query += ` ORDER BY ct.created_at DESC LIMIT $` + strconv.Itoa(argIndex) + ` OFFSET $` + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	rows, err := database.Database.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		if err := rows.Scan(
			&contact.ID, &contact.Name, &contact.Country, &contact.Language,
			&contact.Address, &contact.City, &contact.PostalCode, &contact.Comments,
			&contact.CreatedAt, &contact.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read contacts"})
			return
		}
		contacts = append(contacts, contact)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM contacts`
	if err := database.Database.QueryRow(countQuery).Scan(&total); err != nil {
		total = len(contacts)
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts": contacts,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetContact returns one contact with its phone numbers and cases
func GetContact(c *gin.Context) {
	id := c.Param("id")

	var contact models.Contact
	query := `SELECT id, name, country, language, address, city, postal_code, comments, created_at, updated_at
	          FROM contacts WHERE id = $1`
	err := database.Database.QueryRow(query, id).Scan(
		&contact.ID, &contact.Name, &contact.Country, &contact.Language,
		&contact.Address, &contact.City, &contact.PostalCode, &contact.Comments,
		&contact.CreatedAt, &contact.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	phones := []string{}
	rows, err := database.Database.Query(`SELECT phone FROM contact_phones WHERE contact_id = $1`, id)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var phone string
			if err := rows.Scan(&phone); err == nil {
				phones = append(phones, phone)
			}
		}
	}

	cases := []models.Case{}
	caseRows, err := database.Database.Query(
		`SELECT id, contact_id, user_id, category_id, outcome_id, severity_id, state, start_date, close_date, comments
		 FROM cases WHERE contact_id = $1 ORDER BY start_date DESC`, id)
	if err == nil {
		defer caseRows.Close()
		for caseRows.Next() {
			var cse models.Case
			if err := caseRows.Scan(
				&cse.ID, &cse.ContactID, &cse.UserID, &cse.CategoryID, &cse.OutcomeID,
				&cse.SeverityID, &cse.State, &cse.StartDate, &cse.CloseDate, &cse.Comments,
			); err == nil {
				cases = append(cases, cse)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"contact": contact,
		"phones":  phones,
		"cases":   cases,
	})
}

// CreateContact registers a contact manually (as opposed to the
// automatic intake on first inbound message)
func CreateContact(c *gin.Context) {
	var req struct {
		Name       string  `json:"name" binding:"required"`
		Phone      string  `json:"phone"`
		Country    *string `json:"country"`
		Language   *string `json:"language"`
		Address    *string `json:"address"`
		City       *string `json:"city"`
		PostalCode *string `json:"postal_code"`
		Comments   *string `json:"comments"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Phone != "" {
		exists, err := Store.PhoneExists(req.Phone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "Phone number already belongs to another contact"})
			return
		}
	}

	tx, err := database.Database.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	var contact models.Contact
	err = tx.QueryRow(
		`INSERT INTO contacts (name, country, language, address, city, postal_code, comments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, name, country, language, address, city, postal_code, comments, created_at, updated_at`,
		req.Name, req.Country, req.Language, req.Address, req.City, req.PostalCode, req.Comments,
	).Scan(
		&contact.ID, &contact.Name, &contact.Country, &contact.Language,
		&contact.Address, &contact.City, &contact.PostalCode, &contact.Comments,
		&contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	if req.Phone != "" {
		if _, err := tx.Exec(
			`INSERT INTO phones (phone) VALUES ($1) ON CONFLICT (phone) DO NOTHING`, req.Phone,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register phone"})
			return
		}
		if _, err := tx.Exec(
			`INSERT INTO contact_phones (contact_id, phone) VALUES ($1, $2)`, contact.ID, req.Phone,
		); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Phone number already belongs to another contact"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

// UpdateContact edits the descriptive fields of a contact
func UpdateContact(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Name       *string `json:"name"`
		Country    *string `json:"country"`
		Language   *string `json:"language"`
		Address    *string `json:"address"`
		City       *string `json:"city"`
		PostalCode *string `json:"postal_code"`
		Comments   *string `json:"comments"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	query := `
		UPDATE contacts SET
			name = COALESCE($1, name),
			country = COALESCE($2, country),
			language = COALESCE($3, language),
			address = COALESCE($4, address),
			city = COALESCE($5, city),
			postal_code = COALESCE($6, postal_code),
			comments = COALESCE($7, comments),
			updated_at = now()
		WHERE id = $8`
	res, err := database.Database.Exec(query,
		req.Name, req.Country, req.Language, req.Address, req.City, req.PostalCode, req.Comments, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact updated"})
}

// DeleteContact removes a contact and, via cascades, its phones and cases
func DeleteContact(c *gin.Context) {
	id := c.Param("id")

	res, err := database.Database.Exec(`DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
}
