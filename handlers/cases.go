package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/open-ecommerce/helptext-sub001/database"
	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/gin-gonic/gin"
)

// GetCases returns cases with pagination and filtering
func GetCases(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	state := c.Query("state")
	userID := c.Query("user_id")

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `
		SELECT cs.id, cs.contact_id, cs.user_id, cs.category_id, cs.outcome_id, cs.severity_id,
		       cs.state, cs.start_date, cs.close_date, cs.comments, ct.name
		FROM cases cs
		JOIN contacts ct ON ct.id = cs.contact_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if state != "" {
		query += ` AND cs.state = $` + strconv.Itoa(argIndex)
		args = append(args, state)
		argIndex++
	}

	if userID != "" {
		query += ` AND cs.user_id = $` + strconv.Itoa(argIndex)
		args = append(args, userID)
		argIndex++
	}

	query += ` ORDER BY cs.start_date DESC LIMIT $` + strconv.Itoa(argIndex) + ` OFFSET $` + strconv.Itoa(argIndex+1)
	args = append(args, limit, offset)

	rows, err := database.Database.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var cases []gin.H
	for rows.Next() {
		var cse models.Case
		var contactName string
		if err := rows.Scan(
			&cse.ID, &cse.ContactID, &cse.UserID, &cse.CategoryID, &cse.OutcomeID,
			&cse.SeverityID, &cse.State, &cse.StartDate, &cse.CloseDate, &cse.Comments,
			&contactName,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cases"})
			return
		}
		cases = append(cases, gin.H{
			"case":         cse,
			"contact_name": contactName,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCase returns one case
func GetCase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid case id"})
		return
	}

	var cse models.Case
	query := `SELECT id, contact_id, user_id, category_id, outcome_id, severity_id, state, start_date, close_date, comments
	          FROM cases WHERE id = $1`
	err = database.Database.QueryRow(query, id).Scan(
		&cse.ID, &cse.ContactID, &cse.UserID, &cse.CategoryID, &cse.OutcomeID,
		&cse.SeverityID, &cse.State, &cse.StartDate, &cse.CloseDate, &cse.Comments,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": cse})
}

// UpdateCase edits category, outcome, severity and comments
func UpdateCase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid case id"})
		return
	}

	var req struct {
		CategoryID *int    `json:"category_id"`
		OutcomeID  *int    `json:"outcome_id"`
		SeverityID *int    `json:"severity_id"`
		Comments   *string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	query := `
		UPDATE cases SET
			category_id = COALESCE($1, category_id),
			outcome_id = COALESCE($2, outcome_id),
			severity_id = COALESCE($3, severity_id),
			comments = COALESCE($4, comments)
		WHERE id = $5`
	res, err := database.Database.Exec(query, req.CategoryID, req.OutcomeID, req.SeverityID, req.Comments, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update case"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case updated"})
}

// CloseCase marks a case as closed with an optional outcome
func CloseCase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid case id"})
		return
	}

	var req struct {
		OutcomeID *int `json:"outcome_id"`
	}
	// Body is optional
	c.ShouldBindJSON(&req)

	query := `
		UPDATE cases SET
			state = 'closed',
			close_date = now(),
			outcome_id = COALESCE($1, outcome_id)
		WHERE id = $2 AND state = 'open'`
	res, err := database.Database.Exec(query, req.OutcomeID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close case"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found or already closed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case closed"})
}

// AssignCase moves a case to another caseworker
func AssignCase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid case id"})
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var exists bool
	err = database.Database.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND is_active = TRUE)`, req.UserID,
	).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Caseworker not found"})
		return
	}

	res, err := database.Database.Exec(`UPDATE cases SET user_id = $1 WHERE id = $2`, req.UserID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign case"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case assigned"})
}
