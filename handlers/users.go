package handlers

import (
	"database/sql"
	"net/http"

	"github.com/open-ecommerce/helptext-sub001/database"
	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/gin-gonic/gin"
)

// GetUsers returns all caseworkers
func GetUsers(c *gin.Context) {
	query := `SELECT id, email, phone, full_name, role, availability, skills, is_active, created_at
	          FROM users ORDER BY created_at`
	rows, err := database.Database.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var users []gin.H
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Phone, &user.FullName, &user.Role,
			&user.Availability, &user.Skills, &user.IsActive, &user.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read users"})
			return
		}
		users = append(users, userResponse(&user))
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser returns one caseworker with open-case count
func GetUser(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	query := `SELECT id, email, phone, full_name, role, availability, skills, is_active, created_at
	          FROM users WHERE id = $1`
	err := database.Database.QueryRow(query, id).Scan(
		&user.ID, &user.Email, &user.Phone, &user.FullName, &user.Role,
		&user.Availability, &user.Skills, &user.IsActive, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var openCases int
	database.Database.QueryRow(
		`SELECT COUNT(*) FROM cases WHERE user_id = $1 AND state = 'open'`, id,
	).Scan(&openCases)

	response := userResponse(&user)
	response["open_cases"] = openCases
	c.JSON(http.StatusOK, gin.H{"user": response})
}

// UpdateUser edits a caseworker's profile fields
func UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		FullName *string `json:"full_name"`
		Skills   *string `json:"skills"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	query := `
		UPDATE users SET
			email = COALESCE($1, email),
			phone = COALESCE($2, phone),
			full_name = COALESCE($3, full_name),
			skills = COALESCE($4, skills),
			is_active = COALESCE($5, is_active)
		WHERE id = $6`
	res, err := database.Database.Exec(query, req.Email, req.Phone, req.FullName, req.Skills, req.IsActive, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

// UpdateAvailability toggles whether a caseworker can be auto-assigned
// new conversations.
func UpdateAvailability(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Availability *bool `json:"availability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	res, err := database.Database.Exec(`UPDATE users SET availability = $1 WHERE id = $2`, *req.Availability, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Availability updated",
		"availability": *req.Availability,
	})
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"phone":        user.Phone,
		"full_name":    user.FullName,
		"role":         user.Role,
		"availability": user.Availability,
		"skills":       user.Skills,
		"is_active":    user.IsActive,
		"created_at":   user.CreatedAt,
	}
}
