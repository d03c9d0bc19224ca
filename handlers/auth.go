package handlers

import (
	"database/sql"
	"net/http"

	"github.com/open-ecommerce/helptext-sub001/database"
	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Caseworker login
func LoginUser(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// Find caseworker by phone
	var user models.User
	query := `SELECT id, phone, full_name, password_hash, role, availability, is_active, created_at
	          FROM users WHERE phone = $1`
	err := database.Database.QueryRow(query, req.Phone).Scan(
		&user.ID, &user.Phone, &user.FullName, &user.PasswordHash,
		&user.Role, &user.Availability, &user.IsActive, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Check if user is active
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	// Verify password
	if user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}
	err = bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	phoneValue := ""
	if user.Phone != nil {
		phoneValue = *user.Phone
	}
	token, err := generateJWT(user.ID.String(), phoneValue, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	fullNameValue := ""
	if user.FullName != nil {
		fullNameValue = *user.FullName
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"phone":        phoneValue,
			"full_name":    fullNameValue,
			"role":         user.Role,
			"availability": user.Availability,
			"is_active":    user.IsActive,
			"created_at":   user.CreatedAt,
		},
		"token":   token,
		"message": "Login successful",
	})
}

// Caseworker registration
func RegisterUser(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Role == "" {
		req.Role = "helper"
	}
	if req.Role != "helper" && req.Role != "supervisor" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	// Check if the phone is already registered
	var exists bool
	err := database.Database.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`, req.Phone).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Phone number already registered"})
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var userID string
	query := `INSERT INTO users (phone, password_hash, full_name, role)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err = database.Database.QueryRow(query, req.Phone, string(hash), req.Name, req.Role).Scan(&userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := generateJWT(userID, req.Phone, req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":        userID,
			"phone":     req.Phone,
			"full_name": req.Name,
			"role":      req.Role,
			"is_active": true,
		},
		"token":   token,
		"message": "Registration successful",
	})
}
