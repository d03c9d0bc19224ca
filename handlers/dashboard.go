package handlers

import (
	"net/http"

	"github.com/open-ecommerce/helptext-sub001/database"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns headline counts for the caseworker UI
func GetDashboard(c *gin.Context) {
	var openCases, closedCases, totalContacts, totalMessages, availableUsers int

	if err := database.Database.QueryRow(`SELECT COUNT(*) FROM cases WHERE state = 'open'`).Scan(&openCases); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	database.Database.QueryRow(`SELECT COUNT(*) FROM cases WHERE state = 'closed'`).Scan(&closedCases)
	database.Database.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&totalContacts)
	database.Database.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&totalMessages)
	database.Database.QueryRow(`SELECT COUNT(*) FROM users WHERE availability = TRUE AND is_active = TRUE`).Scan(&availableUsers)

	c.JSON(http.StatusOK, gin.H{
		"open_cases":      openCases,
		"closed_cases":    closedCases,
		"contacts":        totalContacts,
		"messages":        totalMessages,
		"available_users": availableUsers,
	})
}
