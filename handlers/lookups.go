package handlers

import (
	"net/http"

	"github.com/open-ecommerce/helptext-sub001/database"

	"github.com/gin-gonic/gin"
)

// GetLookups returns all static reference tables in one payload
func GetLookups(c *gin.Context) {
	tables := map[string]string{
		"case_categories":    "case_categories",
		"outcome_categories": "outcome_categories",
		"severities":         "severities",
		"sender_types":       "sender_types",
		"message_types":      "message_types",
	}

	response := gin.H{}
	for key, table := range tables {
		rows, err := database.Database.Query(`SELECT id, name FROM ` + table + ` ORDER BY id`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var entries []gin.H
		for rows.Next() {
			var id int
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read lookups"})
				return
			}
			entries = append(entries, gin.H{"id": id, "name": name})
		}
		rows.Close()
		response[key] = entries
	}

	c.JSON(http.StatusOK, response)
}
