package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/open-ecommerce/helptext-sub001/config"
	"github.com/open-ecommerce/helptext-sub001/database"
	"github.com/open-ecommerce/helptext-sub001/models"
	"github.com/open-ecommerce/helptext-sub001/services"

	"github.com/gin-gonic/gin"
)

// Store and Gateway are wired in main alongside MessageRouter.
var (
	Store   *database.Store
	Gateway services.SMSGateway
)

// GetCaseMessages returns the message thread of a case, oldest first
func GetCaseMessages(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid case id"})
		return
	}

	query := `
		SELECT m.id, m.phone, m.case_id, m.sender_type_id, m.message_type_id,
		       m.provider_message_id, m.body, m.sent, st.name, mt.name
		FROM messages m
		JOIN sender_types st ON st.id = m.sender_type_id
		JOIN message_types mt ON mt.id = m.message_type_id
		WHERE m.case_id = $1
		ORDER BY m.sent ASC`
	rows, err := database.Database.Query(query, caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var messages []gin.H
	for rows.Next() {
		var msg models.Message
		var senderType, messageType string
		if err := rows.Scan(
			&msg.ID, &msg.Phone, &msg.CaseID, &msg.SenderTypeID, &msg.MessageTypeID,
			&msg.ProviderMessageID, &msg.Body, &msg.Sent, &senderType, &messageType,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read messages"})
			return
		}
		messages = append(messages, gin.H{
			"message":      msg,
			"sender_type":  senderType,
			"message_type": messageType,
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendCaseMessage sends an SMS to the case's contact from the web UI
// and records it on the thread.
func SendCaseMessage(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid case id"})
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	cse, err := Store.CaseByID(caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if cse == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	toPhone, err := Store.ContactPhone(caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Case has no contact phone"})
		return
	}

	if err := Gateway.Send(req.Body, toPhone); err != nil {
		// Surface the provider error verbatim; there is no retry.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	body := req.Body
	if config.AppConfig.AnonymizeMessages {
		body = "[anonymized]"
	}
	msg := &models.Message{
		Phone:         toPhone,
		CaseID:        caseID,
		SenderTypeID:  models.SenderTypeUser,
		MessageTypeID: models.MessageTypeSMS,
		Body:          body,
		Sent:          time.Now(),
	}
	if err := Store.CreateMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Message sent but could not be recorded"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
