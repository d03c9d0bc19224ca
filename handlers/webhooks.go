package handlers

import (
	"log"
	"net/http"

	"github.com/open-ecommerce/helptext-sub001/config"
	"github.com/open-ecommerce/helptext-sub001/services"
	"github.com/open-ecommerce/helptext-sub001/utils"

	"github.com/gin-gonic/gin"
)

// MessageRouter is wired in main with the production store and gateway.
var MessageRouter *services.Router

// TwilioSMSWebhook handles inbound SMS callbacks from Twilio.
// Twilio posts application/x-www-form-urlencoded.
func TwilioSMSWebhook(c *gin.Context) {
	accountSID := c.PostForm("AccountSid")
	if !twilioAccountValid(accountSID) {
		log.Printf("dropping sms webhook with unknown AccountSid %q", accountSID)
		c.String(http.StatusForbidden, "")
		return
	}

	in := services.InboundMessage{
		Phone:             utils.NormalizePhone(c.PostForm("From")),
		Body:              c.PostForm("Body"),
		ProviderMessageID: c.PostForm("MessageSid"),
	}
	if in.Phone == "" {
		c.String(http.StatusBadRequest, "missing From")
		return
	}

	outcome := MessageRouter.ReceiveSMS(in)
	c.String(http.StatusOK, outcome.Result())
}

// TwilioVoiceWebhook handles inbound call callbacks from Twilio.
func TwilioVoiceWebhook(c *gin.Context) {
	accountSID := c.PostForm("AccountSid")
	if !twilioAccountValid(accountSID) {
		log.Printf("dropping voice webhook with unknown AccountSid %q", accountSID)
		c.String(http.StatusForbidden, "")
		return
	}

	in := services.InboundCall{
		Phone:          utils.NormalizePhone(c.PostForm("From")),
		ProviderCallID: c.PostForm("CallSid"),
	}
	if in.Phone == "" {
		c.String(http.StatusBadRequest, "missing From")
		return
	}

	outcome := MessageRouter.ReceiveCall(in)
	c.String(http.StatusOK, outcome.Result())
}

// TelerivetSMSWebhook handles inbound SMS callbacks from Telerivet,
// authenticated by the shared webhook secret.
func TelerivetSMSWebhook(c *gin.Context) {
	secret := c.PostForm("secret")
	if config.AppConfig.APISMSSecret == "" || secret != config.AppConfig.APISMSSecret {
		log.Printf("dropping telerivet webhook with bad secret")
		c.String(http.StatusForbidden, "")
		return
	}

	in := services.InboundMessage{
		Phone:             utils.NormalizePhone(c.PostForm("from_number")),
		Body:              c.PostForm("content"),
		ProviderMessageID: c.PostForm("id"),
	}
	if in.Phone == "" {
		c.String(http.StatusBadRequest, "missing from_number")
		return
	}

	outcome := MessageRouter.ReceiveSMS(in)
	c.String(http.StatusOK, outcome.Result())
}

func twilioAccountValid(accountSID string) bool {
	expected := config.AppConfig.APIAccountSID
	if expected == "" {
		expected = config.AppConfig.TwilioAccountSID
	}
	return expected != "" && accountSID == expected
}
