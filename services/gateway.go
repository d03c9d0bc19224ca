package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioGateway sends SMS through the Twilio REST API.
type TwilioGateway struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	client     *http.Client
}

func NewTwilioGateway(accountSID, authToken, fromNumber string) *TwilioGateway {
	return &TwilioGateway{
		AccountSID: accountSID,
		AuthToken:  authToken,
		FromNumber: fromNumber,
		BaseURL:    "https://api.twilio.com",
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type twilioMessageResponse struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message"`
	Message      string  `json:"message"` // error payloads
}

// Send delivers one SMS. Errors are returned verbatim to the caller;
// there is no retry.
func (g *TwilioGateway) Send(body, toPhone string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.BaseURL, g.AccountSID)

	form := url.Values{}
	form.Set("To", toPhone)
	form.Set("From", g.FromNumber)
	form.Set("Body", body)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(g.AccountSID, g.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var message twilioMessageResponse
	if err := json.Unmarshal(responseBody, &message); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if message.Message != "" {
			return fmt.Errorf("twilio rejected message: %s", message.Message)
		}
		return fmt.Errorf("twilio rejected message with status %d: %s", resp.StatusCode, string(responseBody))
	}
	if message.ErrorMessage != nil {
		return fmt.Errorf("twilio delivery error: %s", *message.ErrorMessage)
	}
	return nil
}

// TelerivetGateway sends SMS through the Telerivet REST API.
type TelerivetGateway struct {
	APIKey    string
	ProjectID string
	BaseURL   string
	client    *http.Client
}

func NewTelerivetGateway(apiKey, projectID string) *TelerivetGateway {
	return &TelerivetGateway{
		APIKey:    apiKey,
		ProjectID: projectID,
		BaseURL:   "https://api.telerivet.com",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type telerivetSendRequest struct {
	Content  string `json:"content"`
	ToNumber string `json:"to_number"`
}

type telerivetSendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *TelerivetGateway) Send(body, toPhone string) error {
	endpoint := fmt.Sprintf("%s/v1/projects/%s/messages/send", g.BaseURL, g.ProjectID)

	payload, err := json.Marshal(telerivetSendRequest{Content: body, ToNumber: toPhone})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(g.APIKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var sendResponse telerivetSendResponse
	if err := json.Unmarshal(responseBody, &sendResponse); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if sendResponse.Error != nil {
		return fmt.Errorf("telerivet rejected message: %s", sendResponse.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telerivet rejected message with status %d: %s", resp.StatusCode, string(responseBody))
	}
	return nil
}
