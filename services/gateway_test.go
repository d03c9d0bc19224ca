package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioGateway_Send(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody, gotUser string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"sid": "SM1", "status": "queued"})
	}))
	defer server.Close()

	gateway := NewTwilioGateway("AC123", "token", "+15550000000")
	gateway.BaseURL = server.URL

	err := gateway.Send("hello", "+15550001111")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "+15550001111", gotTo)
	assert.Equal(t, "+15550000000", gotFrom)
	assert.Equal(t, "hello", gotBody)
}

func TestTwilioGateway_SendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "The 'To' number is not valid", "code": 21211})
	}))
	defer server.Close()

	gateway := NewTwilioGateway("AC123", "token", "+15550000000")
	gateway.BaseURL = server.URL

	err := gateway.Send("hello", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The 'To' number is not valid")
}

func TestTelerivetGateway_Send(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "MSG1"})
	}))
	defer server.Close()

	gateway := NewTelerivetGateway("key", "PJ123")
	gateway.BaseURL = server.URL

	err := gateway.Send("hello", "+15550001111")
	require.NoError(t, err)

	assert.Equal(t, "/v1/projects/PJ123/messages/send", gotPath)
	assert.Equal(t, "hello", gotPayload["content"])
	assert.Equal(t, "+15550001111", gotPayload["to_number"])
}

func TestTelerivetGateway_SendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "Invalid API key"},
		})
	}))
	defer server.Close()

	gateway := NewTelerivetGateway("bad-key", "PJ123")
	gateway.BaseURL = server.URL

	err := gateway.Send("hello", "+15550001111")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}
