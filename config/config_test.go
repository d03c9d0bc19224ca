package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	require.NoError(t, Load())

	assert.Equal(t, "8080", AppConfig.ServerPort)
	assert.Equal(t, "development", AppConfig.Environment)
	assert.Equal(t, "twilio", AppConfig.SMSProvider)
	assert.False(t, AppConfig.AnonymizeMessages)
	assert.True(t, AppConfig.AutoResponseEnabled)
	assert.NotEmpty(t, AppConfig.AutoResponseText)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	t.Setenv("PORT", "9090")
	t.Setenv("SMS_PROVIDER", "telerivet")
	t.Setenv("API_SMS_SECRET", "hunter2")
	t.Setenv("API_NUMBER", "+15550000000")
	t.Setenv("ANONYMIZE_MESSAGES", "true")
	t.Setenv("AUTO_RESPONSE_ENABLED", "false")
	t.Setenv("AUTO_RESPONSE_TEXT", "We will contact you.")

	require.NoError(t, Load())

	assert.Equal(t, "9090", AppConfig.ServerPort)
	assert.Equal(t, "telerivet", AppConfig.SMSProvider)
	assert.Equal(t, "hunter2", AppConfig.APISMSSecret)
	assert.Equal(t, "+15550000000", AppConfig.APINumber)
	assert.True(t, AppConfig.AnonymizeMessages)
	assert.False(t, AppConfig.AutoResponseEnabled)
	assert.Equal(t, "We will contact you.", AppConfig.AutoResponseText)
}

func TestLoad_InvalidBoolFallsBackToDefault(t *testing.T) {
	os.Clearenv()
	t.Setenv("ANONYMIZE_MESSAGES", "maybe")

	require.NoError(t, Load())

	assert.False(t, AppConfig.AnonymizeMessages)
}
