package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 2*time.Second, cfg.ConfirmDelay)
	assert.Equal(t, time.Second, cfg.MessageDeliveryDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.ThreadLoadDelay)
	assert.Equal(t, time.Second, cfg.LoadMoreDelay)
	assert.Equal(t, 600, cfg.RateLimitPerMin)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"SESSION_SECRET": ""}},
		{"bad duration", map[string]string{"PAYMENT_DELAY": "soon"}},
		{"negative duration", map[string]string{"CONFIRM_DELAY": "-1s"}},
		{"bad int", map[string]string{"BCRYPT_COST": "high"}},
		{"prod without origins", map[string]string{"APP_ENV": "prod", "PROD_ORIGINS": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "secret")
			t.Setenv("APP_ENV", "dev")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
