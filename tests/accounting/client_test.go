package accounting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/accounting"
	"github.com/fieldmed/fieldsales-api/internal/config"
)

func TestNewClient_DisabledConfig(t *testing.T) {
	logger := zap.NewNop()

	client, err := accounting.NewClient(nil, logger)
	assert.NoError(t, err)
	assert.Nil(t, client)

	cfg := &config.AccountingConfig{
		Enabled: false,
	}
	client, err = accounting.NewClient(cfg, logger)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

// A partially configured ERP should degrade to "unavailable", never block
// startup: the debt engine fails open without it.
func TestNewClient_MissingCredentials(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name string
		cfg  *config.AccountingConfig
	}{
		{
			name: "missing URL",
			cfg: &config.AccountingConfig{
				Enabled:  true,
				URL:      "",
				User:     "erp_reader",
				Password: "secret",
			},
		},
		{
			name: "missing user",
			cfg: &config.AccountingConfig{
				Enabled:  true,
				URL:      "erp.internal:1433/accounting",
				User:     "",
				Password: "secret",
			},
		},
		{
			name: "missing password",
			cfg: &config.AccountingConfig{
				Enabled:  true,
				URL:      "erp.internal:1433/accounting",
				User:     "erp_reader",
				Password: "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := accounting.NewClient(tt.cfg, logger)

			assert.NoError(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestClient_IsEnabled_NilClient(t *testing.T) {
	var nilClient *accounting.Client
	assert.False(t, nilClient.IsEnabled())
}

func TestClient_Close_NilClient(t *testing.T) {
	var nilClient *accounting.Client
	assert.NoError(t, nilClient.Close())
}

func TestClient_HealthCheck_NilClient(t *testing.T) {
	var nilClient *accounting.Client
	status := nilClient.HealthCheck(context.Background())
	assert.NotNil(t, status)
	assert.Equal(t, "disabled", status.Status)
}

func TestClient_FetchUnsettledInvoices_NilClient(t *testing.T) {
	var nilClient *accounting.Client
	_, err := nilClient.FetchUnsettledInvoices(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}
