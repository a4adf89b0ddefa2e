package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
environment: test
backend:
  type: clickhouse
model:
  type: coeffs
  coeffs_path: testdata/model.json
pricing:
  products: [diesel, e95]
  candidate_count: 41
  guardrails:
    max_change_pct: 0.03
    min_margin: 1.0
scheduler:
  enabled: true
  run_at: "06:30"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, []string{"diesel", "e95"}, c.Pricing.Products)
	assert.Equal(t, 41, c.Pricing.CandidateCount)
	require.NotNil(t, c.Pricing.Guardrails)
	require.NotNil(t, c.Pricing.Guardrails.MaxChangePct)
	assert.Equal(t, 0.03, *c.Pricing.Guardrails.MaxChangePct)
	require.NotNil(t, c.Pricing.Guardrails.MinMargin)
	assert.Equal(t, 1.0, *c.Pricing.Guardrails.MinMargin)
	assert.Nil(t, c.Pricing.Guardrails.MaxPrice)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", `
backend: {type: clickhouse}
model: {type: coeffs, coeffs_path: m.json}
pricing: {products: [diesel]}
`},
		{"bad backend", `
environment: test
backend: {type: postgres}
model: {type: coeffs, coeffs_path: m.json}
pricing: {products: [diesel]}
`},
		{"no products", `
environment: test
backend: {type: kafka}
model: {type: coeffs, coeffs_path: m.json}
pricing: {products: []}
`},
		{"http model without url", `
environment: test
backend: {type: kafka}
model: {type: http}
pricing: {products: [diesel]}
`},
		{"bad run_at", `
environment: test
backend: {type: kafka}
model: {type: coeffs, coeffs_path: m.json}
pricing: {products: [diesel]}
scheduler: {enabled: true, run_at: "6am"}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PRODUCTS", "lpg")
	t.Setenv("MODEL_SERVICE_URL", "http://model:9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"lpg"}, c.Pricing.Products)
	assert.Equal(t, "http://model:9000", c.Model.ServiceURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}
