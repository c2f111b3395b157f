package contract

import (
	"testing"

	"github.com/flowsignal/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Team:         1,
		Trials:       DefaultTrials,
		HistoryDays:  DefaultHistoryDays,
		Workers:      4,
		Precision:    DefaultPrecision,
		Output:       "text",
		StoreBackend: "sqlite",
		Color:        "no",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1), cfg.TeamID)
	assert.Equal(t, DefaultTrials, cfg.Trials)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, schema.ThroughputMetric, cfg.Metric)
	assert.Nil(t, cfg.TargetDate)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateDates(t *testing.T) {
	input := validInput()
	input.TargetDate = "2026-03-15"
	input.Start = "2026-01-01"
	input.End = "2026-02-01"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	require.NotNil(t, cfg.TargetDate)
	assert.Equal(t, "2026-03-15", cfg.TargetDate.Format(DateFormat))
	require.NotNil(t, cfg.StartDate)
	require.NotNil(t, cfg.EndDate)
	assert.True(t, cfg.StartDate.Before(*cfg.EndDate))
}

func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"zero trials", func(in *ConfigRawInput) { in.Trials = 0 }},
		{"excessive trials", func(in *ConfigRawInput) { in.Trials = MaxTrials + 1 }},
		{"zero history", func(in *ConfigRawInput) { in.HistoryDays = 0 }},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 5 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"bad backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }},
		{"negative days", func(in *ConfigRawInput) { in.Days = -1 }},
		{"negative remaining", func(in *ConfigRawInput) { in.Remaining = -3 }},
		{"bad target date", func(in *ConfigRawInput) { in.TargetDate = "15/03/2026" }},
		{"inverted window", func(in *ConfigRawInput) { in.Start = "2026-02-01"; in.End = "2026-01-01" }},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }},
		{"bad metric", func(in *ConfigRawInput) { in.Metric = "velocity" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(input)
			assert.Error(t, ProcessAndValidate(&Config{}, input))
		})
	}
}

func TestProcessAndValidateMetric(t *testing.T) {
	input := validInput()
	input.Metric = "WIP"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.WIPMetric, cfg.Metric)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))

	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/flowcast"))

	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=flowcast"))
}

func TestGetPlainLabel(t *testing.T) {
	assert.Equal(t, CertainValue, GetPlainLabel(0.97))
	assert.Equal(t, ConfidentValue, GetPlainLabel(0.85))
	assert.Equal(t, RealisticValue, GetPlainLabel(0.50))
	assert.Equal(t, SpeculativeValue, GetPlainLabel(0.10))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.TargetDate = "2026-03-15"
	require.NoError(t, ProcessAndValidate(cfg, input))

	clone := cfg.Clone()
	require.NotNil(t, clone.TargetDate)
	assert.NotSame(t, cfg.TargetDate, clone.TargetDate)
	assert.Equal(t, *cfg.TargetDate, *clone.TargetDate)
}
