package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGlobal() *Global {
	return &Global{
		DataDir:               "/tmp/coexnet",
		SignificanceThreshold: 5e-8,
		MinColumnScore:        0.3,
		SampleSize:            20,
		AllowedOrigins:        []string{"*"},
		MaxUploadMB:           64,
		PreviewRows:           10,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

func TestSetAndGet(t *testing.T) {
	c := validGlobal()
	cases := []struct{ key, val, want string }{
		{"significance_threshold", "0.001", "0.001"},
		{"min_column_score", "0.5", "0.5"},
		{"sample_size", "40", "40"},
		{"mirror_edges", "true", "true"},
		{"seed", "42", "42"},
		{"decimal_separator", "comma", ","},
		{"thousands_separator", "space", " "},
		{"allowed_origins", "http://a, http://b", "http://a,http://b"},
		{"log_format", "JSON", "json"},
		{"listen_addr", ":9000", ":9000"},
	}
	for _, tc := range cases {
		require.NoError(t, c.Set(tc.key, tc.val), tc.key)
		got, err := c.Get(tc.key)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.key)
	}
	for _, k := range Keys {
		_, err := c.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestSetRejectsInvalidAndKeepsState(t *testing.T) {
	c := validGlobal()
	assert.Error(t, c.Set("sample_size", "zero"))
	assert.Error(t, c.Set("sample_size", "0"))
	assert.Error(t, c.Set("significance_threshold", "1.5"))
	assert.Error(t, c.Set("min_column_score", "0"))
	assert.Error(t, c.Set("nope", "1"))
	_, err := c.Get("nope")
	assert.Error(t, err)
	assert.Equal(t, 20, c.SampleSize)
	assert.Equal(t, 5e-8, c.SignificanceThreshold)
	assert.Equal(t, 0.3, c.MinColumnScore)
}
