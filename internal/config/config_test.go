package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, 1000, cfg.ChunkSize)
	require.Equal(t, 200, cfg.ChunkOverlap)
	require.Equal(t, 3, cfg.TopK)
	require.Equal(t, "text-embedding-ada-002", cfg.EmbedModel)
	require.Equal(t, "gpt-4o", cfg.ChatModel)
	require.InDelta(t, 0.5, cfg.Temperature, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsOverlapNotSmallerThanSize(t *testing.T) {
	cfg := Load()
	cfg.ChunkSize = 200
	cfg.ChunkOverlap = 200
	require.Error(t, cfg.Validate())

	cfg.ChunkOverlap = 300
	require.Error(t, cfg.Validate())

	cfg.ChunkOverlap = 199
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownProviders(t *testing.T) {
	cfg := Load()
	cfg.EmbedProvider = "bedrock"
	require.Error(t, cfg.Validate())

	cfg = Load()
	cfg.ChatProvider = "claude"
	require.Error(t, cfg.Validate())
}

func TestValidateServeRequiresSecretAndBucket(t *testing.T) {
	cfg := Load()
	cfg.JWTSecret = ""
	cfg.GCSBucket = "b"
	require.Error(t, cfg.ValidateServe())

	cfg.JWTSecret = "s"
	cfg.GCSBucket = ""
	require.Error(t, cfg.ValidateServe())

	cfg.GCSBucket = "b"
	require.NoError(t, cfg.ValidateServe())
}

func TestValidateRejectsTemperatureOutOfRange(t *testing.T) {
	cfg := Load()
	cfg.Temperature = 2.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for temperature out of range")
	}
}
