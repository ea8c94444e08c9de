package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("fails without api key", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("reads api key from dotenv file", func(t *testing.T) {
		chdir(t, t.TempDir())
		require.NoError(t, os.WriteFile(DotEnvFile, []byte("ARK_API_KEY=from-dotenv\n"), 0o600))
		t.Setenv(APIKeyEnv, "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.Ark.APIKey)
	})

	t.Run("process environment wins over dotenv", func(t *testing.T) {
		chdir(t, t.TempDir())
		require.NoError(t, os.WriteFile(DotEnvFile, []byte("ARK_API_KEY=from-dotenv\n"), 0o600))
		t.Setenv(APIKeyEnv, "from-env")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Ark.APIKey)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "test-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-key", cfg.Ark.APIKey)
		assert.Equal(t, ":8000", cfg.Server.Address)
		assert.Equal(t, "seed-1-6-250615", cfg.Ark.Chat.Model)
		assert.Equal(t, "seedream-4-0-250828", cfg.Ark.Image.Model)
		assert.Equal(t, "2K", cfg.Ark.Image.Size)
		assert.True(t, cfg.Ark.Image.Watermark)
		assert.Equal(t, "seedance-1-0-lite-i2v-250428", cfg.Ark.Video.Model)
		assert.Equal(t, 3*time.Second, cfg.Ark.Video.PollInterval)
		assert.Equal(t, 60*time.Second, cfg.Ark.Video.PollTimeout)
		assert.Equal(t, 90*time.Second, cfg.Ark.Video.MaxWait)
		assert.Greater(t, cfg.Server.WriteTimeout, cfg.Ark.Video.CallTimeout+cfg.Ark.Video.MaxWait)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowOrigins)
		assert.True(t, cfg.Ark.SelfCheck)
	})

	t.Run("environment overrides nested keys", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "test-key")
		t.Setenv("ARKGATE_ARK_VIDEO_POLL_INTERVAL", "1s")
		t.Setenv("ARKGATE_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, time.Second, cfg.Ark.Video.PollInterval)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("rejects interval longer than timeout", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "test-key")
		t.Setenv("ARKGATE_ARK_VIDEO_POLL_INTERVAL", "2m")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestArkConfig_TaskEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		taskPath string
		want     string
	}{
		{"plain", "https://ark.example.com/api/v3", "/contents/generations/tasks", "https://ark.example.com/api/v3/contents/generations/tasks"},
		{"trailing slash", "https://ark.example.com/api/v3/", "contents/generations/tasks", "https://ark.example.com/api/v3/contents/generations/tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ArkConfig{BaseURL: tt.baseURL, Video: ArkVideoConfig{TaskPath: tt.taskPath}}
			assert.Equal(t, tt.want, cfg.TaskEndpoint())
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Ark: ArkConfig{
			BaseURL: "https://ark.example.com",
			Video:   ArkVideoConfig{PollInterval: 3 * time.Second, PollTimeout: 60 * time.Second},
		}}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Ark.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Ark.Video.PollInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Ark.Video.MaxWait = 30 * time.Second
	assert.Error(t, cfg.Validate(), "max_wait shorter than poll_timeout")

	cfg = valid()
	cfg.Ark.Video.CallTimeout = 60 * time.Second
	cfg.Ark.Video.MaxWait = 90 * time.Second
	cfg.Server.WriteTimeout = 150 * time.Second
	assert.Error(t, cfg.Validate(), "write timeout inside the video budget")

	cfg.Server.WriteTimeout = 180 * time.Second
	assert.NoError(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}
