package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spotbak.db" {
			t.Errorf("expected database path ./spotbak.db, got %s", config.Database.Path)
		}

		if config.Backup.ImagePolicy != "largest" {
			t.Errorf("expected image policy largest, got %s", config.Backup.ImagePolicy)
		}

		if config.Backup.Concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", config.Backup.Concurrency)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.RefreshToken != "" {
			t.Errorf("expected empty refresh token, got %s", config.Credentials.Spotify.RefreshToken)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[backup]
image_policy = "all"
concurrency = 8

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
refresh_token = "refresh"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Backup.ImagePolicy != "all" || config.Backup.Concurrency != 8 {
			t.Errorf("unexpected backup config %+v", config.Backup)
		}
		if config.Backup.RequestsPerSecond != 5.0 {
			t.Errorf("expected default requests_per_second 5, got %v", config.Backup.RequestsPerSecond)
		}
		if config.Log.Level != "info" {
			t.Errorf("expected default log level info, got %s", config.Log.Level)
		}
		if !config.HasSpotifyCredentials() {
			t.Error("expected spotify credentials to be present")
		}
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backup]\nconcurrency = -1\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.Spotify.RefreshToken = "saved-token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.Spotify.RefreshToken != "saved-token" {
			t.Errorf("expected refresh token to round trip, got %q", loaded.Credentials.Spotify.RefreshToken)
		}
	})
}
