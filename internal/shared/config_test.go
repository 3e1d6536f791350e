package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "showprep.db" {
			t.Errorf("expected database path showprep.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:8080/callback" {
			t.Errorf("expected default redirect URI, got %s", config.Credentials.Spotify.RedirectURI)
		}

		if config.Resolver.RateLimit != 5.0 {
			t.Errorf("expected resolver rate limit 5.0, got %f", config.Resolver.RateLimit)
		}

		if config.Resolver.StrictDetails {
			t.Error("expected strict_details to default to false")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:9090/redirect"

[resolver]
strict_details = true
rate_limit = 2.5
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

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if !config.Resolver.StrictDetails {
			t.Error("expected strict_details to be true")
		}

		if config.Resolver.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %f", config.Resolver.RateLimit)
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_id"
		config.Credentials.Spotify.AccessToken = "saved_token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.ClientID != "saved_id" {
			t.Errorf("expected client_id saved_id, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if loaded.Credentials.Spotify.AccessToken != "saved_token" {
			t.Errorf("expected access token to round-trip, got %s", loaded.Credentials.Spotify.AccessToken)
		}
	})
}

func TestSpotifyConfig(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		t.Run("stores token fields", func(t *testing.T) {
			cfg := SpotifyConfig{RefreshToken: "old_refresh"}
			expiry := time.Now().Add(time.Hour).Truncate(time.Second)

			err := cfg.Update(&oauth2.Token{
				AccessToken:  "new_access",
				RefreshToken: "new_refresh",
				Expiry:       expiry,
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if cfg.AccessToken != "new_access" {
				t.Errorf("expected access token stored, got %s", cfg.AccessToken)
			}
			if cfg.RefreshToken != "new_refresh" {
				t.Errorf("expected refresh token stored, got %s", cfg.RefreshToken)
			}
			if cfg.TokenExpiry != expiry.Format(time.RFC3339) {
				t.Errorf("expected expiry stored, got %s", cfg.TokenExpiry)
			}
		})

		t.Run("keeps refresh token when response omits it", func(t *testing.T) {
			cfg := SpotifyConfig{RefreshToken: "old_refresh"}

			if err := cfg.Update(&oauth2.Token{AccessToken: "new_access"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.RefreshToken != "old_refresh" {
				t.Errorf("expected refresh token kept, got %s", cfg.RefreshToken)
			}
		})

		t.Run("rejects empty token", func(t *testing.T) {
			cfg := SpotifyConfig{}
			if err := cfg.Update(nil); err == nil {
				t.Error("expected error for nil token")
			}
			if err := cfg.Update(&oauth2.Token{}); err == nil {
				t.Error("expected error for empty access token")
			}
		})
	})

	t.Run("Token", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		cfg := SpotifyConfig{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenExpiry:  expiry.Format(time.RFC3339),
		}

		token := cfg.Token()
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token: %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Map", func(t *testing.T) {
		cfg := SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://localhost:8080/callback",
		}

		m := cfg.Map()
		if m["client_id"] != "id" || m["client_secret"] != "secret" {
			t.Errorf("unexpected credential map: %v", m)
		}
		if m["redirect_uri"] != "http://localhost:8080/callback" {
			t.Errorf("expected redirect_uri in map, got %s", m["redirect_uri"])
		}
	})
}
