package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Comments.MaxDepth != 2 {
		t.Errorf("Comments.MaxDepth = %d, want 2", cfg.Comments.MaxDepth)
	}
	if cfg.AuditLog.Path != "logs/app.log" {
		t.Errorf("AuditLog.Path = %s, want logs/app.log", cfg.AuditLog.Path)
	}
	if cfg.Uploads.Driver != "local" {
		t.Errorf("Uploads.Driver = %s, want local", cfg.Uploads.Driver)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9000"
  read_timeout: 10s
database:
  name: from_file
comments:
  max_depth: 4
auth:
  jwt_secret: file-secret
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9100" {
		t.Errorf("env should override file: Port = %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Name != "from_file" {
		t.Errorf("Database.Name = %s, want from_file", cfg.Database.Name)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("unset file keys should keep defaults, Host = %s", cfg.Database.Host)
	}
	if cfg.Comments.MaxDepth != 4 {
		t.Errorf("Comments.MaxDepth = %d, want 4", cfg.Comments.MaxDepth)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Errorf("JWTSecret = %s, want file-secret", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("JWT_SECRET", "x")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"unknown driver", func(c *Config) { c.Uploads.Driver = "ftp" }, true},
		{"s3 without bucket", func(c *Config) { c.Uploads.Driver = "s3" }, true},
		{"s3 with bucket", func(c *Config) { c.Uploads.Driver = "s3"; c.Uploads.S3.Bucket = "media" }, false},
		{"negative depth", func(c *Config) { c.Comments.MaxDepth = -1 }, true},
		{"zero depth", func(c *Config) { c.Comments.MaxDepth = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Auth.JWTSecret = "secret"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("TEST_LIST", " https://a.example , ,https://b.example")
	got := getListEnv("TEST_LIST", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("getListEnv() = %v", got)
	}
	if got := getListEnv("TEST_LIST_UNSET", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Errorf("getListEnv() default = %v", got)
	}
}
