package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "eventops"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Storage: StorageConfig{
			Endpoint:        "localhost:9000",
			AccessKeyID:     "minio",
			SecretAccessKey: "minio123",
			Bucket:          "incident-media",
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "eventops"
	c.Auth.JWTAudience = "eventops-api"
	c.Storage.UseSSL = true
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_GrantTTLDefaultAndCap(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Grant.TTL != 10*time.Minute {
		t.Fatalf("expected 10m default grant TTL, got %s", c.Grant.TTL)
	}

	c = validBase()
	c.Grant.TTL = 2 * time.Hour
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for grant TTL above cap")
	}
}

func TestValidate_SeedForbiddenInProduction(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "eventops"
	c.Auth.JWTAudience = "eventops-api"
	c.DB.SSLMode = "require"
	c.Storage.UseSSL = true
	c.Seed.AdminEmail = "ops@example.com"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for seed email in production")
	}
}
