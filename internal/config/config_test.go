package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PLATFORM_COMMISSION_BPS", "1500")
	t.Setenv("RECONCILE_AFTER", "5m")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port: want=9090 got=%s", cfg.Port)
	}
	if cfg.Platform.CommissionBPS != 1500 {
		t.Fatalf("CommissionBPS: want=1500 got=%d", cfg.Platform.CommissionBPS)
	}
	if cfg.Platform.ReconcileAfter != 5*time.Minute {
		t.Fatalf("ReconcileAfter: want=5m got=%s", cfg.Platform.ReconcileAfter)
	}
	if cfg.Platform.DefaultCurrency != "USD" {
		t.Fatalf("DefaultCurrency: want=USD got=%s", cfg.Platform.DefaultCurrency)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "platform:\n  commission_bps: 750\n  min_escrow_amount: 500\n  lock_ttl: 10s\npaystack:\n  base_url: http://paystack.local\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MIN_ESCROW_AMOUNT", "1000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Platform.CommissionBPS != 750 {
		t.Fatalf("CommissionBPS: want=750 got=%d", cfg.Platform.CommissionBPS)
	}
	if cfg.Platform.MinEscrowAmount != 1000 {
		t.Fatalf("MinEscrowAmount: env must win, want=1000 got=%d", cfg.Platform.MinEscrowAmount)
	}
	if cfg.Platform.LockTTL != 10*time.Second {
		t.Fatalf("LockTTL: want=10s got=%s", cfg.Platform.LockTTL)
	}
	if cfg.Paystack.BaseURL != "http://paystack.local" {
		t.Fatalf("BaseURL: got=%s", cfg.Paystack.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing JWT secret error")
	}
	cfg.JWTSecret = "x"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.Platform.CommissionBPS = 10001
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected commission range error")
	}
}

func TestDSN(t *testing.T) {
	if _, err := (DatabaseConfig{}).DSN(); err == nil {
		t.Fatalf("expected error for empty database config")
	}
	dsn, err := DatabaseConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: "5432"}.DSN()
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	want := "host=h user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if dsn != want {
		t.Fatalf("DSN: want=%q got=%q", want, dsn)
	}
	url, _ := DatabaseConfig{URL: "postgres://x", Host: "ignored"}.DSN()
	if url != "postgres://x" {
		t.Fatalf("DATABASE_URL must win, got=%q", url)
	}
}
