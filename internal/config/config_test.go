package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "application:\n  hmac_secret: base-secret\n")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Application.Host != "127.0.0.1" {
		t.Errorf("Application.Host = %q, want 127.0.0.1", cfg.Application.Host)
	}
	if cfg.Storage.Client.Kind != "filesystem" {
		t.Errorf("Storage.Client.Kind = %q, want filesystem", cfg.Storage.Client.Kind)
	}
}

func TestLoadOverlayWinsOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "port: 8080\napplication:\n  hmac_secret: base-secret\n")
	writeFile(t, dir, "production.yaml", "port: 9090\n")

	cfg, err := Load(dir, "production")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 from overlay", cfg.Port)
	}
	if cfg.Application.HMACSecret != "base-secret" {
		t.Errorf("HMACSecret = %q, want value from base config", cfg.Application.HMACSecret)
	}
}

func TestLoadEnvironmentOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "port: 8080\napplication:\n  hmac_secret: base-secret\n")
	t.Setenv("APP_APPLICATION__HMAC_SECRET", "env-secret")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Application.HMACSecret != "env-secret" {
		t.Errorf("HMACSecret = %q, want env-secret", cfg.Application.HMACSecret)
	}
}

func TestLoadDefaultsConcurrencyToCPUCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "application:\n  hmac_secret: base-secret\n")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Processor.Concurrency == 0 {
		t.Error("expected Processor.Concurrency to default to a positive CPU count")
	}
}

func TestLoadRejectsMissingHMACSecret(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "port: 8080\n")

	if _, err := Load(dir, ""); err == nil {
		t.Error("expected an error when application.hmac_secret is unset")
	}
}

func TestLoadRejectsUnknownStorageClientKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "application:\n  hmac_secret: s\nstorage:\n  client:\n    kind: azure\n")

	if _, err := Load(dir, ""); err == nil {
		t.Error("expected an error for an unrecognised storage.client.kind")
	}
}
