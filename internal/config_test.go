package internal

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/cardex/internal/vcard"
	pkgconfig "github.com/starford/cardex/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.SQLite.Path != "./cardex.db" {
		t.Errorf("sqlite path = %q", cfg.SQLite.Path)
	}
	if got := cfg.Vault.MaxUploadBytes(); got != 1<<20 {
		t.Errorf("max upload = %d, want %d", got, 1<<20)
	}
}

func TestVaultConfig_UploadLimit(t *testing.T) {
	for _, mb := range []int{0, -1, 65} {
		cfg := VaultConfig{Path: "./vault", MaxUploadMB: mb}
		if err := cfg.Validate(); err == nil {
			t.Errorf("max_upload_mb=%d should fail validation", mb)
		}
	}
	cfg := VaultConfig{Path: "./vault", MaxUploadMB: 8}
	if err := cfg.Validate(); err != nil {
		t.Errorf("max_upload_mb=8: %v", err)
	}
}

func TestParserConfig_ParseOptions(t *testing.T) {
	strict := ParserConfig{}
	if n := len(strict.ParseOptions(nil)); n != 0 {
		t.Errorf("strict options = %d, want 0", n)
	}
	lenient := ParserConfig{LenientDates: true}
	if n := len(lenient.ParseOptions(nil)); n != 1 {
		t.Errorf("lenient options = %d, want 1", n)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	opts := lenient.ParseOptions(logger)
	if len(opts) != 2 {
		t.Fatalf("lenient options with logger = %d, want 2", len(opts))
	}
	card := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:x\r\nBDAY;VALUE=date:2000\r\nEND:VCARD\r\n"
	if _, err := vcard.Parse(strings.NewReader(card), opts...); err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if !strings.Contains(buf.String(), "ignoring malformed date") {
		t.Errorf("expected a dropped-date warning, got %q", buf.String())
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CARDEX_HTTP_PORT", "9191")
	t.Setenv("CARDEX_LOG_LEVEL", "debug")
	t.Setenv("CARDEX_AUTH_MODE", "token")
	t.Setenv("CARDEX_AUTH_TOKEN", "s3cret")
	t.Setenv("CARDEX_LENIENT_DATES", "true")

	cfg := NewDefaultConfig()
	loaded, err := pkgconfig.LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"), cfg)
	if err != nil || loaded {
		t.Fatalf("loaded=%v err=%v", loaded, err)
	}
	if cfg.App.HTTP.Port != 9191 || cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("app = %+v", cfg.App)
	}
	if !cfg.Auth.AuthEnabled() || cfg.Auth.Token != "s3cret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if !cfg.Parser.LenientDates {
		t.Error("lenient dates not applied")
	}
}
