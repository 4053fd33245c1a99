package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name" env:"CARDEX_TEST_OVERRIDE_NAME"`
	Limit int    `yaml:"limit"`
}

func (s *sample) Validate() error {
	if s.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CARDEX_TEST_NAME", "vault-a")
	p := writeFile(t, "name: ${CARDEX_TEST_NAME}\nlimit: 3\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "vault-a" || s.Limit != 3 {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "limit: -1\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeFile(t, "name: [unterminated\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	s := sample{Name: "default", Limit: 1}
	loaded, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	if err != nil || loaded {
		t.Fatalf("missing file: loaded=%v err=%v", loaded, err)
	}
	if s.Name != "default" {
		t.Errorf("defaults overwritten: %+v", s)
	}

	p := writeFile(t, "name: from-file\n")
	loaded, err = LoadOrDefault(p, &s)
	if err != nil || !loaded {
		t.Fatalf("existing file: loaded=%v err=%v", loaded, err)
	}
	if s.Name != "from-file" || s.Limit != 1 {
		t.Errorf("merged = %+v", s)
	}

	bad := sample{Limit: -5}
	if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), &bad); err == nil {
		t.Error("defaults should still be validated")
	}
}

func TestLoadWithDefaults_FallsBack(t *testing.T) {
	fallback := writeFile(t, "name: fallback\n")
	var s sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "none.yaml"), fallback, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "fallback" {
		t.Errorf("name = %q", s.Name)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "none.yaml"), "", &s); err == nil {
		t.Error("expected not-found error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CARDEX_TEST_OVERRIDE_NAME", "from-env")
	p := writeFile(t, "name: from-file\nlimit: 2\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "from-env" || s.Limit != 2 {
		t.Errorf("loaded = %+v", s)
	}
}
