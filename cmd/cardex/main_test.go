package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

const janeCard = "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Jane Doe\r\nBDAY;X=y:2000\r\nEND:VCARD\r\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newCommand(&stdout, &stderr)
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	err := cmd.Run(context.Background(), append([]string{"cardex"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestFileCommand_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "app: [unclosed\n")
	card := writeFile(t, dir, "jane.vcf", janeCard)

	for _, sub := range []string{"validate", "print", "json", "summary", "properties"} {
		t.Run(sub, func(t *testing.T) {
			_, _, err := runCLI(t, "-c", cfg, sub, card)
			if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}

func TestFileCommand_LenientDates(t *testing.T) {
	dir := t.TempDir()
	card := writeFile(t, dir, "jane.vcf", janeCard)
	missing := filepath.Join(dir, "none.yaml")

	_, _, err := runCLI(t, "-c", missing, "validate", card)
	if err == nil || !strings.HasPrefix(err.Error(), "INV_PROP: ") {
		t.Fatalf("strict validate: got %v", err)
	}

	out, logs, err := runCLI(t, "-c", missing, "validate", "--lenient-dates", card)
	if err != nil {
		t.Fatalf("lenient validate: %v", err)
	}
	if out != card+": OK\n" {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(logs, "ignoring malformed date") {
		t.Errorf("stderr = %q, want a dropped-date warning", logs)
	}
}

func TestFileCommand_SummaryFailure(t *testing.T) {
	dir := t.TempDir()
	card := writeFile(t, dir, "bad.vcf", "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:x\r\nX-FOO:y\r\nEND:VCARD\r\n")

	_, _, err := runCLI(t, "-c", filepath.Join(dir, "none.yaml"), "summary", card)
	if err == nil || !strings.Contains(err.Error(), "Not a valid card") {
		t.Fatalf("got %v", err)
	}
}
