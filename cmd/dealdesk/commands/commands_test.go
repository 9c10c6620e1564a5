package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/dealdesk/internal/config"
)

func writeCatalog(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"products.json": `[{"id": "standard", "name": "Standard", "plans": [{"id": "basic", "name": "Basic", "basePrice": 20}, {"id": "pro", "name": "Pro", "basePrice": 50}]}]`,
		"addons.yaml":   "- id: support\n  name: Support\n  unitPrice: 10\n  quantity: 2\n",
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	projectDir = ""
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuoteCommandPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, config.DefaultCatalogDir))

	out, err := run(t, "--dir", dir, "quote",
		"--customer", "Acme Corp",
		"--product", "standard", "--plan", "pro",
		"--start", "2024-01-01", "--addon", "support")
	if err != nil {
		t.Fatalf("quote: %v\n%s", err, out)
	}
	for _, want := range []string{"Acme Corp", "Pro ($50.00)", "$10.00 x 2 = $20.00", "01/01/2024 - 01/01/2025", "$70.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("quote output missing %q:\n%s", want, out)
		}
	}
}

func TestQuoteCommandReportsCatalogFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--dir", dir, "quote", "--product", "standard", "--plan", "pro")
	if err == nil || err.Error() != "Failed to fetch products" {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestCatalogUsePersistsSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "--dir", dir, "catalog", "use", "http://127.0.0.1:9000/data"); err != nil {
		t.Fatalf("catalog use: %v", err)
	}
	out, err := run(t, "--dir", dir, "catalog", "show")
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	if !strings.Contains(out, "url:    http://127.0.0.1:9000/data") {
		t.Fatalf("unexpected catalog show output:\n%s", out)
	}
}
