package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/dealdesk/internal/order"
)

const customersJSON = `[
  {"id": "1", "customer": "Acme Corp", "address1": "1 Main St", "city": "Albany", "state": "NY", "zipCode": "12207"}
]`

const productsYAML = `- id: standard
  name: Standard
  plans:
    - id: basic
      name: Basic
      basePrice: 20
    - id: pro
      name: Pro
      basePrice: 50
`

const addOnsJSON = `[{"id": "support", "name": "Support", "unitPrice": 10, "quantity": 2}]`

const catalogScript = `package main

func CatalogEntries() (map[string]any, error) {
	return map[string]any{
		"addons": []map[string]any{
			{"id": "training", "name": "Training", "unitPrice": 5.5},
		},
	}, nil
}`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirSourceReadsJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.json", customersJSON)
	writeFile(t, dir, "products.yaml", productsYAML)
	writeFile(t, dir, "addons.json", addOnsJSON)

	src := NewDirSource(dir)
	ctx := context.Background()

	customers, err := src.Customers(ctx)
	if err != nil {
		t.Fatalf("customers: %v", err)
	}
	if len(customers) != 1 || customers[0].Customer != "Acme Corp" || customers[0].ZipCode != "12207" {
		t.Fatalf("unexpected customers: %+v", customers)
	}

	products, err := src.Products(ctx)
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) != 1 || len(products[0].Plans) != 2 || products[0].Plans[1].BasePrice != 50 {
		t.Fatalf("unexpected products: %+v", products)
	}

	addOns, err := src.AddOns(ctx)
	if err != nil {
		t.Fatalf("add-ons: %v", err)
	}
	if len(addOns) != 1 || addOns[0].Quantity == nil || *addOns[0].Quantity != 2 {
		t.Fatalf("unexpected add-ons: %+v", addOns)
	}

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 data files, got %v", files)
	}
}

func TestDirSourceMergesScripts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "addons.json", addOnsJSON)
	writeFile(t, dir, "extra.go", catalogScript)

	addOns, err := NewDirSource(dir).AddOns(context.Background())
	if err != nil {
		t.Fatalf("add-ons: %v", err)
	}
	if len(addOns) != 2 {
		t.Fatalf("expected file and script add-ons, got %+v", addOns)
	}
	if addOns[1].ID != "training" || addOns[1].UnitPrice != 5.5 || addOns[1].Quantity != nil {
		t.Fatalf("unexpected script add-on: %+v", addOns[1])
	}
}

func TestLoadScriptDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.go", "package main\n")
	if _, err := LoadScriptDir(dir); err == nil {
		t.Fatalf("expected error for missing CatalogEntries function")
	}
}

func TestDirSourceMissingFile(t *testing.T) {
	_, err := NewDirSource(t.TempDir()).AddOns(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Resource != ResourceAddOns {
		t.Fatalf("unexpected resource: %s", fe.Resource)
	}
	if got := FormatError(err); got != "Failed to fetch add-ons" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestFormatError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("boom"), "boom"},
		{errors.New("  "), "Unknown error"},
		{context.DeadlineExceeded, "Request timed out"},
		{&FetchError{Resource: ResourceProducts, Message: "Failed to fetch products", Cause: errors.New("503")}, "Failed to fetch products"},
	}
	for _, tc := range cases {
		if got := FormatError(tc.err); got != tc.want {
			t.Fatalf("FormatError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/customers.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(customersJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL + "/data/")
	customers, err := src.Customers(context.Background())
	if err != nil {
		t.Fatalf("customers: %v", err)
	}
	if len(customers) != 1 || customers[0].State != "NY" {
		t.Fatalf("unexpected customers: %+v", customers)
	}

	_, err = src.Products(context.Background())
	if err == nil {
		t.Fatalf("expected 404 to fail")
	}
	if FormatError(err) != "Failed to fetch products" {
		t.Fatalf("unexpected message: %q", FormatError(err))
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

type countingProvider struct {
	calls map[Resource]int
	fail  bool
}

func (p *countingProvider) Customers(context.Context) ([]order.Customer, error) {
	p.calls[ResourceCustomers]++
	if p.fail {
		return nil, fetchFailed(ResourceCustomers, errors.New("down"))
	}
	return []order.Customer{{Customer: "Acme Corp"}}, nil
}

func (p *countingProvider) Products(context.Context) ([]order.Product, error) {
	p.calls[ResourceProducts]++
	return []order.Product{{ID: "standard"}}, nil
}

func (p *countingProvider) AddOns(context.Context) ([]order.AddOn, error) {
	p.calls[ResourceAddOns]++
	return nil, nil
}

func TestCacheReusesUntilStale(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	src := &countingProvider{calls: map[Resource]int{}}
	cache := NewCache(src, WithCacheClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.Products(ctx); err != nil {
			t.Fatalf("products: %v", err)
		}
	}
	if src.calls[ResourceProducts] != 1 {
		t.Fatalf("expected a single fetch, got %d", src.calls[ResourceProducts])
	}

	now = now.Add(4 * time.Minute)
	_, _ = cache.Products(ctx)
	if src.calls[ResourceProducts] != 1 {
		t.Fatalf("expected cached result inside the window")
	}

	now = now.Add(time.Minute)
	_, _ = cache.Products(ctx)
	if src.calls[ResourceProducts] != 2 {
		t.Fatalf("expected refetch after 5 minutes, got %d", src.calls[ResourceProducts])
	}

	cache.Invalidate()
	_, _ = cache.Products(ctx)
	if src.calls[ResourceProducts] != 3 {
		t.Fatalf("expected refetch after invalidate")
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	src := &countingProvider{calls: map[Resource]int{}, fail: true}
	cache := NewCache(src)
	if _, err := cache.Customers(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	src.fail = false
	customers, err := cache.Customers(context.Background())
	if err != nil || len(customers) != 1 {
		t.Fatalf("expected recovery, got %v %v", customers, err)
	}
	if src.calls[ResourceCustomers] != 2 {
		t.Fatalf("expected two fetches, got %d", src.calls[ResourceCustomers])
	}
}
