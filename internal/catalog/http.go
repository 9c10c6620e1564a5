package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/dealdesk/internal/order"
)

// DefaultHTTPTimeout bounds a single catalog request.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPSource fetches {Base}/customers.json, {Base}/products.json and
// {Base}/addons.json.
type HTTPSource struct {
	Base string
	HTTP *http.Client
}

// NewHTTPSource returns a source for base, e.g. "http://localhost:8787/data".
func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{
		Base: strings.TrimRight(strings.TrimSpace(base), "/"),
		HTTP: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

func (c *HTTPSource) Customers(ctx context.Context) ([]order.Customer, error) {
	var out []order.Customer
	return out, c.getJSON(ctx, ResourceCustomers, &out)
}

func (c *HTTPSource) Products(ctx context.Context) ([]order.Product, error) {
	var out []order.Product
	return out, c.getJSON(ctx, ResourceProducts, &out)
}

func (c *HTTPSource) AddOns(ctx context.Context) ([]order.AddOn, error) {
	var out []order.AddOn
	return out, c.getJSON(ctx, ResourceAddOns, &out)
}

func (c *HTTPSource) getJSON(ctx context.Context, r Resource, out any) error {
	u := c.Base + "/" + r.FileName() + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fetchFailed(r, err)
	}
	req.Header.Set("Accept", "application/json")
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fetchFailed(r, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fetchFailed(r, fmt.Errorf("get %s: %s", u, resp.Status))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fetchFailed(r, fmt.Errorf("decode %s: %w", u, err))
	}
	return nil
}
