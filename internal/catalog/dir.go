package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/dealdesk/internal/order"
)

var dataExtensions = []string{".json", ".yaml", ".yml"}

// DirSource reads the catalog from files in Dir: customers, products and
// addons, each as .json, .yaml or .yml. Go scripts in the same directory
// can add entries; see LoadScriptDir.
type DirSource struct {
	Dir string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (s *DirSource) Customers(ctx context.Context) ([]order.Customer, error) {
	var out []order.Customer
	return out, s.load(ctx, ResourceCustomers, &out)
}

func (s *DirSource) Products(ctx context.Context) ([]order.Product, error) {
	var out []order.Product
	return out, s.load(ctx, ResourceProducts, &out)
}

func (s *DirSource) AddOns(ctx context.Context) ([]order.AddOn, error) {
	var out []order.AddOn
	return out, s.load(ctx, ResourceAddOns, &out)
}

// load decodes the data file for r into out (a pointer to a slice) and
// appends any script entries for r.
func (s *DirSource) load(ctx context.Context, r Resource, out any) error {
	if err := ctx.Err(); err != nil {
		return fetchFailed(r, err)
	}
	dir := strings.TrimSpace(s.Dir)
	if dir == "" {
		return fetchFailed(r, errors.New("no catalog directory configured"))
	}
	found, err := decodeDataFile(dir, r, out)
	if err != nil {
		return fetchFailed(r, err)
	}
	scripts, err := LoadScriptDir(dir)
	if err != nil {
		return fetchFailed(r, err)
	}
	for _, script := range scripts {
		entries, ok := script.Entries[r]
		if !ok {
			continue
		}
		if err := appendEntries(entries, out); err != nil {
			return fetchFailed(r, fmt.Errorf("%s: %w", script.Path, err))
		}
		found = true
	}
	if !found {
		return fetchFailed(r, fmt.Errorf("no %s file in %s", r.FileName(), dir))
	}
	return nil
}

func decodeDataFile(dir string, r Resource, out any) (bool, error) {
	for _, ext := range dataExtensions {
		path := filepath.Join(dir, r.FileName()+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return true, nil
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return true, nil
	}
	return false, nil
}

// appendEntries round-trips raw script values through YAML so they decode
// with the same field names as the data files.
func appendEntries(entries []any, out any) error {
	payload, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	switch dst := out.(type) {
	case *[]order.Customer:
		return decodeAppend(payload, dst)
	case *[]order.Product:
		return decodeAppend(payload, dst)
	case *[]order.AddOn:
		return decodeAppend(payload, dst)
	default:
		return fmt.Errorf("unsupported destination %T", out)
	}
}

func decodeAppend[T any](payload []byte, dst *[]T) error {
	var extra []T
	if err := yaml.Unmarshal(payload, &extra); err != nil {
		return err
	}
	*dst = append(*dst, extra...)
	return nil
}

// Files lists the data files present in dir, sorted.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: read %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range dataExtensions {
			if ext == want {
				if _, ok := ParseResource(strings.TrimSuffix(name, filepath.Ext(name))); ok {
					files = append(files, filepath.Join(dir, name))
				}
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
