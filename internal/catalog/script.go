package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const scriptFuncName = "CatalogEntries"

// Script is a Go catalog extension evaluated from source.
type Script struct {
	Path    string
	Entries map[Resource][]any
}

// LoadScriptDir evaluates every .go file in dir and collects the entries
// each declares through CatalogEntries() (map[string]any, error). Keys are
// resource names ("customers", "products", "addOns" or "addons"); values
// are lists of maps shaped like the data files.
func LoadScriptDir(dir string) ([]Script, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("script: read %s: %w", trimmed, err)
	}
	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		script, err := loadScriptFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Path < scripts[j].Path })
	return scripts, nil
}

func loadScriptFile(path string) (Script, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("script: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return Script{}, fmt.Errorf("script: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return Script{}, fmt.Errorf("script: load stdlib: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return Script{}, fmt.Errorf("script: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(scriptFuncName)
	if err != nil {
		return Script{}, fmt.Errorf("script: %s must define %s() (map[string]any, error): %w", path, scriptFuncName, err)
	}
	raw, err := invokeScriptFunc(fnValue)
	if err != nil {
		return Script{}, fmt.Errorf("script: %s: %w", path, err)
	}
	script := Script{Path: path, Entries: map[Resource][]any{}}
	for key, value := range raw {
		r, ok := ParseResource(key)
		if !ok {
			return Script{}, fmt.Errorf("script: %s: unknown catalog key %q", path, key)
		}
		list, err := toList(value)
		if err != nil {
			return Script{}, fmt.Errorf("script: %s: %s: %w", path, key, err)
		}
		script.Entries[r] = append(script.Entries[r], list...)
	}
	return script, nil
}

func invokeScriptFunc(value reflect.Value) (map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", scriptFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", scriptFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return (map[string]any[, error])", scriptFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", scriptFuncName)
	}
	out, ok := results[0].Interface().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return map[string]any", scriptFuncName)
	}
	return out, nil
}

// toList flattens whatever slice type the script built into []any.
func toList(value any) ([]any, error) {
	if list, ok := value.([]any); ok {
		return list, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
