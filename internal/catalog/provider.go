package catalog

import (
	"github.com/kingrea/dealdesk/internal/config"
)

// FromConfig builds the provider the project is configured for, wrapped
// in a Cache that honours catalog.stale_after.
func FromConfig(cfg *config.Config) *Cache {
	var source Provider
	switch cfg.CatalogSource() {
	case config.SourceHTTP:
		source = NewHTTPSource(cfg.CatalogURL())
	default:
		source = NewDirSource(cfg.CatalogDir())
	}
	return NewCache(source, WithStaleAfter(cfg.StaleAfter()))
}
