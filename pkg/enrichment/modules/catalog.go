package modules

import (
	"encoding/json"
	"fmt"
	"os"
)

// Catalog is the static data behind the location and reference modules
type Catalog struct {
	Places    []Place          `json:"places,omitempty"`
	Reference []ReferenceEntry `json:"reference,omitempty"`
}

// LoadCatalog reads a catalog JSON file. An empty path yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for i, p := range c.Places {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog place %d has no id", i)
		}
	}
	return &c, nil
}

// Options returns module options backed by the catalog
func (c *Catalog) Options() Options {
	return Options{Places: c.Places, Entries: c.Reference}
}
