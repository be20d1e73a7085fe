// Command validate checks a catalog file and the enrichment module graph
// built from it.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/enrichment/modules"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalog.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &CatalogValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Catalog file is valid!")
}

type CatalogValidator struct {
	errors []string
}

func (v *CatalogValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("catalog file must have .json extension: %s", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var c modules.Catalog
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&c); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateCatalog(&c)
	v.validateModuleGraph(&c)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *CatalogValidator) validateCatalog(c *modules.Catalog) {
	seen := make(map[string]bool)
	for i, p := range c.Places {
		if p.ID == "" {
			v.addError(fmt.Sprintf("place %d has no id", i))
		} else {
			v.validateIDFormat("place ID", p.ID)
			if seen[p.ID] {
				v.addError(fmt.Sprintf("place ID '%s' is duplicated", p.ID))
			}
			seen[p.ID] = true
		}
		if strings.TrimSpace(p.Name) == "" {
			v.addError(fmt.Sprintf("place '%s' has no name", p.ID))
		}
		if p.Position.Lat < -90 || p.Position.Lat > 90 || p.Position.Lon < -180 || p.Position.Lon > 180 {
			v.addError(fmt.Sprintf("place '%s' has out of range position %v", p.ID, p.Position))
		}
	}

	for i, e := range c.Reference {
		if strings.TrimSpace(e.Topic) == "" {
			v.addError(fmt.Sprintf("reference entry %d has no topic", i))
		}
		if strings.TrimSpace(e.Text) == "" {
			v.addError(fmt.Sprintf("reference entry '%s' has no text", e.Topic))
		}
		for _, kw := range e.Keywords {
			if strings.TrimSpace(kw) == "" {
				v.addError(fmt.Sprintf("reference entry '%s' has an empty keyword", e.Topic))
			}
		}
	}
}

// validateModuleGraph resolves every stock module so integrity problems show
// up before a worker starts
func (v *CatalogValidator) validateModuleGraph(c *modules.Catalog) {
	cm := enrichment.NewChainManager(nil)
	modules.Register(cm, c.Options())
	for _, id := range cm.ModuleIDs() {
		if _, err := cm.ResolveOrder(id); err != nil {
			v.addError(fmt.Sprintf("module '%s' does not resolve: %v", id, err))
		}
	}
}

func (v *CatalogValidator) validateIDFormat(fieldName, id string) {
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase with dashes or underscores", fieldName, id))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
