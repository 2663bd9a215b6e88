// Package aliasconf loads country-name alias overrides from a JSON file.
// The file is a flat object mapping variant spellings to preferred forms;
// entries layer over the built-in defaults.
package aliasconf

import (
	"fmt"
	"log"
	"os"

	"github.com/tidwall/gjson"

	"covidetl/domain/normalize"
	"covidetl/internal/errors"
)

// Load reads the alias file at path and merges it over the default alias
// table. An empty path returns the defaults unchanged.
func Load(path string) (normalize.AliasTable, error) {
	defaults := normalize.DefaultAliases()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.LoadFailed(path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.LoadFailed(path, fmt.Errorf("not valid JSON"))
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, errors.LoadFailed(path, fmt.Errorf("alias file must be a JSON object of variant -> preferred name"))
	}

	overrides := make(normalize.AliasTable)
	var badEntry error
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			badEntry = fmt.Errorf("alias %q must map to a string, got %s", key.String(), value.Type)
			return false
		}
		overrides[key.String()] = value.String()
		return true
	})
	if badEntry != nil {
		return nil, errors.LoadFailed(path, badEntry)
	}

	log.Printf("[AliasConf] %d alias overrides loaded from %s", len(overrides), path)
	return defaults.Merge(overrides), nil
}
