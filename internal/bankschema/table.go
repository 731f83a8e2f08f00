// Package bankschema holds the per-country bank detail schemas and the
// validator that answers questions about them.
package bankschema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FallbackCountry is the entry used for countries missing from the table.
const FallbackCountry = "others"

//go:embed data/bank.json
var bundled embed.FS

// Table maps a country to its info entries. It is never mutated after Load.
type Table map[string]map[string]json.RawMessage

// LoadDefault reads the schema file compiled into the binary.
func LoadDefault() (Table, error) {
	return Load(bundled, "data/bank.json")
}

// LoadFile reads a schema file from disk.
func LoadFile(path string) (Table, error) {
	return Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// Load parses name from fsys. A missing file, invalid JSON, or a table
// without the fallback entry is an error.
func Load(fsys fs.FS, name string) (Table, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read bank schema %s: %w", name, err)
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode bank schema %s: %w", name, err)
	}
	if _, ok := t[FallbackCountry]; !ok {
		return nil, fmt.Errorf("bank schema %s: missing %q entry", name, FallbackCountry)
	}
	return t, nil
}
