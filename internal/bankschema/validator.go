package bankschema

import (
	"encoding/json"
	"fmt"
	"sort"

	"orgbanking/internal/domain"
)

const (
	FieldRequired = "required"
	FieldOptional = "optional"
)

// Validator answers country support and schema questions over a Table.
type Validator struct {
	table Table
}

func NewValidator(t Table) *Validator {
	return &Validator{table: t}
}

// IsSupportedCountry reports whether country is an exact key of the table.
// Matching is case-sensitive.
func (v *Validator) IsSupportedCountry(country string) bool {
	_, ok := v.table[country]
	return ok
}

// CountryData returns the entry for country, or the fallback entry when the
// country is unknown. With a non-empty info only that field is returned; a
// field absent from the entry yields nil.
func (v *Validator) CountryData(country, info string) (json.RawMessage, error) {
	entry, ok := v.table[country]
	if !ok {
		entry = v.table[FallbackCountry]
	}
	if info != "" {
		return entry[info], nil
	}
	out, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode country %q: %w", country, err)
	}
	return out, nil
}

// Schema returns the field rules for country.
func (v *Validator) Schema(country string) (map[string]string, error) {
	raw, err := v.CountryData(country, "schema")
	if err != nil {
		return nil, err
	}
	schema := map[string]string{}
	if len(raw) == 0 {
		return schema, nil
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode schema for %q: %w", country, err)
	}
	return schema, nil
}

// Validate checks fields against the schema resolved for country. In strict
// mode an unsupported country is rejected instead of falling back.
func (v *Validator) Validate(country string, fields map[string]string, strict bool) error {
	if country == "" {
		return domain.Invalid("country", "is required")
	}
	if strict && (country == FallbackCountry || !v.IsSupportedCountry(country)) {
		return domain.Invalid("country", fmt.Sprintf("%q is not a supported country", country))
	}
	schema, err := v.Schema(country)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if schema[name] == FieldRequired && fields[name] == "" {
			return domain.Invalid(name, fmt.Sprintf("is required for %s", country))
		}
	}
	return nil
}
