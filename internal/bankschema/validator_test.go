package bankschema

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"orgbanking/internal/domain"
)

const testSchema = `{
  "USA": {"currency": "USD", "schema": {"account_number": "required", "aba_routing_number": "required", "iban": "optional"}},
  "others": {"currency": "", "schema": {"account_number": "required", "bank_name": "required"}}
}`

func testValidator(t *testing.T) *Validator {
	t.Helper()
	fsys := fstest.MapFS{"bank.json": {Data: []byte(testSchema)}}
	table, err := Load(fsys, "bank.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewValidator(table)
}

func TestCountryData_UnknownCountryFallsBackToOthers(t *testing.T) {
	v := testValidator(t)

	nigeria, err := v.CountryData("Nigeria", "")
	if err != nil {
		t.Fatalf("country data: %v", err)
	}
	others, err := v.CountryData("others", "")
	if err != nil {
		t.Fatalf("country data: %v", err)
	}
	if !bytes.Equal(nigeria, others) {
		t.Fatalf("expected fallback entry, got %s vs %s", nigeria, others)
	}

	schema, err := v.CountryData("Nigeria", "schema")
	if err != nil {
		t.Fatalf("country data: %v", err)
	}
	othersSchema, _ := v.CountryData("others", "schema")
	if !bytes.Equal(schema, othersSchema) {
		t.Fatalf("expected fallback schema, got %s", schema)
	}
}

func TestCountryData_ProjectsSingleField(t *testing.T) {
	v := testValidator(t)
	currency, err := v.CountryData("USA", "currency")
	if err != nil {
		t.Fatalf("country data: %v", err)
	}
	if string(currency) != `"USD"` {
		t.Fatalf("expected USD, got %s", currency)
	}
	missing, err := v.CountryData("USA", "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing field, got %s err=%v", missing, err)
	}
}

func TestIsSupportedCountry_ExactMatch(t *testing.T) {
	v := testValidator(t)
	cases := []struct {
		country string
		want    bool
	}{
		{"USA", true},
		{"usa", false},
		{" USA", false},
		{"Nigeria", false},
		{"others", true},
	}
	for _, tc := range cases {
		if got := v.IsSupportedCountry(tc.country); got != tc.want {
			t.Fatalf("IsSupportedCountry(%q) = %v, want %v", tc.country, got, tc.want)
		}
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := testValidator(t)

	err := v.Validate("USA", map[string]string{"account_number": "123"}, false)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "aba_routing_number" {
		t.Fatalf("expected aba_routing_number error, got %v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if err := v.Validate("USA", map[string]string{"account_number": "123", "aba_routing_number": "026009593"}, true); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_StrictRejectsUnsupportedCountry(t *testing.T) {
	v := testValidator(t)
	fields := map[string]string{"account_number": "1", "bank_name": "B"}

	if err := v.Validate("Kenya", fields, false); err != nil {
		t.Fatalf("lenient mode should fall back to others, got %v", err)
	}
	if err := v.Validate("Kenya", fields, true); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error in strict mode, got %v", err)
	}
	if err := v.Validate("", fields, false); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty country, got %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json":     {Data: []byte(`{`)},
		"nofallback.json": {Data: []byte(`{"USA": {}}`)},
	}
	for _, name := range []string{"missing.json", "broken.json", "nofallback.json"} {
		if _, err := Load(fsys, name); err == nil {
			t.Fatalf("expected error loading %s", name)
		}
	}
}

func TestLoadDefault_BundledTable(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	v := NewValidator(table)
	for _, c := range []string{"Nigeria", "USA", "Australia", "Ireland"} {
		if !v.IsSupportedCountry(c) {
			t.Fatalf("expected %s in bundled table", c)
		}
	}
}
