package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"orgbanking/internal/domain"
	customersvc "orgbanking/internal/service/customer"
)

type stubCustomerWriter struct {
	items  []customersvc.Input
	userID string
	orgID  string
	err    error
}

func (s *stubCustomerWriter) Create(_ context.Context, userID, organizationID string, in customersvc.Input) (*domain.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.userID, s.orgID = userID, organizationID
	s.items = append(s.items, in)
	return &domain.Customer{FirstName: in.FirstName}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `first_name,last_name,email,unique_id,age,auto_reminder,country_code,other_info.key,other_info.value
Jane,Doe,jane@example.com,EXT-1,34,true,NG,tier,gold
,,,,,,,source,referral
John,Smith,john@example.com,EXT-2,,,GH,,`

	w := &stubCustomerWriter{}
	imp := NewCSVImporter(strings.NewReader(csvData), w, "user-1", "org-1")

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(w.items) != 2 {
		t.Fatalf("expected 2 customers imported, got count=%d saved=%d", count, len(w.items))
	}
	if w.userID != "user-1" || w.orgID != "org-1" {
		t.Fatalf("wrong principal or organization: %q %q", w.userID, w.orgID)
	}

	jane := w.items[0]
	if jane.FirstName != "Jane" || jane.Age != 34 || !jane.AutoReminder || jane.CountryCode != "NG" {
		t.Fatalf("unexpected customer data: %+v", jane)
	}
	if len(jane.OtherInfo) != 2 || jane.OtherInfo[1].Key != "source" {
		t.Fatalf("expected continuation row attached to Jane, got %+v", jane.OtherInfo)
	}
	if len(w.items[1].OtherInfo) != 0 {
		t.Fatalf("John should have no other info, got %+v", w.items[1].OtherInfo)
	}
}

func TestCSVImporter_Errors(t *testing.T) {
	cases := map[string]string{
		"bad age":         "first_name,age\nJane,old\n",
		"bad bool":        "first_name,auto_reminder\nJane,maybe\n",
		"orphan info row": "first_name,other_info.key\n,tier\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(data), &stubCustomerWriter{}, "u", "o")
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCSVImporter_WriterFailureStops(t *testing.T) {
	w := &stubCustomerWriter{err: domain.ErrForbidden}
	imp := NewCSVImporter(strings.NewReader("first_name\nJane\nJohn\n"), w, "u", "o")
	count, err := imp.Run(context.Background())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing imported, got %d", count)
	}
}
