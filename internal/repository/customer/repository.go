package customer

import (
	"context"

	"orgbanking/internal/domain"
)

// SortField is a customer attribute listings may be ordered by.
type SortField string

const (
	SortFirstName    SortField = "first_name"
	SortLastName     SortField = "last_name"
	SortEmail        SortField = "email"
	SortUniqueID     SortField = "unique_id"
	SortCustomerID   SortField = "customer_id"
	SortPhoneNumber  SortField = "phone_number"
	SortBusinessName SortField = "business_name"
	SortLocation     SortField = "location"
	SortGender       SortField = "gender"
	SortAge          SortField = "age"
	SortPostalCode   SortField = "postal_code"
	SortLanguage     SortField = "language"
	SortCountry      SortField = "country"
	SortCity         SortField = "city"
	SortRegion       SortField = "region"
	SortCountryCode  SortField = "country_code"
	SortDateCreated  SortField = "date_created"
	SortLastUpdated  SortField = "last_updated"
)

var sortFields = map[string]SortField{}

func init() {
	for _, f := range []SortField{
		SortFirstName, SortLastName, SortEmail, SortUniqueID, SortCustomerID, SortPhoneNumber,
		SortBusinessName, SortLocation, SortGender, SortAge, SortPostalCode, SortLanguage,
		SortCountry, SortCity, SortRegion, SortCountryCode, SortDateCreated, SortLastUpdated,
	} {
		sortFields[string(f)] = f
	}
}

// ParseSortField maps a caller-supplied name to a SortField, falling back to
// first name for anything unrecognized.
func ParseSortField(name string) SortField {
	if f, ok := sortFields[name]; ok {
		return f
	}
	return SortFirstName
}

// Repository persists and fetches customers. Reads never return soft-deleted
// customers and listings are always scoped to one organization.
type Repository interface {
	// Create inserts c together with c.OtherInfo.
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error)
	List(ctx context.Context, organizationID string, offset, limit int) ([]domain.Customer, int, error)
	// SearchByName matches text anywhere in the first or last name.
	SearchByName(ctx context.Context, organizationID, text string, offset, limit int) ([]domain.Customer, error)
	// SearchByID matches text anywhere in the external unique id or short id.
	SearchByID(ctx context.Context, organizationID, text string, offset, limit int) ([]domain.Customer, error)
	ListSorted(ctx context.Context, organizationID string, field SortField, desc bool, offset, limit int) ([]domain.Customer, error)
	// Update rewrites the mutable fields of c and appends appended to its
	// other information in one transaction.
	Update(ctx context.Context, c domain.Customer, appended []domain.OtherInformation) (*domain.Customer, error)
	SoftDelete(ctx context.Context, id string) error
	AddOtherInfo(ctx context.Context, customerID string, entries []domain.OtherInformation) ([]domain.OtherInformation, error)
	ListOtherInfo(ctx context.Context, customerID string) ([]domain.OtherInformation, error)
}
