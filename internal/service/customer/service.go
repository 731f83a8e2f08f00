package customer

import (
	"context"
	"fmt"
	"time"

	"orgbanking/internal/domain"
	"orgbanking/internal/ids"
	"orgbanking/internal/logging"
	custrepo "orgbanking/internal/repository/customer"

	"go.uber.org/zap"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Gate authorizes a user against an organization.
type Gate interface {
	Require(ctx context.Context, userID, organizationID string) error
}

// ShortIDs issues human-facing customer ids.
type ShortIDs interface {
	Next() string
}

// Service implements organization-scoped customer operations.
type Service struct {
	repo     custrepo.Repository
	gate     Gate
	shortIDs ShortIDs
	logger   *zap.Logger
	now      func() time.Time
}

func New(repo custrepo.Repository, gate Gate, shortIDs ShortIDs, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		shortIDs: shortIDs,
		logger:   logging.OrNop(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OtherInfoInput is one free-form attribute in a request body.
type OtherInfoInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Input carries customer attributes for create and update. On update only
// non-empty strings, a non-zero age and a true auto_reminder are applied.
type Input struct {
	Email        string           `json:"email"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	UniqueID     string           `json:"unique_id"`
	PhoneNumber  string           `json:"phone_number"`
	BusinessName string           `json:"business_name"`
	Location     string           `json:"location"`
	Gender       string           `json:"gender"`
	Age          int              `json:"age"`
	PostalCode   string           `json:"postal_code"`
	Language     string           `json:"language"`
	Country      string           `json:"country"`
	City         string           `json:"city"`
	Region       string           `json:"region"`
	CountryCode  string           `json:"country_code"`
	AutoReminder bool             `json:"auto_reminder"`
	OtherInfo    []OtherInfoInput `json:"other_info"`
}

// Create stores a new customer in organizationID.
func (s *Service) Create(ctx context.Context, userID, organizationID string, in Input) (*domain.Customer, error) {
	if err := s.gate.Require(ctx, userID, organizationID); err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	c := domain.Customer{
		ID:             ids.New(),
		CustomerID:     s.shortIDs.Next(),
		OrganizationID: organizationID,
		DateCreated:    now,
		LastUpdated:    now,
		OtherInfo:      toOtherInfo(in.OtherInfo),
	}
	merge(&c, in)
	// Create stores auto_reminder as sent, false included.
	c.AutoReminder = in.AutoReminder

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer created",
		zap.String("customer_id", created.CustomerID),
		zap.String("organization_id", organizationID),
		zap.Int("other_info", len(created.OtherInfo)),
	)
	return created, nil
}

// GetByID returns the customer with its other information attached.
func (s *Service) GetByID(ctx context.Context, userID, customerID string) (*domain.Customer, error) {
	c, err := s.authorized(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	info, err := s.repo.ListOtherInfo(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load other info: %w", err)
	}
	c.OtherInfo = info
	return c, nil
}

// Update applies the present fields of in and appends in.OtherInfo. Both
// land together or not at all.
func (s *Service) Update(ctx context.Context, userID, customerID string, in Input) (*domain.Customer, error) {
	c, err := s.authorized(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	merge(c, in)
	c.LastUpdated = s.now()
	updated, err := s.repo.Update(ctx, *c, toOtherInfo(in.OtherInfo))
	if err != nil {
		return nil, err
	}
	info, err := s.repo.ListOtherInfo(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("load other info: %w", err)
	}
	updated.OtherInfo = info
	return updated, nil
}

// Delete soft-deletes the customer.
func (s *Service) Delete(ctx context.Context, userID, customerID string) error {
	c, err := s.authorized(ctx, userID, customerID)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, c.ID); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", customerID))
	return nil
}

// AddExtraInfo appends one record per entry. Repeated keys are kept.
func (s *Service) AddExtraInfo(ctx context.Context, userID, customerID string, entries []OtherInfoInput) ([]domain.OtherInformation, error) {
	c, err := s.authorized(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	if err := validateOtherInfo(entries); err != nil {
		return nil, err
	}
	return s.repo.AddOtherInfo(ctx, c.ID, toOtherInfo(entries))
}

func (s *Service) GetExtraInfo(ctx context.Context, userID, customerID string) ([]domain.OtherInformation, error) {
	c, err := s.authorized(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOtherInfo(ctx, c.ID)
}

// List returns the organization's customers, newest first.
func (s *Service) List(ctx context.Context, userID, organizationID string, offset, limit int) (domain.Page[domain.Customer], error) {
	if err := s.gate.Require(ctx, userID, organizationID); err != nil {
		return domain.Page[domain.Customer]{}, err
	}
	offset, limit = window(offset, limit)
	items, total, err := s.repo.List(ctx, organizationID, offset, limit)
	if err != nil {
		return domain.Page[domain.Customer]{}, err
	}
	return domain.NewPage(items, total, offset/limit+1, limit), nil
}

// Search returns name matches followed by id matches. Each half is paginated
// on its own, so a customer matching both appears twice.
func (s *Service) Search(ctx context.Context, userID, organizationID, text string, offset, limit int) ([]domain.Customer, error) {
	if err := s.gate.Require(ctx, userID, organizationID); err != nil {
		return nil, err
	}
	offset, limit = window(offset, limit)
	byName, err := s.repo.SearchByName(ctx, organizationID, text, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search by name: %w", err)
	}
	byID, err := s.repo.SearchByID(ctx, organizationID, text, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search by id: %w", err)
	}
	return append(byName, byID...), nil
}

// SortBy orders the organization's customers by field. Unknown fields sort by
// first name; direction is ascending unless dir is "desc".
func (s *Service) SortBy(ctx context.Context, userID, organizationID, field, dir string, offset, limit int) ([]domain.Customer, error) {
	if err := s.gate.Require(ctx, userID, organizationID); err != nil {
		return nil, err
	}
	offset, limit = window(offset, limit)
	desc := dir == "desc"
	return s.repo.ListSorted(ctx, organizationID, custrepo.ParseSortField(field), desc, offset, limit)
}

func (s *Service) authorized(ctx context.Context, userID, customerID string) (*domain.Customer, error) {
	c, err := s.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, userID, c.OrganizationID); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(in Input) error {
	if in.Age < 0 {
		return domain.Invalid("age", "must not be negative")
	}
	return validateOtherInfo(in.OtherInfo)
}

func validateOtherInfo(entries []OtherInfoInput) error {
	for i, e := range entries {
		if e.Key == "" {
			return domain.Invalid(fmt.Sprintf("other_info[%d].key", i), "is required")
		}
	}
	return nil
}

func merge(c *domain.Customer, in Input) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Email, in.Email)
	set(&c.FirstName, in.FirstName)
	set(&c.LastName, in.LastName)
	set(&c.UniqueID, in.UniqueID)
	set(&c.PhoneNumber, in.PhoneNumber)
	set(&c.BusinessName, in.BusinessName)
	set(&c.Location, in.Location)
	set(&c.Gender, in.Gender)
	set(&c.PostalCode, in.PostalCode)
	set(&c.Language, in.Language)
	set(&c.Country, in.Country)
	set(&c.City, in.City)
	set(&c.Region, in.Region)
	set(&c.CountryCode, in.CountryCode)
	if in.Age != 0 {
		c.Age = in.Age
	}
	if in.AutoReminder {
		c.AutoReminder = true
	}
}

func toOtherInfo(entries []OtherInfoInput) []domain.OtherInformation {
	out := make([]domain.OtherInformation, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.OtherInformation{Key: e.Key, Value: e.Value})
	}
	return out
}

func window(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}
