package bank

import (
	"context"
	"strings"
	"time"

	"orgbanking/internal/bankschema"
	"orgbanking/internal/domain"
	"orgbanking/internal/ids"
	"orgbanking/internal/logging"
	bankrepo "orgbanking/internal/repository/bank"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Gate authorizes a user against an organization.
type Gate interface {
	Require(ctx context.Context, userID, organizationID string) error
}

// Service implements organization-scoped bank account operations.
type Service struct {
	repo      bankrepo.Repository
	gate      Gate
	validator *bankschema.Validator
	strict    bool
	logger    *zap.Logger
}

// Options tunes validation behaviour.
type Options struct {
	// StrictCountry rejects countries absent from the schema table instead of
	// validating them against the fallback entry.
	StrictCountry bool
}

func New(repo bankrepo.Repository, gate Gate, validator *bankschema.Validator, opts Options, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		validator: validator,
		strict:    opts.StrictCountry,
		logger:    logging.OrNop(logger),
	}
}

// Input is the body accepted for create and update.
type Input struct {
	OrganizationID   string      `json:"organisation_id"`
	AccountNumber    string      `json:"account_number"`
	BankName         string      `json:"bank_name"`
	RecipientName    null.String `json:"recipient_name"`
	Country          string      `json:"country"`
	SortCode         null.String `json:"sort_code"`
	SwiftCode        null.String `json:"swift_code"`
	BankAddress      string      `json:"bank_address"`
	AccountType      null.String `json:"account_type"`
	ABARoutingNumber null.String `json:"aba_routing_number"`
	IBAN             null.String `json:"iban"`
	IsPreferred      bool        `json:"is_preferred"`
	DateCreated      null.Time   `json:"date_created"`
}

func (in Input) apply(b *domain.BankAccount) {
	b.AccountNumber = strings.TrimSpace(in.AccountNumber)
	b.BankName = strings.TrimSpace(in.BankName)
	b.RecipientName = in.RecipientName
	b.Country = strings.TrimSpace(in.Country)
	b.SortCode = in.SortCode
	b.SwiftCode = in.SwiftCode
	b.BankAddress = in.BankAddress
	b.AccountType = in.AccountType
	b.ABARoutingNumber = in.ABARoutingNumber
	b.IBAN = in.IBAN
	b.IsPreferred = in.IsPreferred
}

// Create stores a new account for in.OrganizationID on behalf of userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*domain.BankAccount, error) {
	if err := s.gate.Require(ctx, userID, in.OrganizationID); err != nil {
		return nil, err
	}

	b := domain.BankAccount{
		ID:             ids.New(),
		OrganizationID: in.OrganizationID,
		CreatorID:      userID,
	}
	in.apply(&b)
	if in.DateCreated.Valid {
		b.DateCreated = in.DateCreated.Time.UTC()
	} else {
		b.DateCreated = time.Now().UTC()
	}
	if err := s.validate(b); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account created",
		zap.String("id", created.ID),
		zap.String("organization_id", created.OrganizationID),
		zap.Bool("is_preferred", created.IsPreferred),
	)
	return created, nil
}

// Get returns the account when userID belongs to its organization.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.BankAccount, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, userID, b.OrganizationID); err != nil {
		return nil, err
	}
	return b, nil
}

// List pages through an organization's live accounts. page starts at 1.
func (s *Service) List(ctx context.Context, userID, organizationID string, page, pageSize int) (domain.Page[domain.BankAccount], error) {
	if err := s.gate.Require(ctx, userID, organizationID); err != nil {
		return domain.Page[domain.BankAccount]{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	items, total, err := s.repo.ListByOrganization(ctx, organizationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.Page[domain.BankAccount]{}, err
	}
	return domain.NewPage(items, total, page, pageSize), nil
}

// Update replaces every mutable field of the account. The owning
// organization never changes.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*domain.BankAccount, error) {
	if err := s.gate.Require(ctx, userID, in.OrganizationID); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OrganizationID != in.OrganizationID {
		if err := s.gate.Require(ctx, userID, existing.OrganizationID); err != nil {
			return nil, err
		}
	}

	b := *existing
	in.apply(&b)
	if err := s.validate(b); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account updated", zap.String("id", updated.ID), zap.Bool("is_preferred", updated.IsPreferred))
	return updated, nil
}

// Delete soft-deletes the account.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, userID, b.OrganizationID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("bank account deleted", zap.String("id", id), zap.String("organization_id", b.OrganizationID))
	return nil
}

// CountrySchema returns the field rules that apply to country.
func (s *Service) CountrySchema(country string) (map[string]string, error) {
	return s.validator.Schema(country)
}

func (s *Service) IsSupportedCountry(country string) bool {
	return s.validator.IsSupportedCountry(country)
}

// validate runs after the gate, so callers outside the organization never
// learn which fields are wrong.
func (s *Service) validate(b domain.BankAccount) error {
	if strings.TrimSpace(b.OrganizationID) == "" {
		return domain.Invalid("organisation_id", "is required")
	}
	if b.AccountNumber == "" {
		return domain.Invalid("account_number", "is required")
	}
	if b.BankName == "" {
		return domain.Invalid("bank_name", "is required")
	}
	return s.validator.Validate(b.Country, b.Fields(), s.strict)
}
