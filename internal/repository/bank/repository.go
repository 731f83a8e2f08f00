package bank

import (
	"context"

	"orgbanking/internal/domain"
)

// PreferredScope controls which accounts lose is_preferred when another
// account becomes preferred.
type PreferredScope int

const (
	// ScopeOrganization clears only the same organization's preferred account.
	ScopeOrganization PreferredScope = iota
	// ScopeGlobal clears every other preferred account in the store.
	ScopeGlobal
)

// Repository persists and fetches bank accounts. Reads never return
// soft-deleted rows.
type Repository interface {
	// Create inserts b. When b.IsPreferred, the previous preferred account is
	// cleared in the same transaction.
	Create(ctx context.Context, b domain.BankAccount) (*domain.BankAccount, error)
	GetByID(ctx context.Context, id string) (*domain.BankAccount, error)
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]domain.BankAccount, int, error)
	// Update replaces every mutable field of the stored row with b's values.
	Update(ctx context.Context, b domain.BankAccount) (*domain.BankAccount, error)
	SoftDelete(ctx context.Context, id string) error
}
