package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DemoOrganizationID is the organization Apply creates.
const DemoOrganizationID = "demo-org"

type memberSeed struct {
	UserID string
	Role   string
}

type bankSeed struct {
	ID            string
	AccountNumber string
	BankName      string
	RecipientName string
	Country       string
	BankAddress   string
	SortCode      string
	IsPreferred   bool
}

type customerSeed struct {
	ID         string
	CustomerID string
	FirstName  string
	LastName   string
	Email      string
	Country    string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureOrganization(ctx, pool, DemoOrganizationID, "Demo Organization", "demo-owner"); err != nil {
		return fmt.Errorf("ensure organization: %w", err)
	}

	members := []memberSeed{
		{UserID: "demo-staff", Role: "member"},
		{UserID: "demo-accountant", Role: "accountant"},
	}
	for _, m := range members {
		if err := upsertMember(ctx, pool, DemoOrganizationID, m); err != nil {
			return fmt.Errorf("upsert member %s: %w", m.UserID, err)
		}
	}

	banks := []bankSeed{
		{
			ID:            "5e8b2f0c9d1a4b7e8f6a3c2d1e0f9a8b",
			AccountNumber: "0123456789",
			BankName:      "First Bank",
			RecipientName: "Demo Organization Ltd",
			Country:       "Nigeria",
			BankAddress:   "35 Marina, Lagos",
			SortCode:      "011151003",
			IsPreferred:   true,
		},
		{
			ID:            "0a1b2c3d4e5f60718293a4b5c6d7e8f9",
			AccountNumber: "98765432",
			BankName:      "Bank of Ireland",
			RecipientName: "Demo Organization Ltd",
			Country:       "Ireland",
			BankAddress:   "40 Mespil Road, Dublin",
		},
	}
	for _, b := range banks {
		if err := upsertBank(ctx, pool, DemoOrganizationID, b); err != nil {
			return fmt.Errorf("upsert bank %s: %w", b.ID, err)
		}
	}

	customers := []customerSeed{
		{ID: "c0ffee00000000000000000000000001", CustomerID: "demoJane", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Country: "Nigeria"},
		{ID: "c0ffee00000000000000000000000002", CustomerID: "demoJohn", FirstName: "John", LastName: "Smith", Email: "john@example.com", Country: "Ireland"},
	}
	for i, c := range customers {
		created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
		if err := upsertCustomer(ctx, pool, DemoOrganizationID, c, created); err != nil {
			return fmt.Errorf("upsert customer %s: %w", c.CustomerID, err)
		}
	}

	return nil
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, id, name, creatorID string) error {
	const q = `
INSERT INTO organizations (id, name, creator_id)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, creator_id = EXCLUDED.creator_id, is_deleted = FALSE
`
	_, err := pool.Exec(ctx, q, id, name, creatorID)
	return err
}

func upsertMember(ctx context.Context, pool *pgxpool.Pool, orgID string, m memberSeed) error {
	const q = `
INSERT INTO organization_members (organization_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role, is_deleted = FALSE
`
	_, err := pool.Exec(ctx, q, orgID, m.UserID, m.Role)
	return err
}

func upsertBank(ctx context.Context, pool *pgxpool.Pool, orgID string, b bankSeed) error {
	if b.IsPreferred {
		const clearPreferred = `UPDATE bank_accounts SET is_preferred = FALSE WHERE organization_id = $1 AND id <> $2 AND is_preferred`
		if _, err := pool.Exec(ctx, clearPreferred, orgID, b.ID); err != nil {
			return err
		}
	}
	const q = `
INSERT INTO bank_accounts (id, organization_id, creator_id, account_number, bank_name, recipient_name,
                           country, sort_code, bank_address, is_preferred)
VALUES ($1, $2, 'demo-owner', $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
ON CONFLICT (id) DO UPDATE
SET account_number = EXCLUDED.account_number,
    bank_name = EXCLUDED.bank_name,
    recipient_name = EXCLUDED.recipient_name,
    country = EXCLUDED.country,
    sort_code = EXCLUDED.sort_code,
    bank_address = EXCLUDED.bank_address,
    is_preferred = EXCLUDED.is_preferred,
    is_deleted = FALSE
`
	_, err := pool.Exec(ctx, q, b.ID, orgID, b.AccountNumber, b.BankName, b.RecipientName,
		b.Country, b.SortCode, b.BankAddress, b.IsPreferred)
	return err
}

func upsertCustomer(ctx context.Context, pool *pgxpool.Pool, orgID string, c customerSeed, created time.Time) error {
	const q = `
INSERT INTO customers (id, customer_id, organization_id, first_name, last_name, email, country, date_created, last_updated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (id) DO UPDATE
SET first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    email = EXCLUDED.email,
    country = EXCLUDED.country,
    is_deleted = FALSE
`
	_, err := pool.Exec(ctx, q, c.ID, c.CustomerID, orgID, c.FirstName, c.LastName, c.Email, c.Country, created)
	return err
}
