package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orgbanking/internal/db"
	"orgbanking/internal/domain"
	"orgbanking/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const columns = `id, organization_id, creator_id, account_number, bank_name, recipient_name, country,
       sort_code, swift_code, bank_address, account_type, aba_routing_number, iban,
       is_preferred, is_deleted, date_created`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	scope  PreferredScope
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger, scope PreferredScope) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger), scope: scope}
}

func (r *postgresRepo) Create(ctx context.Context, b domain.BankAccount) (*domain.BankAccount, error) {
	if b.DateCreated.IsZero() {
		b.DateCreated = time.Now().UTC()
	}
	const q = `
INSERT INTO bank_accounts (
    id, organization_id, creator_id, account_number, bank_name, recipient_name, country,
    sort_code, swift_code, bank_address, account_type, aba_routing_number, iban,
    is_preferred, date_created
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + columns

	var out *domain.BankAccount
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if b.IsPreferred {
			if err := r.clearPreferred(ctx, tx, b.OrganizationID, b.ID); err != nil {
				return err
			}
		}
		created, err := r.scan(tx.QueryRow(ctx, q,
			b.ID,
			b.OrganizationID,
			b.CreatorID,
			b.AccountNumber,
			b.BankName,
			b.RecipientName,
			b.Country,
			b.SortCode,
			b.SwiftCode,
			b.BankAddress,
			b.AccountType,
			b.ABARoutingNumber,
			b.IBAN,
			b.IsPreferred,
			b.DateCreated,
		))
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	q := `SELECT ` + columns + ` FROM active_bank_accounts WHERE id = $1`
	return r.scan(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]domain.BankAccount, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM active_bank_accounts WHERE organization_id = $1`, organizationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + columns + `
FROM active_bank_accounts
WHERE organization_id = $1
ORDER BY date_created ASC, id ASC
LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, organizationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.BankAccount
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, b domain.BankAccount) (*domain.BankAccount, error) {
	const q = `
UPDATE bank_accounts
SET account_number = $2,
    bank_name = $3,
    recipient_name = $4,
    country = $5,
    sort_code = $6,
    swift_code = $7,
    bank_address = $8,
    account_type = $9,
    is_preferred = $10,
    aba_routing_number = $11,
    iban = $12
WHERE id = $1 AND NOT is_deleted
RETURNING ` + columns

	var out *domain.BankAccount
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if b.IsPreferred {
			if err := r.clearPreferred(ctx, tx, b.OrganizationID, b.ID); err != nil {
				return err
			}
		}
		updated, err := r.scan(tx.QueryRow(ctx, q,
			b.ID,
			b.AccountNumber,
			b.BankName,
			b.RecipientName,
			b.Country,
			b.SortCode,
			b.SwiftCode,
			b.BankAddress,
			b.AccountType,
			b.IsPreferred,
			b.ABARoutingNumber,
			b.IBAN,
		))
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE bank_accounts SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// clearPreferred unsets is_preferred on every live account other than keepID
// within the configured scope. The advisory lock serializes concurrent
// writers of the same scope until the transaction ends.
func (r *postgresRepo) clearPreferred(ctx context.Context, tx pgx.Tx, organizationID, keepID string) error {
	lockKey := "bank_preferred:" + organizationID
	stmt := `
UPDATE bank_accounts
SET is_preferred = FALSE
WHERE organization_id = $1 AND id <> $2 AND is_preferred AND NOT is_deleted`
	args := []any{organizationID, keepID}
	if r.scope == ScopeGlobal {
		lockKey = "bank_preferred:*"
		stmt = `
UPDATE bank_accounts
SET is_preferred = FALSE
WHERE id <> $1 AND is_preferred AND NOT is_deleted`
		args = []any{keepID}
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("lock preferred scope: %w", err)
	}
	cmd, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("clear preferred: %w", err)
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Info("bank repo: cleared preferred accounts",
			zap.String("organization_id", organizationID), zap.String("new_preferred", keepID), zap.Int64("cleared", n))
	}
	return nil
}

func (r *postgresRepo) scan(row pgx.Row) (*domain.BankAccount, error) {
	var b domain.BankAccount
	err := row.Scan(
		&b.ID,
		&b.OrganizationID,
		&b.CreatorID,
		&b.AccountNumber,
		&b.BankName,
		&b.RecipientName,
		&b.Country,
		&b.SortCode,
		&b.SwiftCode,
		&b.BankAddress,
		&b.AccountType,
		&b.ABARoutingNumber,
		&b.IBAN,
		&b.IsPreferred,
		&b.IsDeleted,
		&b.DateCreated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("bank repo: scan", zap.Error(err))
		return nil, err
	}
	return &b, nil
}
