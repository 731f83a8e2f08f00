package organization

import (
	"context"
	"errors"

	"orgbanking/internal/domain"
	"orgbanking/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) IsMember(ctx context.Context, userID, organizationID string) (bool, error) {
	if userID == "" || organizationID == "" {
		return false, nil
	}
	const q = `
SELECT EXISTS (
    SELECT 1
    FROM organizations o
    WHERE o.id = $2
      AND NOT o.is_deleted
      AND (
          o.creator_id = $1
          OR EXISTS (
              SELECT 1 FROM organization_members m
              WHERE m.organization_id = o.id AND m.user_id = $1 AND NOT m.is_deleted
          )
      )
)
`
	var member bool
	if err := r.pool.QueryRow(ctx, q, userID, organizationID).Scan(&member); err != nil {
		r.logger.Error("organization repo: membership lookup",
			zap.String("user_id", userID), zap.String("organization_id", organizationID), zap.Error(err))
		return false, err
	}
	return member, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const q = `
SELECT id, name, creator_id, created_at
FROM organizations
WHERE id = $1 AND NOT is_deleted
`
	var o domain.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.Name, &o.CreatorID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
