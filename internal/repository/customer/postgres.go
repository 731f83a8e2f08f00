package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orgbanking/internal/db"
	"orgbanking/internal/domain"
	"orgbanking/internal/ids"
	"orgbanking/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const columns = `id, customer_id, organization_id, email, first_name, last_name, unique_id, phone_number,
       business_name, location, gender, age, postal_code, language, country, city, region,
       country_code, auto_reminder, is_deleted, date_created, last_updated`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (
    id, customer_id, organization_id, email, first_name, last_name, unique_id, phone_number,
    business_name, location, gender, age, postal_code, language, country, city, region,
    country_code, auto_reminder, date_created, last_updated
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING ` + columns

	var out *domain.Customer
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		created, err := r.scan(tx.QueryRow(ctx, q,
			c.ID,
			c.CustomerID,
			c.OrganizationID,
			c.Email,
			c.FirstName,
			c.LastName,
			c.UniqueID,
			c.PhoneNumber,
			c.BusinessName,
			c.Location,
			c.Gender,
			c.Age,
			c.PostalCode,
			c.Language,
			c.Country,
			c.City,
			c.Region,
			c.CountryCode,
			c.AutoReminder,
			c.DateCreated,
			c.LastUpdated,
		))
		if err != nil {
			return err
		}
		info, err := insertOtherInfo(ctx, tx, created.ID, c.OtherInfo)
		if err != nil {
			return err
		}
		created.OtherInfo = info
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error) {
	q := `SELECT ` + columns + ` FROM active_customers WHERE customer_id = $1`
	return r.scan(r.pool.QueryRow(ctx, q, customerID))
}

func (r *postgresRepo) List(ctx context.Context, organizationID string, offset, limit int) ([]domain.Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM active_customers WHERE organization_id = $1`, organizationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + columns + `
FROM active_customers
WHERE organization_id = $1
ORDER BY date_created DESC, id ASC
LIMIT $2 OFFSET $3`
	list, err := r.query(ctx, q, organizationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *postgresRepo) SearchByName(ctx context.Context, organizationID, text string, offset, limit int) ([]domain.Customer, error) {
	q := `SELECT ` + columns + `
FROM active_customers
WHERE organization_id = $1
  AND (first_name LIKE $2 ESCAPE '\' OR last_name LIKE $2 ESCAPE '\')
ORDER BY date_created DESC, id ASC
LIMIT $3 OFFSET $4`
	return r.query(ctx, q, organizationID, containsPattern(text), limit, offset)
}

func (r *postgresRepo) SearchByID(ctx context.Context, organizationID, text string, offset, limit int) ([]domain.Customer, error) {
	q := `SELECT ` + columns + `
FROM active_customers
WHERE organization_id = $1
  AND (unique_id LIKE $2 ESCAPE '\' OR customer_id LIKE $2 ESCAPE '\')
ORDER BY date_created DESC, id ASC
LIMIT $3 OFFSET $4`
	return r.query(ctx, q, organizationID, containsPattern(text), limit, offset)
}

func (r *postgresRepo) ListSorted(ctx context.Context, organizationID string, field SortField, desc bool, offset, limit int) ([]domain.Customer, error) {
	// field is one of the enumerated columns; anything else degrades to first_name.
	column := string(ParseSortField(string(field)))
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	q := fmt.Sprintf(`SELECT %s
FROM active_customers
WHERE organization_id = $1
ORDER BY %s %s, id ASC
LIMIT $2 OFFSET $3`, columns, column, dir)
	return r.query(ctx, q, organizationID, limit, offset)
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer, appended []domain.OtherInformation) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET email = $2,
    first_name = $3,
    last_name = $4,
    unique_id = $5,
    phone_number = $6,
    business_name = $7,
    location = $8,
    gender = $9,
    age = $10,
    postal_code = $11,
    language = $12,
    country = $13,
    city = $14,
    region = $15,
    country_code = $16,
    auto_reminder = $17,
    last_updated = $18
WHERE id = $1 AND NOT is_deleted
RETURNING ` + columns
	var out *domain.Customer
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		updated, err := r.scan(tx.QueryRow(ctx, q,
			c.ID,
			c.Email,
			c.FirstName,
			c.LastName,
			c.UniqueID,
			c.PhoneNumber,
			c.BusinessName,
			c.Location,
			c.Gender,
			c.Age,
			c.PostalCode,
			c.Language,
			c.Country,
			c.City,
			c.Region,
			c.CountryCode,
			c.AutoReminder,
			c.LastUpdated,
		))
		if err != nil {
			return err
		}
		info, err := insertOtherInfo(ctx, tx, updated.ID, appended)
		if err != nil {
			return err
		}
		updated.OtherInfo = info
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE customers SET is_deleted = TRUE, last_updated = now() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AddOtherInfo(ctx context.Context, customerID string, entries []domain.OtherInformation) ([]domain.OtherInformation, error) {
	var out []domain.OtherInformation
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		info, err := insertOtherInfo(ctx, tx, customerID, entries)
		if err != nil {
			return err
		}
		out = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) ListOtherInfo(ctx context.Context, customerID string) ([]domain.OtherInformation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, customer_id, key, value
FROM customer_other_info
WHERE customer_id = $1
ORDER BY seq ASC
`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.OtherInformation{}
	for rows.Next() {
		var o domain.OtherInformation
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Key, &o.Value); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func insertOtherInfo(ctx context.Context, tx pgx.Tx, customerID string, entries []domain.OtherInformation) ([]domain.OtherInformation, error) {
	out := make([]domain.OtherInformation, 0, len(entries))
	for _, e := range entries {
		o := domain.OtherInformation{ID: ids.New(), CustomerID: customerID, Key: e.Key, Value: e.Value}
		if _, err := tx.Exec(ctx, `INSERT INTO customer_other_info (id, customer_id, key, value) VALUES ($1, $2, $3, $4)`,
			o.ID, o.CustomerID, o.Key, o.Value); err != nil {
			return nil, fmt.Errorf("insert other info %q: %w", e.Key, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Customer{}
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scan(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.CustomerID,
		&c.OrganizationID,
		&c.Email,
		&c.FirstName,
		&c.LastName,
		&c.UniqueID,
		&c.PhoneNumber,
		&c.BusinessName,
		&c.Location,
		&c.Gender,
		&c.Age,
		&c.PostalCode,
		&c.Language,
		&c.Country,
		&c.City,
		&c.Region,
		&c.CountryCode,
		&c.AutoReminder,
		&c.IsDeleted,
		&c.DateCreated,
		&c.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("customer repo: scan", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}
