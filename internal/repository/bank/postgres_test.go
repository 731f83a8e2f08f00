package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"orgbanking/internal/db/dbtest"
	"orgbanking/internal/domain"

	"github.com/guregu/null/v5"
)

func account(id, orgID string, preferred bool) domain.BankAccount {
	return domain.BankAccount{
		ID:             id,
		OrganizationID: orgID,
		CreatorID:      "user-1",
		AccountNumber:  "0123456789",
		BankName:       "First Bank",
		Country:        "Nigeria",
		SortCode:       null.StringFrom("011"),
		IsPreferred:    preferred,
	}
}

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	dbtest.InsertOrganization(t, pool, "org-1", "user-1")

	repo := NewPostgres(pool, nil, ScopeOrganization)
	created, err := repo.Create(ctx, account("b1", "org-1", false))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.DateCreated.IsZero() || created.SwiftCode.Valid {
		t.Fatalf("unexpected account %+v", created)
	}

	fetched, err := repo.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.OrganizationID != "org-1" || fetched.SortCode.String != "011" {
		t.Fatalf("fetched mismatch %+v", fetched)
	}

	if _, err := repo.Create(ctx, account("b1", "org-1", false)); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate id: expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_PreferredMovesWithinOrganization(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	dbtest.InsertOrganization(t, pool, "org-1", "user-1")
	dbtest.InsertOrganization(t, pool, "org-2", "user-2")

	repo := NewPostgres(pool, nil, ScopeOrganization)
	for _, b := range []domain.BankAccount{
		account("a", "org-1", true),
		account("other", "org-2", true),
		account("b", "org-1", true),
	} {
		if _, err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create %s: %v", b.ID, err)
		}
	}

	a, _ := repo.GetByID(ctx, "a")
	b, _ := repo.GetByID(ctx, "b")
	other, _ := repo.GetByID(ctx, "other")
	if a.IsPreferred || !b.IsPreferred {
		t.Fatalf("expected b to replace a as preferred, got a=%v b=%v", a.IsPreferred, b.IsPreferred)
	}
	if !other.IsPreferred {
		t.Fatal("other organization's preferred account must be untouched")
	}

	a.IsPreferred = true
	if _, err := repo.Update(ctx, *a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	b, _ = repo.GetByID(ctx, "b")
	if b.IsPreferred {
		t.Fatal("update to preferred must clear the previous preferred account")
	}
}

func TestPostgres_PreferredGlobalScope(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	dbtest.InsertOrganization(t, pool, "org-1", "user-1")
	dbtest.InsertOrganization(t, pool, "org-2", "user-2")

	repo := NewPostgres(pool, nil, ScopeGlobal)
	if _, err := repo.Create(ctx, account("a", "org-1", true)); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := repo.Create(ctx, account("b", "org-2", true)); err != nil {
		t.Fatalf("Create b: %v", err)
	}
	a, _ := repo.GetByID(ctx, "a")
	if a.IsPreferred {
		t.Fatal("global scope must clear preferred accounts of other organizations")
	}
}

func TestPostgres_SoftDeleteHidesAccount(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	dbtest.InsertOrganization(t, pool, "org-1", "user-1")

	repo := NewPostgres(pool, nil, ScopeOrganization)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.Create(ctx, account(id, "org-1", false)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := repo.SoftDelete(ctx, "b"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := repo.SoftDelete(ctx, "b"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "b"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get deleted: expected ErrNotFound, got %v", err)
	}

	list, total, err := repo.ListByOrganization(ctx, "org-1", 1, 1)
	if err != nil {
		t.Fatalf("ListByOrganization: %v", err)
	}
	if total != 2 || len(list) != 1 || list[0].ID != "c" {
		t.Fatalf("unexpected page total=%d items=%+v", total, list)
	}

	b := account("b", "org-1", false)
	if _, err := repo.Update(ctx, b); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update deleted: expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ConcurrentPreferredWriters(t *testing.T) {
	const writers = 8

	for name, scope := range map[string]PreferredScope{
		"organization": ScopeOrganization,
		"global":       ScopeGlobal,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			pool := dbtest.Pool(t)
			dbtest.InsertOrganization(t, pool, "org-1", "user-1")

			repo := NewPostgres(pool, nil, scope)
			accounts := make([]domain.BankAccount, 0, writers)
			for i := 0; i < writers; i++ {
				created, err := repo.Create(ctx, account(fmt.Sprintf("acct-%d", i), "org-1", false))
				if err != nil {
					t.Fatalf("Create: %v", err)
				}
				accounts = append(accounts, *created)
			}

			var wg sync.WaitGroup
			errs := make(chan error, writers*2)
			for i, b := range accounts {
				wg.Add(2)
				go func(b domain.BankAccount) {
					defer wg.Done()
					b.IsPreferred = true
					if _, err := repo.Update(ctx, b); err != nil {
						errs <- fmt.Errorf("update %s: %w", b.ID, err)
					}
				}(b)
				go func(id string) {
					defer wg.Done()
					if _, err := repo.Create(ctx, account(id, "org-1", true)); err != nil {
						errs <- fmt.Errorf("create %s: %w", id, err)
					}
				}(fmt.Sprintf("new-%d", i))
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Errorf("concurrent writer failed: %v", err)
			}

			var preferred int
			err := pool.QueryRow(ctx,
				`SELECT count(*) FROM active_bank_accounts WHERE organization_id = $1 AND is_preferred`, "org-1").Scan(&preferred)
			if err != nil {
				t.Fatalf("count preferred: %v", err)
			}
			if preferred != 1 {
				t.Fatalf("expected exactly one preferred account, got %d", preferred)
			}
		})
	}
}
