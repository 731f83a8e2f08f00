package bank

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"orgbanking/internal/bankschema"
	"orgbanking/internal/domain"

	"github.com/guregu/null/v5"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[string]domain.BankAccount
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]domain.BankAccount{}}
}

func (r *memoryRepo) clearPreferred(orgID, keepID string) {
	for id, b := range r.items {
		if id != keepID && b.OrganizationID == orgID && b.IsPreferred && !b.IsDeleted {
			b.IsPreferred = false
			r.items[id] = b
		}
	}
}

func (r *memoryRepo) Create(_ context.Context, b domain.BankAccount) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if b.IsPreferred {
		r.clearPreferred(b.OrganizationID, b.ID)
	}
	r.items[b.ID] = b
	return &b, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *memoryRepo) ListByOrganization(_ context.Context, orgID string, limit, offset int) ([]domain.BankAccount, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.BankAccount
	for _, b := range r.items {
		if b.OrganizationID == orgID && !b.IsDeleted {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].DateCreated.Equal(all[j].DateCreated) {
			return all[i].DateCreated.Before(all[j].DateCreated)
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memoryRepo) Update(_ context.Context, b domain.BankAccount) (*domain.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[b.ID]
	if !ok || cur.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if b.IsPreferred {
		r.clearPreferred(cur.OrganizationID, b.ID)
	}
	b.OrganizationID = cur.OrganizationID
	r.items[b.ID] = b
	return &b, nil
}

func (r *memoryRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.IsDeleted {
		return domain.ErrNotFound
	}
	b.IsDeleted = true
	r.items[id] = b
	return nil
}

type stubGate map[string]string // user -> organization

func (g stubGate) Require(_ context.Context, userID, organizationID string) error {
	if g[userID] != organizationID {
		return domain.ErrForbidden
	}
	return nil
}

func newTestService(t *testing.T, strict bool) (*Service, *memoryRepo) {
	t.Helper()
	table, err := bankschema.LoadDefault()
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	repo := newMemoryRepo()
	gate := stubGate{"alice": "org1", "bob": "org2"}
	return New(repo, gate, bankschema.NewValidator(table), Options{StrictCountry: strict}, nil), repo
}

func nigerianInput(orgID string, preferred bool) Input {
	return Input{
		OrganizationID: orgID,
		AccountNumber:  "0123456789",
		BankName:       "First Bank",
		RecipientName:  null.StringFrom("Jane Doe"),
		Country:        "Nigeria",
		BankAddress:    "35 Marina, Lagos",
		IsPreferred:    preferred,
	}
}

func TestService_CreatePreferredClearsPrevious(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", nigerianInput("org1", true))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.CreatorID != "alice" || len(first.ID) != 32 {
		t.Fatalf("unexpected account %+v", first)
	}
	second, err := svc.Create(ctx, "alice", nigerianInput("org1", true))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := svc.Get(ctx, "alice", first.ID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if got.IsPreferred {
		t.Fatal("first account should no longer be preferred")
	}
	got, _ = svc.Get(ctx, "alice", second.ID)
	if !got.IsPreferred {
		t.Fatal("second account should be preferred")
	}
}

func TestService_CrossOrganizationForbidden(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	b, err := svc.Create(ctx, "bob", nigerianInput("org2", false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, "alice", b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("get: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, "alice", b.ID, nigerianInput("org1", false)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "alice", b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, "alice", nigerianInput("org2", false)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("create in foreign org: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.List(ctx, "alice", "org2", 1, 10); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("list foreign org: expected ErrForbidden, got %v", err)
	}
}

func TestService_SoftDeletedIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	b, _ := svc.Create(ctx, "alice", nigerianInput("org1", false))
	keep, _ := svc.Create(ctx, "alice", nigerianInput("org1", false))
	if err := svc.Delete(ctx, "alice", b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "alice", b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get deleted: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "alice", b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete twice: expected ErrNotFound, got %v", err)
	}

	page, err := svc.List(ctx, "alice", "org1", 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != keep.ID {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Size != DefaultPageSize || page.Pages != 1 {
		t.Fatalf("unexpected page defaults size=%d pages=%d", page.Size, page.Pages)
	}
}

func TestService_UpdateReplacesFields(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	in := nigerianInput("org1", false)
	in.SwiftCode = null.StringFrom("FBNINGLA")
	b, _ := svc.Create(ctx, "alice", in)

	replacement := nigerianInput("org1", true)
	replacement.BankName = "Zenith"
	updated, err := svc.Update(ctx, "alice", b.ID, replacement)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BankName != "Zenith" || !updated.IsPreferred {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.SwiftCode.Valid {
		t.Fatalf("omitted optional field should be cleared, got %v", updated.SwiftCode)
	}
	if updated.ID != b.ID || updated.CreatorID != "alice" || !updated.DateCreated.Equal(b.DateCreated) {
		t.Fatalf("identity fields changed: %+v", updated)
	}
	if _, err := svc.Update(ctx, "alice", "missing", replacement); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing: expected ErrNotFound, got %v", err)
	}
}

func TestService_Validation(t *testing.T) {
	svc, _ := newTestService(t, false)
	strictSvc, _ := newTestService(t, true)
	ctx := context.Background()

	missing := nigerianInput("org1", false)
	missing.RecipientName = null.String{}
	if _, err := svc.Create(ctx, "alice", missing); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing required field: expected validation error, got %v", err)
	}


	unknown := nigerianInput("org1", false)
	unknown.Country = "Ghana"
	if _, err := svc.Create(ctx, "alice", unknown); err != nil {
		t.Fatalf("lenient mode should fall back to others, got %v", err)
	}
	if _, err := strictSvc.Create(ctx, "alice", unknown); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("strict mode: expected validation error, got %v", err)
	}
}

func TestService_ForbiddenBeforeValidation(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	b, err := svc.Create(ctx, "alice", nigerianInput("org1", false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	invalid := nigerianInput("org1", false)
	invalid.AccountNumber = ""
	invalid.RecipientName = null.String{}
	if _, err := svc.Create(ctx, "bob", invalid); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("create: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, "bob", b.ID, invalid); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update: expected ErrForbidden, got %v", err)
	}

	noOrg := nigerianInput("", false)
	if _, err := svc.Create(ctx, "alice", noOrg); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("create without organisation: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, "alice", b.ID, noOrg); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update without organisation: expected ErrForbidden, got %v", err)
	}
}

func TestService_CreateHonoursDateCreated(t *testing.T) {
	svc, _ := newTestService(t, false)
	when := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	in := nigerianInput("org1", false)
	in.DateCreated = null.TimeFrom(when)

	b, err := svc.Create(context.Background(), "alice", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !b.DateCreated.Equal(when) {
		t.Fatalf("date_created = %v, want %v", b.DateCreated, when)
	}
}

func TestService_CountryLookups(t *testing.T) {
	svc, _ := newTestService(t, false)
	if !svc.IsSupportedCountry("USA") || svc.IsSupportedCountry("usa") {
		t.Fatal("country support must be an exact match")
	}
	schema, err := svc.CountrySchema("USA")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema["aba_routing_number"] != bankschema.FieldRequired {
		t.Fatalf("unexpected USA schema %v", schema)
	}
}
