package organization

import (
	"context"

	"orgbanking/internal/domain"
)

// Repository reads organizations and their membership records.
type Repository interface {
	IsMember(ctx context.Context, userID, organizationID string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}
