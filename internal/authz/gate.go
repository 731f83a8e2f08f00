// Package authz decides whether a principal may act on behalf of an organization.
package authz

import (
	"context"
	"fmt"

	"orgbanking/internal/domain"
	"orgbanking/internal/logging"

	"go.uber.org/zap"
)

// MembershipChecker answers organization membership queries.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, organizationID string) (bool, error)
}

// Gate guards organization-scoped operations. It owns no data.
type Gate struct {
	members MembershipChecker
	logger  *zap.Logger
}

func NewGate(members MembershipChecker, logger *zap.Logger) *Gate {
	return &Gate{members: members, logger: logging.OrNop(logger)}
}

// IsMember reports whether userID belongs to organizationID.
func (g *Gate) IsMember(ctx context.Context, userID, organizationID string) (bool, error) {
	ok, err := g.members.IsMember(ctx, userID, organizationID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// Require returns domain.ErrForbidden unless userID belongs to organizationID.
func (g *Gate) Require(ctx context.Context, userID, organizationID string) error {
	ok, err := g.IsMember(ctx, userID, organizationID)
	if err != nil {
		return err
	}
	if !ok {
		g.logger.Debug("membership denied",
			zap.String("user_id", userID), zap.String("organization_id", organizationID))
		return domain.ErrForbidden
	}
	return nil
}
