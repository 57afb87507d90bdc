package users

import (
	"context"

	"github.com/qualikit/qualikit/backend/go-services/internal/models"
)

// documentAdminRole is the Keycloak realm role that grants the
// document-admin capability (the approved -> obsolete edge).
const documentAdminRole = "qms-document-admin"

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a user using OIDC claims map
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, nil
	}
	u := &models.User{
		Sub:           sub,
		Email:         email,
		Name:          name,
		DocumentAdmin: hasRealmRole(claims, documentAdminRole),
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}

// IsDocumentAdmin satisfies the governance facade's admin check. Unknown
// subs are simply not admins.
func (s *Service) IsDocumentAdmin(ctx context.Context, sub string) (bool, error) {
	u, err := s.repo.GetBySub(ctx, sub)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	return u.DocumentAdmin, nil
}

// hasRealmRole digs the Keycloak realm_access.roles claim for role.
func hasRealmRole(claims map[string]interface{}, role string) bool {
	ra, ok := claims["realm_access"].(map[string]interface{})
	if !ok {
		return false
	}
	roles, ok := ra["roles"].([]interface{})
	if !ok {
		return false
	}
	for _, r := range roles {
		if s, ok := r.(string); ok && s == role {
			return true
		}
	}
	return false
}
