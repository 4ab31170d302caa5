package memory

import (
	"context"
	"sync"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IdentityStore struct {
	mu         sync.RWMutex
	principals map[primitive.ObjectID]domain.Principal
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{principals: make(map[primitive.ObjectID]domain.Principal)}
}

func (s *IdentityStore) Create(ctx context.Context, principal *domain.Principal) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if principal.ID.IsZero() {
		principal.ID = primitive.NewObjectID()
	}
	if len(principal.Roles) == 0 {
		principal.Roles = []domain.Role{domain.RoleBuyer}
	}
	now := time.Now().UTC()
	principal.CreatedAt = now
	principal.UpdatedAt = now
	s.principals[principal.ID] = *principal
	return nil
}

func (s *IdentityStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Principal, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	out := p
	out.Roles = append([]domain.Role(nil), p.Roles...)
	return &out, nil
}

func (s *IdentityStore) AddRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.Principal, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	if !p.HasRole(role) {
		p.Roles = append(p.Roles, role)
		p.UpdatedAt = time.Now().UTC()
		s.principals[id] = p
	}
	out := p
	out.Roles = append([]domain.Role(nil), p.Roles...)
	return &out, nil
}
