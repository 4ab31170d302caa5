package memory

import (
	"context"
	"sync"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VendorProfileRepository struct {
	mu       sync.RWMutex
	profiles map[primitive.ObjectID]domain.VendorProfile // keyed by applicant id
}

func NewVendorProfileRepository() *VendorProfileRepository {
	return &VendorProfileRepository{profiles: make(map[primitive.ObjectID]domain.VendorProfile)}
}

func (r *VendorProfileRepository) Upsert(ctx context.Context, profile *domain.VendorProfile) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[profile.ApplicantID]; ok {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	}
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[profile.ApplicantID] = *profile
	return nil
}

func (r *VendorProfileRepository) GetByApplicantID(ctx context.Context, applicantID primitive.ObjectID) (*domain.VendorProfile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[applicantID]
	if !ok {
		return nil, domain.ErrVendorProfileNotFound
	}
	return &p, nil
}
