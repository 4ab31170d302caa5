// Package memory holds in-process repository adapters. They back the test
// suite and enforce the same conditional-write contracts as the MongoDB
// adapters: uniqueness of the pending application and the pending-only
// decision write both happen under a single lock, so concurrent callers see
// exactly-one-winner semantics here too.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationRepository struct {
	mu   sync.RWMutex
	apps map[primitive.ObjectID]domain.VendorApplication
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{apps: make(map[primitive.ObjectID]domain.VendorApplication)}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.VendorApplication) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Uniqueness check and insert under one lock: this is the atomic
	// conditional write the lifecycle service relies on.
	for _, existing := range r.apps {
		if existing.ApplicantID == app.ApplicantID && existing.Status == domain.StatusPending {
			return domain.ErrDuplicatePendingApplication
		}
	}
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	r.apps[app.ID] = *app
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VendorApplication, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return &app, nil
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status *domain.ApplicationStatus, limit, skip int64) ([]domain.VendorApplication, int64, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.VendorApplication
	for _, app := range r.apps {
		if status == nil || app.Status == *status {
			result = append(result, app)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})

	total := int64(len(result))
	if skip > total {
		return nil, total, nil
	}
	result = result[skip:]
	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, total, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ApplicationStatus, decidedBy primitive.ObjectID, reason string) (*domain.VendorApplication, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if app.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}

	var err error
	switch status {
	case domain.StatusApproved:
		err = app.Approve(decidedBy)
	case domain.StatusRejected:
		err = app.Reject(decidedBy, reason)
	default:
		err = domain.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	r.apps[id] = app
	return &app, nil
}

func (r *ApplicationRepository) AttachDocument(ctx context.Context, id primitive.ObjectID, doc domain.VerificationDocument) (*domain.VendorApplication, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if app.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}
	app.Documents = append(app.Documents, doc)
	r.apps[id] = app
	return &app, nil
}
