// Package application orchestrates the vendor application lifecycle:
// submit -> pending -> approved/rejected, with the vendor-role promotion side
// effect on approval. The service holds no persistent state of its own; the
// repositories own the records, the identity store owns the role sets, and
// the view cache is invalidated synchronously before any mutation returns.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/feriahub/marketplace-backend/internal/adapters/cache"
	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/internal/core/policy"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultStaleness = 30 * time.Second

type Service struct {
	apps     domain.ApplicationRepository
	identity domain.IdentityStore
	profiles domain.VendorProfileRepository
	audit    domain.AuditStore
	views    cache.ViewCache
	staleFor time.Duration

	// One mutex per application id so a decision's multi-step sequence
	// (conditional write, promotion, invalidation) never interleaves with
	// another invocation on the same application within this process.
	// Cross-process ordering is carried by the conditional writes themselves.
	locks sync.Map
}

func NewService(
	apps domain.ApplicationRepository,
	identity domain.IdentityStore,
	profiles domain.VendorProfileRepository,
	audit domain.AuditStore,
	views cache.ViewCache,
	staleFor time.Duration,
) *Service {
	if staleFor <= 0 {
		staleFor = defaultStaleness
	}
	return &Service{
		apps:     apps,
		identity: identity,
		profiles: profiles,
		audit:    audit,
		views:    views,
		staleFor: staleFor,
	}
}

// Submit creates a pending application for the principal.
//
// The policy check is a fast path only; the repository's atomic conditional
// write is what actually enforces "one pending application per applicant",
// and its ErrDuplicatePendingApplication is propagated unwrapped.
func (s *Service) Submit(ctx context.Context, principal *domain.Principal, fields domain.SubmissionFields) (*domain.VendorApplication, error) {
	if !policy.CanSubmitApplication(principal) {
		return nil, domain.ErrUnauthorized
	}

	app, err := domain.NewVendorApplication(principal.ID, fields)
	if err != nil {
		return nil, err
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	s.invalidateListViews(ctx)
	return app, nil
}

// Approve decides a pending application and promotes the applicant.
//
// The promotion runs only after the status write lands. If the status write
// succeeds but promotion fails, the approved application is returned together
// with a *domain.PromotionError so the caller can retry the idempotent
// promotion step alone. That outcome is never folded into a generic failure.
func (s *Service) Approve(ctx context.Context, admin *domain.Principal, applicationID primitive.ObjectID) (*domain.VendorApplication, error) {
	if !policy.CanDecideApplication(admin) {
		return nil, domain.ErrUnauthorized
	}

	mu := s.lockFor(applicationID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if current.Decided() {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.apps.UpdateStatus(ctx, applicationID, domain.StatusApproved, admin.ID, "")
	if err != nil {
		return nil, err
	}

	// From here on the mutation is durable: invalidate before every return so
	// no reader observes the stale pending view.
	defer s.invalidateApplicationViews(ctx, applicationID, updated.ApplicantID)

	s.appendAudit(ctx, admin.ID, domain.AuditApplicationApproved, applicationID, map[string]any{
		"applicantId": updated.ApplicantID.Hex(),
	})

	if _, err := s.promote(ctx, updated); err != nil {
		promErr := &domain.PromotionError{
			ApplicationID: applicationID,
			ApplicantID:   updated.ApplicantID,
			Err:           err,
		}
		logrus.WithFields(logrus.Fields{
			"applicationId": applicationID.Hex(),
			"applicantId":   updated.ApplicantID.Hex(),
		}).WithError(err).Warn("application approved but vendor promotion failed; retry the promotion step")
		return updated, promErr
	}

	return updated, nil
}

// Reject decides a pending application with no role change.
func (s *Service) Reject(ctx context.Context, admin *domain.Principal, applicationID primitive.ObjectID, reason string) (*domain.VendorApplication, error) {
	if !policy.CanDecideApplication(admin) {
		return nil, domain.ErrUnauthorized
	}

	mu := s.lockFor(applicationID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if current.Decided() {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.apps.UpdateStatus(ctx, applicationID, domain.StatusRejected, admin.ID, reason)
	if err != nil {
		return nil, err
	}

	defer s.invalidateApplicationViews(ctx, applicationID, updated.ApplicantID)

	s.appendAudit(ctx, admin.ID, domain.AuditApplicationRejected, applicationID, map[string]any{
		"applicantId": updated.ApplicantID.Hex(),
		"reason":      reason,
	})
	return updated, nil
}

// RetryPromotion re-runs the promotion side effect for an already-approved
// application. AddRole and the profile upsert are both idempotent, so this is
// safe to call any number of times after a PromotionError.
func (s *Service) RetryPromotion(ctx context.Context, admin *domain.Principal, applicationID primitive.ObjectID) (*domain.Principal, error) {
	if !policy.CanDecideApplication(admin) {
		return nil, domain.ErrUnauthorized
	}

	mu := s.lockFor(applicationID)
	mu.Lock()
	defer mu.Unlock()

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusApproved {
		return nil, domain.ErrInvalidTransition
	}

	principal, err := s.promote(ctx, app)
	if err != nil {
		return nil, &domain.PromotionError{
			ApplicationID: applicationID,
			ApplicantID:   app.ApplicantID,
			Err:           err,
		}
	}

	s.appendAudit(ctx, admin.ID, domain.AuditPromotionRetried, applicationID, nil)
	s.invalidateApplicationViews(ctx, applicationID, app.ApplicantID)
	return principal, nil
}

// AttachDocument adds a verification document to the caller's own pending
// application (admins may attach on behalf of an applicant).
func (s *Service) AttachDocument(ctx context.Context, principal *domain.Principal, applicationID primitive.ObjectID, doc domain.VerificationDocument) (*domain.VendorApplication, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageVendorResource(principal, app.ApplicantID) {
		return nil, domain.ErrUnauthorized
	}

	updated, err := s.apps.AttachDocument(ctx, applicationID, doc)
	if err != nil {
		return nil, err
	}

	s.invalidateApplicationViews(ctx, applicationID, updated.ApplicantID)
	return updated, nil
}

// GetApplication serves the cached application view, authorized for the
// owner or an admin.
func (s *Service) GetApplication(ctx context.Context, principal *domain.Principal, applicationID primitive.ObjectID) (*domain.VendorApplication, error) {
	app, err := s.readApplicationView(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageVendorResource(principal, app.ApplicantID) {
		return nil, domain.ErrUnauthorized
	}
	return app, nil
}

// ListPage is the cached shape of one admin listing page.
type ListPage struct {
	Items []domain.VendorApplication `json:"items"`
	Total int64                      `json:"total"`
}

// ListApplications serves one page of the admin review queue, newest first.
func (s *Service) ListApplications(ctx context.Context, principal *domain.Principal, status *domain.ApplicationStatus, limit, skip int64) (*ListPage, error) {
	if !policy.CanDecideApplication(principal) {
		return nil, domain.ErrUnauthorized
	}

	key := cache.ListKey(status, limit, skip)
	if raw, ok := s.cacheGet(ctx, key); ok {
		var page ListPage
		if err := json.Unmarshal(raw, &page); err == nil {
			return &page, nil
		}
	}

	var (
		items []domain.VendorApplication
		total int64
		err   error
	)
	items, total, err = s.apps.ListByStatus(ctx, status, limit, skip)
	if err != nil && transient(err) {
		items, total, err = s.apps.ListByStatus(ctx, status, limit, skip)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.VendorApplication{}
	}

	page := &ListPage{Items: items, Total: total}
	s.cacheSet(ctx, key, page)
	return page, nil
}

// GetPrincipal serves the cached identity/role view. Used by the HTTP layer
// to resolve the authenticated subject into an authoritative role set.
func (s *Service) GetPrincipal(ctx context.Context, id primitive.ObjectID) (*domain.Principal, error) {
	key := cache.PrincipalKey(id)
	if raw, ok := s.cacheGet(ctx, key); ok {
		var principal domain.Principal
		if err := json.Unmarshal(raw, &principal); err == nil {
			return &principal, nil
		}
	}

	principal, err := s.identity.GetByID(ctx, id)
	if err != nil && transient(err) {
		principal, err = s.identity.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, principal)
	return principal, nil
}

// promote grants the vendor role and upserts the storefront profile. Both
// halves are idempotent.
func (s *Service) promote(ctx context.Context, app *domain.VendorApplication) (*domain.Principal, error) {
	principal, err := s.identity.AddRole(ctx, app.ApplicantID, domain.RoleVendor)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, domain.NewVendorProfile(app)); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *Service) readApplicationView(ctx context.Context, id primitive.ObjectID) (*domain.VendorApplication, error) {
	key := cache.ApplicationKey(id)
	if raw, ok := s.cacheGet(ctx, key); ok {
		var app domain.VendorApplication
		if err := json.Unmarshal(raw, &app); err == nil {
			return &app, nil
		}
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil && transient(err) {
		// Read paths retry once on transient store errors. Mutations never do.
		app, err = s.apps.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, app)
	return app, nil
}

// invalidateApplicationViews drops every view keyed by the application or the
// affected principal. Runs before the mutation's result reaches the caller.
func (s *Service) invalidateApplicationViews(ctx context.Context, applicationID, applicantID primitive.ObjectID) {
	if err := s.views.Delete(ctx, cache.ApplicationKey(applicationID), cache.PrincipalKey(applicantID)); err != nil {
		logrus.WithError(err).Warn("failed to invalidate application views")
	}
	s.invalidateListViews(ctx)
}

func (s *Service) invalidateListViews(ctx context.Context) {
	if err := s.views.DeletePrefix(ctx, cache.ListKeyPrefix); err != nil {
		logrus.WithError(err).Warn("failed to invalidate application listings")
	}
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := s.views.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Debug("view cache read failed")
		return nil, false
	}
	return raw, ok
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.views.Set(ctx, key, raw, s.staleFor); err != nil {
		logrus.WithError(err).WithField("key", key).Debug("view cache write failed")
	}
}

func (s *Service) appendAudit(ctx context.Context, actorID primitive.ObjectID, action string, targetID primitive.ObjectID, metadata map[string]any) {
	event := &domain.AuditEvent{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		TargetID:  targetID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.audit.Append(ctx, event); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("failed to append audit event")
	}
}

func (s *Service) lockFor(id primitive.ObjectID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id.Hex(), &sync.Mutex{})
	return v.(*sync.Mutex)
}

// transient reports whether an error is worth a single read-path retry:
// anything that is neither a domain outcome nor a cancelled context.
func transient(err error) bool {
	for _, sentinel := range []error{
		domain.ErrValidation,
		domain.ErrUnauthorized,
		domain.ErrApplicationNotFound,
		domain.ErrPrincipalNotFound,
		domain.ErrVendorProfileNotFound,
		domain.ErrDuplicatePendingApplication,
		domain.ErrInvalidTransition,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
