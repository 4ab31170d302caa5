package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feriahub/marketplace-backend/internal/adapters/cache"
	"github.com/feriahub/marketplace-backend/internal/adapters/repository/memory"
	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// flakyIdentity fails AddRole a configured number of times before delegating.
// Simulates the role store being unreachable right after a decision lands.
type flakyIdentity struct {
	*memory.IdentityStore
	addRoleFailures int
}

func (f *flakyIdentity) AddRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.Principal, error) {
	if f.addRoleFailures > 0 {
		f.addRoleFailures--
		return nil, errors.New("identity store unavailable")
	}
	return f.IdentityStore.AddRole(ctx, id, role)
}

// flakyApps fails a configured number of reads with a transient error before
// delegating, to exercise the read-path retry.
type flakyApps struct {
	domain.ApplicationRepository
	getFailures int
	getCalls    int
}

func (f *flakyApps) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VendorApplication, error) {
	f.getCalls++
	if f.getFailures > 0 {
		f.getFailures--
		return nil, errors.New("connection reset")
	}
	return f.ApplicationRepository.GetByID(ctx, id)
}

// countingApps counts list reads so cache hits are observable.
type countingApps struct {
	domain.ApplicationRepository
	listCalls int
}

func (c *countingApps) ListByStatus(ctx context.Context, status *domain.ApplicationStatus, limit, skip int64) ([]domain.VendorApplication, int64, error) {
	c.listCalls++
	return c.ApplicationRepository.ListByStatus(ctx, status, limit, skip)
}

type fixture struct {
	svc      *Service
	apps     *memory.ApplicationRepository
	identity *memory.IdentityStore
	profiles *memory.VendorProfileRepository
	audit    *memory.AuditStore
	views    cache.ViewCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		apps:     memory.NewApplicationRepository(),
		identity: memory.NewIdentityStore(),
		profiles: memory.NewVendorProfileRepository(),
		audit:    memory.NewAuditStore(),
		views:    cache.NewMemoryCache(),
	}
	f.svc = NewService(f.apps, f.identity, f.profiles, f.audit, f.views, time.Minute)
	return f
}

func (f *fixture) newPrincipal(t *testing.T, roles ...domain.Role) *domain.Principal {
	t.Helper()
	p := &domain.Principal{DisplayName: "p", Email: primitive.NewObjectID().Hex() + "@example.com"}
	require.NoError(t, f.identity.Create(context.Background(), p))
	for _, role := range roles {
		if role == domain.RoleBuyer {
			continue
		}
		_, err := f.identity.AddRole(context.Background(), p.ID, role)
		require.NoError(t, err)
	}
	got, err := f.identity.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got
}

func submission() domain.SubmissionFields {
	return domain.SubmissionFields{
		BusinessType: "food_vendor",
		Description:  "Vendo arepas",
		ServiceArea:  "Centro",
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.Equal(t, buyer.ID, app.ApplicantID)
}

func TestSubmitUnauthorized(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), nil, submission())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	admin := f.newPrincipal(t, domain.RoleAdmin)
	admin.Roles = []domain.Role{domain.RoleAdmin}
	_, err = f.svc.Submit(context.Background(), admin, submission())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSubmitDuplicatePending(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	_, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), buyer, submission())
	assert.ErrorIs(t, err, domain.ErrDuplicatePendingApplication)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	fields := submission()
	fields.Description = ""
	_, err := f.svc.Submit(context.Background(), buyer, fields)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApprovePromotesApplicant(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	approved, err := f.svc.Approve(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, admin.ID, *approved.DecidedBy)

	promoted, err := f.identity.GetByID(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.True(t, promoted.HasRole(domain.RoleVendor))
	assert.True(t, promoted.HasRole(domain.RoleBuyer), "existing roles must survive promotion")

	profile, err := f.profiles.GetByApplicantID(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorProfileStatusActive, profile.Status)

	events := f.audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.AuditApplicationApproved, events[0].Action)
	assert.Equal(t, admin.ID, events[0].ActorID)
}

func TestRejectLeavesRolesUntouched(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	rejected, err := f.svc.Reject(context.Background(), admin, app.ID, "incomplete documents")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "incomplete documents", rejected.RejectionReason)

	unchanged, err := f.identity.GetByID(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.False(t, unchanged.HasRole(domain.RoleVendor))
}

func TestDecideRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), buyer, app.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Reject(context.Background(), buyer, app.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDecideOnDecidedApplication(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)
	_, err = f.svc.Reject(context.Background(), admin, app.ID, "no")
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), admin, app.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDecideUnknownApplication(t *testing.T) {
	f := newFixture(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	_, err := f.svc.Approve(context.Background(), admin, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
}

// A status write that lands while the promotion fails must surface as a
// PromotionError carrying the approved application, and the retry endpoint
// must be able to finish the job.
func TestApprovePromotionFailureAndRetry(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	identity := &flakyIdentity{IdentityStore: f.identity, addRoleFailures: 1}
	f.svc = NewService(f.apps, identity, f.profiles, f.audit, f.views, time.Minute)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	approved, err := f.svc.Approve(context.Background(), admin, app.ID)
	var promErr *domain.PromotionError
	require.ErrorAs(t, err, &promErr)
	assert.Equal(t, app.ID, promErr.ApplicationID)
	assert.Equal(t, buyer.ID, promErr.ApplicantID)
	require.NotNil(t, approved)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	// The decision is durable even though promotion did not run.
	stored, err := f.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)

	notPromoted, err := f.identity.GetByID(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.False(t, notPromoted.HasRole(domain.RoleVendor))

	// A second approval is not the recovery path.
	_, err = f.svc.Approve(context.Background(), admin, app.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	principal, err := f.svc.RetryPromotion(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.True(t, principal.HasRole(domain.RoleVendor))

	// Retrying again is a no-op, not an error.
	again, err := f.svc.RetryPromotion(context.Background(), admin, app.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, principal.Roles, again.Roles)

	_, err = f.profiles.GetByApplicantID(context.Background(), buyer.ID)
	require.NoError(t, err)
}

func TestRetryPromotionOnPendingApplication(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	_, err = f.svc.RetryPromotion(context.Background(), admin, app.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetApplicationAuthorization(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)
	stranger := f.newPrincipal(t)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	got, err := f.svc.GetApplication(context.Background(), buyer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = f.svc.GetApplication(context.Background(), admin, app.ID)
	require.NoError(t, err)

	_, err = f.svc.GetApplication(context.Background(), stranger, app.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// A decision invalidates the cached view synchronously: a read warmed before
// the decision must observe the new status immediately after it.
func TestDecisionInvalidatesCachedViews(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	warmed, err := f.svc.GetApplication(context.Background(), buyer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, warmed.Status)

	_, err = f.svc.Approve(context.Background(), admin, app.ID)
	require.NoError(t, err)

	fresh, err := f.svc.GetApplication(context.Background(), buyer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, fresh.Status)

	promoted, err := f.svc.GetPrincipal(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.True(t, promoted.HasRole(domain.RoleVendor))
}

func TestListApplications(t *testing.T) {
	f := newFixture(t)
	admin := f.newPrincipal(t, domain.RoleAdmin)

	counting := &countingApps{ApplicationRepository: f.apps}
	f.svc = NewService(counting, f.identity, f.profiles, f.audit, f.views, time.Minute)

	for i := 0; i < 3; i++ {
		buyer := f.newPrincipal(t)
		_, err := f.svc.Submit(context.Background(), buyer, submission())
		require.NoError(t, err)
	}

	pending := domain.StatusPending
	page, err := f.svc.ListApplications(context.Background(), admin, &pending, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)

	// Second identical read is served from the view cache.
	_, err = f.svc.ListApplications(context.Background(), admin, &pending, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.listCalls)

	// A new submission drops the cached pages.
	buyer := f.newPrincipal(t)
	_, err = f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	page, err = f.svc.ListApplications(context.Background(), admin, &pending, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 2, counting.listCalls)
}

func TestListApplicationsRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	_, err := f.svc.ListApplications(context.Background(), buyer, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestReadPathRetriesOnceOnTransientError(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	flaky := &flakyApps{ApplicationRepository: f.apps, getFailures: 1}
	f.svc = NewService(flaky, f.identity, f.profiles, f.audit, cache.NewMemoryCache(), time.Minute)

	got, err := f.svc.GetApplication(context.Background(), buyer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, 2, flaky.getCalls)
}

func TestReadPathDoesNotRetryDomainOutcomes(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)

	flaky := &flakyApps{ApplicationRepository: f.apps}
	f.svc = NewService(flaky, f.identity, f.profiles, f.audit, cache.NewMemoryCache(), time.Minute)

	_, err := f.svc.GetApplication(context.Background(), buyer, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
	assert.Equal(t, 1, flaky.getCalls)
}

func TestAttachDocument(t *testing.T) {
	f := newFixture(t)
	buyer := f.newPrincipal(t)
	stranger := f.newPrincipal(t)

	app, err := f.svc.Submit(context.Background(), buyer, submission())
	require.NoError(t, err)

	doc := domain.VerificationDocument{FileName: "license.pdf", FileURL: "https://cdn/license.pdf"}
	updated, err := f.svc.AttachDocument(context.Background(), buyer, app.ID, doc)
	require.NoError(t, err)
	require.Len(t, updated.Documents, 1)
	assert.Equal(t, "license.pdf", updated.Documents[0].FileName)

	_, err = f.svc.AttachDocument(context.Background(), stranger, app.ID, doc)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
