package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors for the application lifecycle. The handler layer maps each
// of these to a distinct HTTP status code, so they must never be coalesced
// into a generic failure on the way up.
var (
	ErrValidation                  = errors.New("business type, description and service area are required")
	ErrUnauthorized                = errors.New("principal lacks the required role for this operation")
	ErrApplicationNotFound         = errors.New("vendor application not found")
	ErrPrincipalNotFound           = errors.New("principal not found")
	ErrVendorProfileNotFound       = errors.New("vendor profile not found")
	ErrDuplicatePendingApplication = errors.New("applicant already has a pending application")
	ErrInvalidTransition           = errors.New("application has already been decided")
	ErrStoreUnavailable            = errors.New("data store unavailable")
)

// PromotionError reports an approval whose status write landed but whose
// promotion side effect (vendor role grant / profile creation) did not.
// The application is left approved; the promotion step is idempotent and can
// be re-run on its own, so callers retry it instead of re-approving.
type PromotionError struct {
	ApplicationID primitive.ObjectID
	ApplicantID   primitive.ObjectID
	Err           error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("application %s approved but promoting applicant %s failed: %v",
		e.ApplicationID.Hex(), e.ApplicantID.Hex(), e.Err)
}

func (e *PromotionError) Unwrap() error { return e.Err }
