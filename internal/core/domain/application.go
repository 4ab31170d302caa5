package domain

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// VerificationDocument is a supporting file attached to a pending application.
type VerificationDocument struct {
	FileName    string    `bson:"fileName" json:"fileName"`
	FileURL     string    `bson:"fileUrl" json:"fileUrl"`
	FileSize    int64     `bson:"fileSize" json:"fileSize"`
	ContentType string    `bson:"contentType" json:"contentType"`
	UploadedAt  time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// VendorApplication is a buyer's request to gain the vendor role.
//
// State machine: pending -> approved | rejected. Approved and rejected are
// terminal; re-applying after a rejection means submitting a new application.
// Records are never deleted; they are the audit trail of who applied and who
// decided.
type VendorApplication struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicantID primitive.ObjectID `bson:"applicantId" json:"applicantId"`

	BusinessType string                 `bson:"businessType" json:"businessType"`
	Description  string                 `bson:"description" json:"description"`
	ServiceArea  string                 `bson:"serviceArea" json:"serviceArea"`
	Documents    []VerificationDocument `bson:"documents,omitempty" json:"documents,omitempty"`

	Status          ApplicationStatus `bson:"status" json:"status"`
	RejectionReason string            `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`

	SubmittedAt time.Time           `bson:"submittedAt" json:"submittedAt"`
	DecidedAt   *time.Time          `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	DecidedBy   *primitive.ObjectID `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
}

// SubmissionFields is the applicant-supplied portion of a submission.
type SubmissionFields struct {
	BusinessType string `json:"businessType" validate:"required"`
	Description  string `json:"description" validate:"required"`
	ServiceArea  string `json:"serviceArea" validate:"required"`
}

// NewVendorApplication builds a pending application, rejecting blank fields
// with ErrValidation.
func NewVendorApplication(applicantID primitive.ObjectID, fields SubmissionFields) (*VendorApplication, error) {
	if strings.TrimSpace(fields.BusinessType) == "" ||
		strings.TrimSpace(fields.Description) == "" ||
		strings.TrimSpace(fields.ServiceArea) == "" {
		return nil, ErrValidation
	}
	return &VendorApplication{
		ID:           primitive.NewObjectID(),
		ApplicantID:  applicantID,
		BusinessType: fields.BusinessType,
		Description:  fields.Description,
		ServiceArea:  fields.ServiceArea,
		Status:       StatusPending,
		SubmittedAt:  time.Now().UTC(),
	}, nil
}

// Approve transitions pending -> approved. Deciding an already-decided
// application fails with ErrInvalidTransition: a stale admin view that fires
// the action twice must get a conflict, never a silent success.
func (a *VendorApplication) Approve(reviewerID primitive.ObjectID) error {
	if a.Status != StatusPending {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	a.Status = StatusApproved
	a.DecidedAt = &now
	a.DecidedBy = &reviewerID
	return nil
}

// Reject transitions pending -> rejected with an optional reason.
func (a *VendorApplication) Reject(reviewerID primitive.ObjectID, reason string) error {
	if a.Status != StatusPending {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	a.Status = StatusRejected
	a.RejectionReason = reason
	a.DecidedAt = &now
	a.DecidedBy = &reviewerID
	return nil
}

// Decided reports whether the application reached a terminal state.
func (a *VendorApplication) Decided() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// ApplicationRepository owns persisted VendorApplication records.
//
// The "one pending application per applicant" invariant is enforced here with
// an atomic conditional write, not by callers: two concurrent Create calls for
// the same applicant must leave exactly one pending record, with the loser
// failing ErrDuplicatePendingApplication. Likewise UpdateStatus succeeds only
// while the stored status is still pending, so two racing decisions produce
// exactly one winner.
type ApplicationRepository interface {
	// Create persists a new pending application.
	Create(ctx context.Context, app *VendorApplication) error

	// GetByID returns ErrApplicationNotFound for unknown ids.
	GetByID(ctx context.Context, id primitive.ObjectID) (*VendorApplication, error)

	// ListByStatus returns applications newest-first, optionally filtered by
	// status (nil means all), with the total count for pagination.
	ListByStatus(ctx context.Context, status *ApplicationStatus, limit, skip int64) ([]VendorApplication, int64, error)

	// UpdateStatus is the conditional decision write: it moves the record out
	// of pending and stamps decidedAt/decidedBy, failing ErrInvalidTransition
	// if the stored status is no longer pending.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status ApplicationStatus, decidedBy primitive.ObjectID, reason string) (*VendorApplication, error)

	// AttachDocument appends a verification document to a pending application.
	AttachDocument(ctx context.Context, id primitive.ObjectID, doc VerificationDocument) (*VendorApplication, error)
}
