package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VendorProfile is the storefront record created when an application is
// approved. Keyed uniquely by applicant so promotion retries upsert instead of
// duplicating.
type VendorProfile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicantID   primitive.ObjectID `bson:"applicantId" json:"applicantId"`
	ApplicationID primitive.ObjectID `bson:"applicationId" json:"applicationId"`

	BusinessType string `bson:"businessType" json:"businessType"`
	Description  string `bson:"description" json:"description"`
	ServiceArea  string `bson:"serviceArea" json:"serviceArea"`

	Status      string    `bson:"status" json:"status"`
	ActivatedAt time.Time `bson:"activatedAt" json:"activatedAt"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

const VendorProfileStatusActive = "active"

// NewVendorProfile derives the profile from an approved application.
func NewVendorProfile(app *VendorApplication) *VendorProfile {
	now := time.Now().UTC()
	return &VendorProfile{
		ID:            primitive.NewObjectID(),
		ApplicantID:   app.ApplicantID,
		ApplicationID: app.ID,
		BusinessType:  app.BusinessType,
		Description:   app.Description,
		ServiceArea:   app.ServiceArea,
		Status:        VendorProfileStatusActive,
		ActivatedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type VendorProfileRepository interface {
	// Upsert creates or refreshes the profile for the applicant. Idempotent.
	Upsert(ctx context.Context, profile *VendorProfile) error

	GetByApplicantID(ctx context.Context, applicantID primitive.ObjectID) (*VendorProfile, error)
}
