package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validFields() SubmissionFields {
	return SubmissionFields{
		BusinessType: "food_vendor",
		Description:  "Vendo arepas",
		ServiceArea:  "Centro",
	}
}

func TestNewVendorApplication(t *testing.T) {
	applicant := primitive.NewObjectID()

	app, err := NewVendorApplication(applicant, validFields())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, app.Status)
	assert.Equal(t, applicant, app.ApplicantID)
	assert.False(t, app.ID.IsZero())
	assert.False(t, app.SubmittedAt.IsZero())
	assert.Nil(t, app.DecidedAt)
	assert.Nil(t, app.DecidedBy)
}

func TestNewVendorApplicationValidation(t *testing.T) {
	applicant := primitive.NewObjectID()

	tests := []struct {
		name   string
		mutate func(*SubmissionFields)
	}{
		{"empty business type", func(f *SubmissionFields) { f.BusinessType = "" }},
		{"empty description", func(f *SubmissionFields) { f.Description = "" }},
		{"empty service area", func(f *SubmissionFields) { f.ServiceArea = "" }},
		{"whitespace only", func(f *SubmissionFields) { f.Description = "   " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(&fields)
			_, err := NewVendorApplication(applicant, fields)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestApproveTransition(t *testing.T) {
	app, err := NewVendorApplication(primitive.NewObjectID(), validFields())
	require.NoError(t, err)

	reviewer := primitive.NewObjectID()
	require.NoError(t, app.Approve(reviewer))

	assert.Equal(t, StatusApproved, app.Status)
	require.NotNil(t, app.DecidedBy)
	assert.Equal(t, reviewer, *app.DecidedBy)
	assert.NotNil(t, app.DecidedAt)
	assert.True(t, app.Decided())
}

func TestRejectTransition(t *testing.T) {
	app, err := NewVendorApplication(primitive.NewObjectID(), validFields())
	require.NoError(t, err)

	reviewer := primitive.NewObjectID()
	require.NoError(t, app.Reject(reviewer, "incomplete documents"))

	assert.Equal(t, StatusRejected, app.Status)
	assert.Equal(t, "incomplete documents", app.RejectionReason)
	require.NotNil(t, app.DecidedBy)
	assert.Equal(t, reviewer, *app.DecidedBy)
}

func TestTerminalStatesRejectFurtherTransitions(t *testing.T) {
	reviewer := primitive.NewObjectID()

	approved, err := NewVendorApplication(primitive.NewObjectID(), validFields())
	require.NoError(t, err)
	require.NoError(t, approved.Approve(reviewer))

	rejected, err := NewVendorApplication(primitive.NewObjectID(), validFields())
	require.NoError(t, err)
	require.NoError(t, rejected.Reject(reviewer, ""))

	for _, app := range []*VendorApplication{approved, rejected} {
		assert.ErrorIs(t, app.Approve(reviewer), ErrInvalidTransition)
		assert.ErrorIs(t, app.Reject(reviewer, "late"), ErrInvalidTransition)
	}

	// The failed calls must not have touched the records.
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Empty(t, approved.RejectionReason)
}
