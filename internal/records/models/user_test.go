package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clinic/pkg/domain-errors"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestUserLifecycle(t *testing.T) {
	t.Run("new users start active", func(t *testing.T) {
		c, err := NewCashier("Ana", "Ana@Clinic.Test", "", time.Time{}, fixedNow)
		require.NoError(t, err)
		assert.True(t, c.IsActive())
		assert.Equal(t, "ana@clinic.test", c.Email)
		assert.Equal(t, fixedNow, c.HiredAt)
	})

	t.Run("deactivate then activate", func(t *testing.T) {
		u := User{Active: true}
		later := fixedNow.Add(time.Hour)
		require.NoError(t, u.Deactivate(later))
		assert.False(t, u.Active)
		assert.Equal(t, later, u.UpdatedAt)
		require.NoError(t, u.Activate(later))
		assert.True(t, u.Active)
	})

	t.Run("activating an active user is rejected", func(t *testing.T) {
		u := User{Active: true, UpdatedAt: fixedNow}
		err := u.Activate(fixedNow.Add(time.Hour))
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeInvalidTransition, dErrors.CodeOf(err))
		assert.Equal(t, fixedNow, u.UpdatedAt)
	})

	t.Run("deactivating an inactive user is rejected", func(t *testing.T) {
		u := User{Active: false}
		err := u.Deactivate(fixedNow)
		var transition *InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, "already inactive", transition.Reason)
	})
}

func TestConstructors(t *testing.T) {
	t.Run("patient birth date cannot be in the future", func(t *testing.T) {
		_, err := NewPatient("Bea", "bea@clinic.test", "", fixedNow.AddDate(0, 0, 1), "", fixedNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewPatient("Bea", "not-an-email", "", fixedNow.AddDate(-30, 0, 0), "", fixedNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("doctor requires license", func(t *testing.T) {
		_, err := NewDoctor("Dr. Lee", "lee@clinic.test", "", "surgery", " ", time.Time{}, fixedNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("operation starts scheduled", func(t *testing.T) {
		op, err := NewOperation(1, 2, " knee ", time.Time{}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, OperationScheduled, op.Status)
		assert.Equal(t, "knee", op.Description)
		assert.Equal(t, fixedNow, op.ScheduledAt)
	})

	t.Run("operation status changes keep participants", func(t *testing.T) {
		op, err := NewOperation(1, 2, "", fixedNow, fixedNow)
		require.NoError(t, err)
		op.ApplyStatus(OperationCompleted, fixedNow.Add(time.Hour))
		assert.Equal(t, OperationCompleted, op.Status)
		assert.EqualValues(t, 1, op.PatientID)
		assert.EqualValues(t, 2, op.DoctorID)
	})

	t.Run("payment starts pending", func(t *testing.T) {
		p, err := NewPayment(1, 3, 15000, "pix", fixedNow)
		require.NoError(t, err)
		assert.Equal(t, PaymentPending, p.Status)
		assert.Equal(t, PaymentPix, p.Method)
	})

	t.Run("payment amount must be positive", func(t *testing.T) {
		_, err := NewPayment(1, 3, 0, PaymentCash, fixedNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestParseOperationStatus(t *testing.T) {
	status, err := ParseOperationStatus(" in_progress ")
	require.NoError(t, err)
	assert.Equal(t, OperationInProgress, status)

	_, err = ParseOperationStatus("DONE")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "operation 5 not found", (&NotFoundError{Kind: KindOperation, ID: 5}).Error())
	assert.Equal(t, "patient 2 does not match operation patient 1",
		(&MismatchError{Role: RolePatientMismatch, ExpectedID: 1, ActualID: 2}).Error())
	assert.Equal(t, "a report already exists for operation 5",
		(&AlreadyExistsError{Key: KeyOperation, Value: "5"}).Error())
	assert.Equal(t, "a receipt already exists for payment 1",
		(&AlreadyExistsError{Key: KeyPayment, Value: "1"}).Error())
}
