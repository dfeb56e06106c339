package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type perms struct {
	CanEdit bool
}

func canEdit(p perms) bool { return p.CanEdit }

func TestVisaFunc_RecomputesOnEveryCall(t *testing.T) {
	granted := false
	visa := VisaFunc[perms](func() perms { return perms{CanEdit: granted} })

	assert.False(t, visa.DetermineIf(canEdit))
	assert.False(t, visa.DetermineIf(canEdit), "repeat call without a change must agree")

	granted = true
	assert.True(t, visa.DetermineIf(canEdit))
	assert.True(t, visa.DetermineIf(canEdit))
}

func TestDenyVisa_RefusesEverything(t *testing.T) {
	visa := DenyVisa[perms]{}
	assert.False(t, visa.DetermineIf(canEdit))
	assert.False(t, visa.DetermineIf(func(perms) bool { return true }))
}

func TestRequire(t *testing.T) {
	allow := VisaFunc[perms](func() perms { return perms{CanEdit: true} })
	require.NoError(t, Require[perms](allow, "edit", canEdit))

	err := Require[perms](DenyVisa[perms]{}, "edit", canEdit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	var pe *PermissionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "edit", pe.Op)

	err = Require[perms](nil, "edit", canEdit)
	assert.ErrorIs(t, err, ErrPermissionDenied, "a missing visa fails closed")
}

func TestValidateVar(t *testing.T) {
	require.NoError(t, ValidateVar("title", "hello", "required,max=10"))

	err := ValidateVar("title", "", "required")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)
	assert.Equal(t, "is required", ve.Reason)

	err = ValidateVar("order", 7, "gte=1,lte=5")
	assert.ErrorIs(t, err, ErrValidation)
}
