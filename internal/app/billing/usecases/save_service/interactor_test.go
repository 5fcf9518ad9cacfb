package save_service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
	"github.com/light-bringer/tariff-billing/internal/testutil"
)

func monthly(title string, st domain.ServiceType, isDefault bool) *Request {
	return &Request{
		Title:      title,
		Type:       st,
		Period:     1,
		PeriodUnit: domain.PeriodMonth,
		IsDefault:  isDefault,
		IsEnabled:  true,
	}
}

func TestSaveService_OneDefaultPerType(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	interactor := NewInteractor(env.Repos, env.Clock)

	firstID, err := interactor.Execute(ctx, monthly("Rooms", domain.ServiceTypeRooms, true))
	require.NoError(t, err)

	_, err = interactor.Execute(ctx, monthly("Rooms v2", domain.ServiceTypeRooms, true))
	assert.ErrorIs(t, err, domain.ErrDefaultExists)

	_, err = interactor.Execute(ctx, monthly("Support", domain.ServiceTypeOther, true))
	require.NoError(t, err)
	_, err = interactor.Execute(ctx, monthly("Hosting", domain.ServiceTypeOther, true))
	assert.NoError(t, err, "flat services may carry several defaults")

	retire := monthly("Rooms", domain.ServiceTypeRooms, true)
	retire.ID = firstID
	retire.IsEnabled = false
	_, err = interactor.Execute(ctx, retire)
	require.NoError(t, err)

	_, err = interactor.Execute(ctx, monthly("Rooms v2", domain.ServiceTypeRooms, true))
	assert.NoError(t, err, "a disabled default does not block a new one")
}

func TestSaveService_Validation(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	interactor := NewInteractor(env.Repos, env.Clock)

	bad := monthly("", domain.ServiceTypeRooms, false)
	_, err := interactor.Execute(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = monthly("Seats", "seats", false)
	_, err = interactor.Execute(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrUnknownServiceType)

	_, err = interactor.Execute(ctx, &Request{ID: "missing", Title: "x", Type: domain.ServiceTypeRooms, PeriodUnit: domain.PeriodMonth})
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}
