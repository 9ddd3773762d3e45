package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/models"
)

func TestStruct_Conditions(t *testing.T) {
	tests := []struct {
		name    string
		room    models.RoomConditions
		wantErr bool
		detail  string
	}{
		{
			name: "defaults are valid",
			room: func() models.RoomConditions {
				var r models.RoomConditions
				r.ApplyDefaults()
				return r
			}(),
		},
		{
			name: "empty is allowed before defaults",
			room: models.RoomConditions{},
		},
		{
			name: "door accepts locking values",
			room: models.RoomConditions{Door: models.ConditionNotLocking},
		},
		{
			name:    "floor rejects fixture values",
			room:    models.RoomConditions{Floor: models.ConditionWorking},
			wantErr: true,
			detail:  "floor must be one of: Excellent, Good, Fair, Poor, Damaged, Not Applicable",
		},
		{
			name:    "switch rejects surface values",
			room:    models.RoomConditions{Switch: models.ConditionExcellent},
			wantErr: true,
		},
		{
			name:    "window rejects locking",
			room:    models.RoomConditions{Window: models.ConditionLocking},
			wantErr: true,
		},
		{
			name:    "matching is case sensitive",
			room:    models.RoomConditions{Wall: "good"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.room)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.True(t, apperr.Is(err, apperr.KindValidation))
			if tt.detail != "" {
				var ae *apperr.Error
				require.ErrorAs(t, err, &ae)
				require.Contains(t, ae.Details, tt.detail)
			}
		})
	}
}

func TestStruct_KitchenStove(t *testing.T) {
	k := models.KitchenConditions{Stove: models.ConditionPoor}
	err := Struct(k)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	k.Stove = models.ConditionNotWorking
	require.NoError(t, Struct(k))
}

func TestStruct_ContactPerson(t *testing.T) {
	err := Struct(models.ContactPerson{Name: "Jo", Email: "not-an-email"})

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindValidation, ae.Kind)
	require.ElementsMatch(t, []string{
		"email must be a valid email address",
		"phone is required",
	}, ae.Details)
}

func TestVar(t *testing.T) {
	require.NoError(t, Var("email", "a@b.co", "required,email"))

	err := Var("email", "nope", "required,email")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, []string{"email must be a valid email address"}, ae.Details)
}
