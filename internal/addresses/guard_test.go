package addresses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

func TestAuthorizeMutation(t *testing.T) {
	var g Guard
	owned := &models.Address{ID: 1, OwnerUserID: 7, OwnerKind: models.KindUser}

	require.NoError(t, g.AuthorizeMutation(7, owned))

	err := g.AuthorizeMutation(8, owned)
	require.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, g.AuthorizeMutation(7, nil), ErrNotFound)
}

func TestOnAddressEdited(t *testing.T) {
	var g Guard

	tests := []struct {
		name      string
		kind      models.Kind
		confirmed bool
		changed   bool
	}{
		{"confirmed driver", models.KindDriver, true, true},
		{"unconfirmed driver", models.KindDriver, false, false},
		{"user", models.KindUser, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Profile{Kind: tt.kind, Confirmed: tt.confirmed}
			assert.Equal(t, tt.changed, g.OnAddressEdited(p))
			if tt.kind == models.KindDriver {
				assert.False(t, p.Confirmed)
			} else {
				assert.Equal(t, tt.confirmed, p.Confirmed)
			}
		})
	}
}
