package addresses

import (
	"fmt"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

// ErrNotFound is the only answer a caller gets for an address it does not
// own, so other callers' addresses stay invisible.
var ErrNotFound = fmt.Errorf("address: %w", storage.ErrNotFound)

// Guard scopes address mutations to their owner and decides the
// confirmation consequence of an edit. It holds no state.
type Guard struct{}

// AuthorizeMutation allows requestedBy to create, edit or delete target only
// when target belongs to one of requestedBy's own profiles.
func (Guard) AuthorizeMutation(requestedBy models.CallerID, target *models.Address) error {
	if target == nil || target.OwnerUserID != requestedBy {
		return ErrNotFound
	}
	return nil
}

// OnAddressEdited applies the edit consequence to the owning profile and
// reports whether it unconfirmed p.
func (Guard) OnAddressEdited(p *models.Profile) bool {
	switch p.Kind {
	case models.KindDriver:
		if !p.Confirmed {
			return false
		}
		p.Confirmed = false
		return true
	case models.KindUser:
		return false
	default:
		// storage never holds other kinds
		return false
	}
}
