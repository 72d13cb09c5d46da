package addresses

import "profile-service/internal/models"

// AddRequest is the body of an address creation.
type AddRequest struct {
	CityID     int64  `json:"city" validate:"required,gt=0"`
	Line       string `json:"address" validate:"required,max=255"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=16,postal_code"`
}

// EditRequest is a partial update; absent fields keep their value.
type EditRequest struct {
	CityID     *int64  `json:"city" validate:"omitempty,gt=0"`
	Line       *string `json:"address" validate:"omitempty,min=1,max=255"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=16,postal_code"`
}

func (e EditRequest) apply(a *models.Address) {
	if e.CityID != nil {
		a.CityID = *e.CityID
	}
	if e.Line != nil {
		a.Line = *e.Line
	}
	if e.PostalCode != nil {
		a.PostalCode = *e.PostalCode
	}
}

// EditResult reports what an edit did to the owning profile.
type EditResult struct {
	Address    *models.Address
	OwnerKind  models.Kind
	Downgraded bool

	owner *models.Profile
}
