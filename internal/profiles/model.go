package profiles

import "profile-service/internal/models"

// CreateRequest is the body of a profile creation. Confirmation is never
// taken from the caller.
type CreateRequest struct {
	FirstName   string `json:"first_name" validate:"required,name"`
	LastName    string `json:"last_name" validate:"required,max=32"`
	PhoneNumber string `json:"phone_number" validate:"required,max=16,phone"`
	NationalID  string `json:"national_id" validate:"omitempty,max=16"`
	Avatar      string `json:"avatar" validate:"omitempty,max=255"`
	Confirmed   *bool  `json:"is_confirmed"`
}

func (r CreateRequest) profile(uid models.CallerID, kind models.Kind) *models.Profile {
	p := &models.Profile{
		UserID:      uid,
		Kind:        kind,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		NationalID:  r.NationalID,
		Avatar:      r.Avatar,
	}
	if r.Confirmed != nil {
		p.Confirmed = *r.Confirmed
	}
	return p
}

// UpdateRequest is a partial update. An empty string clears an optional field.
type UpdateRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,name"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=32"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=16,phone"`
	NationalID  *string `json:"national_id" validate:"omitempty,max=16"`
	Avatar      *string `json:"avatar" validate:"omitempty,max=255"`
}

func (r UpdateRequest) apply(p *models.Profile) {
	if r.FirstName != nil {
		p.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		p.LastName = *r.LastName
	}
	if r.PhoneNumber != nil {
		p.PhoneNumber = *r.PhoneNumber
	}
	if r.NationalID != nil {
		p.NationalID = *r.NationalID
	}
	if r.Avatar != nil {
		p.Avatar = *r.Avatar
	}
}
