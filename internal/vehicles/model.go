package vehicles

import "profile-service/internal/models"

// CarRequest is the body of a vehicle creation.
type CarRequest struct {
	PlateNumber string `json:"plate_number" validate:"required,max=16"`
	Model       string `json:"model" validate:"required,max=64"`
	Color       string `json:"color" validate:"required,max=16"`
}

// CarUpdate is a partial vehicle update.
type CarUpdate struct {
	PlateNumber *string `json:"plate_number" validate:"omitempty,min=1,max=16"`
	Model       *string `json:"model" validate:"omitempty,min=1,max=64"`
	Color       *string `json:"color" validate:"omitempty,min=1,max=16"`
}

func (u CarUpdate) apply(c *models.Car) {
	if u.PlateNumber != nil {
		c.PlateNumber = *u.PlateNumber
	}
	if u.Model != nil {
		c.Model = *u.Model
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
}

// Options lists the values a vehicle may use.
type Options struct {
	Models []string `json:"models"`
	Colors []string `json:"colors"`
}
