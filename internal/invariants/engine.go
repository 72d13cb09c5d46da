// Package invariants enforces the rules every profile and vehicle write must
// satisfy before it reaches storage.
package invariants

import (
	"strings"

	"profile-service/internal/models"
)

// Allowlist answers vehicle membership questions. *allowlist.Store implements it.
type Allowlist interface {
	ContainsModel(string) bool
	ContainsColor(string) bool
}

// Engine is stateless apart from the allow-lists it was built with.
type Engine struct {
	allow Allowlist
}

// NewEngine returns an Engine validating vehicles against allow.
func NewEngine(allow Allowlist) *Engine {
	return &Engine{allow: allow}
}

// ValidateForSave runs before every create and update of a profile.
func (e *Engine) ValidateForSave(p *models.Profile) error {
	switch p.Kind {
	case models.KindDriver:
		if blank(p.Avatar) {
			return missing("avatar")
		}
		if blank(p.NationalID) {
			return missing("national_id")
		}
		return nil
	case models.KindUser:
		return nil
	default:
		return InvalidField("kind")
	}
}

// PrepareForCreate applies the confirmation rule to a profile about to be
// inserted. The caller-supplied flag is ignored.
func (e *Engine) PrepareForCreate(p *models.Profile) {
	switch p.Kind {
	case models.KindUser:
		p.Confirmed = true
	case models.KindDriver:
		p.Confirmed = false
	}
}

// ValidateCar runs before every create and update of a vehicle, against the
// allow-lists as loaded at startup.
func (e *Engine) ValidateCar(c *models.Car) error {
	if !e.allow.ContainsModel(c.Model) {
		return notAllowed("model", c.Model)
	}
	if !e.allow.ContainsColor(c.Color) {
		return notAllowed("color", c.Color)
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
