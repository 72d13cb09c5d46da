package models

// Province is static reference geography.
type Province struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// City belongs to a Province and is referenced by addresses.
type City struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	ProvinceID int64  `json:"province_id"`
}

// Address is a postal address owned by exactly one profile.
// OwnerUserID and OwnerKind are denormalised from the owning profile when the
// address is read back from storage; they are never written.
type Address struct {
	ID         int64  `json:"id"`
	OwnerID    int64  `json:"owner"`
	CityID     int64  `json:"city"`
	Line       string `json:"address"`
	PostalCode string `json:"postal_code,omitempty"`

	OwnerUserID CallerID `json:"-"`
	OwnerKind   Kind     `json:"-"`
}

// AddressView is the listing shape: city by name rather than id.
type AddressView struct {
	ID         int64  `json:"id"`
	City       string `json:"city"`
	Line       string `json:"address"`
	PostalCode string `json:"postal_code"`
}
