package valueobject

import (
	"strings"

	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

type LocationType string

const (
	LocationOnSite LocationType = "on_site"
	LocationRemote LocationType = "remote"
	LocationHybrid LocationType = "hybrid"
)

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

func (a Address) IsEmpty() bool {
	return a == Address{}
}

type Location struct {
	Type    LocationType `json:"type"`
	Address *Address     `json:"address,omitempty"`
}

// NewLocation проверяет тип локации; для on_site адрес с городом обязателен.
func NewLocation(locationType string, address *Address) (Location, error) {
	t := LocationType(locationType)
	switch t {
	case LocationOnSite, LocationRemote, LocationHybrid:
	default:
		return Location{}, apperror.Validation("некорректный тип локации",
			apperror.FieldError{Field: "location.type", Message: "допустимые значения: on_site, remote, hybrid"})
	}

	if address != nil && address.IsEmpty() {
		address = nil
	}

	if t == LocationOnSite {
		if address == nil {
			return Location{}, apperror.Validation("для выезда на место нужен адрес",
				apperror.FieldError{Field: "location.address", Message: "обязателен для on_site"})
		}
		var details []apperror.FieldError
		if strings.TrimSpace(address.Street) == "" {
			details = append(details, apperror.FieldError{Field: "location.address.street", Message: "обязательное поле"})
		}
		if strings.TrimSpace(address.City) == "" {
			details = append(details, apperror.FieldError{Field: "location.address.city", Message: "обязательное поле"})
		}
		if strings.TrimSpace(address.State) == "" {
			details = append(details, apperror.FieldError{Field: "location.address.state", Message: "обязательное поле"})
		}
		if len(details) > 0 {
			return Location{}, apperror.Validation("адрес заполнен не полностью", details...)
		}
	}

	return Location{Type: t, Address: address}, nil
}

// City возвращает город или пустую строку, если адреса нет.
func (l Location) City() string {
	if l.Address == nil {
		return ""
	}
	return l.Address.City
}
