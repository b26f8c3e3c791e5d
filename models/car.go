// Package models defines data structures for the rental catalog.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Car is the canonical vehicle record used by the store and view layer.
type Car struct {
	ID               string     `json:"id"`
	Year             int        `json:"year"`
	Make             string     `json:"make"`
	Model            string     `json:"model"`
	Type             string     `json:"type"`
	Img              string     `json:"img"`
	Description      string     `json:"description"`
	FuelConsumption  string     `json:"fuelConsumption"`
	EngineSize       string     `json:"engineSize"`
	Accessories      []string   `json:"accessories"`
	Functionalities  []string   `json:"functionalities"`
	RentalPrice      Price      `json:"rentalPrice"`
	RentalCompany    string     `json:"rentalCompany"`
	Address          string     `json:"address"`
	RentalConditions Conditions `json:"rentalConditions"`
	Mileage          int        `json:"mileage"`
}

// Price carries the rental price as a string. The remote service sends it
// either as a bare number or as a currency-prefixed string ("$40").
type Price string

// UnmarshalJSON accepts both numeric and string price values.
func (p *Price) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*p = Price(asString)
		return nil
	}

	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*p = Price(strconv.FormatFloat(asNumber, 'f', -1, 64))
	return nil
}

// Numeric parses the price, stripping a leading currency symbol.
func (p Price) Numeric() (float64, bool) {
	trimmed := strings.TrimSpace(string(p))
	trimmed = strings.TrimLeft(trimmed, "$€£₴")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Conditions holds the rental conditions. The remote service sends them
// either as a list of strings or as one newline-delimited string.
type Conditions []string

// UnmarshalJSON accepts both the list and the newline-delimited forms.
func (c *Conditions) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*c = asList
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}

	var out []string
	for _, line := range strings.Split(asString, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	*c = out
	return nil
}

// Filters holds the catalog filter criteria. All fields are always present;
// the empty string means the criterion imposes no constraint.
type Filters struct {
	Brand       string `json:"brand"`
	Price       string `json:"price"`
	MileageFrom string `json:"mileageFrom"`
	MileageTo   string `json:"mileageTo"`
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Brand       *string
	Price       *string
	MileageFrom *string
	MileageTo   *string
}

// Inquiry is a booking request submitted for a single vehicle.
type Inquiry struct {
	CarID   string `json:"carId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}
