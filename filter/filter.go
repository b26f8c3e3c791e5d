// Package filter re-applies catalog filter criteria on the client side.
// The remote service does not reliably honor its query parameters, so an
// already-fetched list is trimmed against the original criteria before it
// is shown.
package filter

import (
	"strconv"
	"strings"

	"github.com/aluiziolira/go-rental-cars/models"
)

// Apply returns the cars matching every active criterion in f. It is pure:
// the input slice is never mutated.
func Apply(cars []models.Car, f models.Filters) []models.Car {
	out := make([]models.Car, 0, len(cars))
	for _, car := range cars {
		if Matches(car, f) {
			out = append(out, car)
		}
	}
	return out
}

// Matches reports whether car satisfies every active criterion in f.
// Empty-string criteria impose no constraint.
func Matches(car models.Car, f models.Filters) bool {
	return matchBrand(car, f.Brand) &&
		matchPrice(car, f.Price) &&
		matchMileage(car, f.MileageFrom, f.MileageTo)
}

// Brand is a whitespace-trimmed, case-insensitive exact match, not a
// substring match: "bmw" matches "BMW " but not "BMW 3 Series".
func matchBrand(car models.Car, brand string) bool {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(car.Make), brand)
}

// An unparseable vehicle price fails an active price filter rather than
// crashing or passing through.
func matchPrice(car models.Car, maxPrice string) bool {
	maxPrice = strings.TrimSpace(maxPrice)
	if maxPrice == "" {
		return true
	}
	limit, err := strconv.ParseFloat(maxPrice, 64)
	if err != nil {
		return true
	}
	price, ok := car.RentalPrice.Numeric()
	if !ok {
		return false
	}
	return price <= limit
}

func matchMileage(car models.Car, from, to string) bool {
	if min, ok := parseBound(from); ok && car.Mileage < min {
		return false
	}
	if max, ok := parseBound(to); ok && car.Mileage > max {
		return false
	}
	return true
}

func parseBound(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	bound, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return bound, true
}
