package filter

import (
	"testing"

	"github.com/aluiziolira/go-rental-cars/models"
)

func car(make string, price models.Price, mileage int) models.Car {
	return models.Car{ID: make, Make: make, RentalPrice: price, Mileage: mileage}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		car     models.Car
		filters models.Filters
		want    bool
	}{
		{
			name:    "empty filters match everything",
			car:     car("Audi", "40", 5000),
			filters: models.Filters{},
			want:    true,
		},
		{
			name:    "brand exact match case-insensitive",
			car:     car("BMW ", "40", 5000),
			filters: models.Filters{Brand: "bmw"},
			want:    true,
		},
		{
			name:    "brand prefix is not a match",
			car:     car("BMW", "40", 5000),
			filters: models.Filters{Brand: "BM"},
			want:    false,
		},
		{
			name:    "brand filter trimmed",
			car:     car("Audi", "40", 5000),
			filters: models.Filters{Brand: "  audi  "},
			want:    true,
		},
		{
			name:    "price at the limit matches",
			car:     car("Audi", "40", 5000),
			filters: models.Filters{Price: "40"},
			want:    true,
		},
		{
			name:    "price above the limit fails",
			car:     car("Audi", "45", 5000),
			filters: models.Filters{Price: "40"},
			want:    false,
		},
		{
			name:    "currency-prefixed price parses",
			car:     car("Audi", "$35", 5000),
			filters: models.Filters{Price: "40"},
			want:    true,
		},
		{
			name:    "unparseable vehicle price fails an active price filter",
			car:     car("Audi", "call us", 5000),
			filters: models.Filters{Price: "40"},
			want:    false,
		},
		{
			name:    "unparseable vehicle price passes without a price filter",
			car:     car("Audi", "call us", 5000),
			filters: models.Filters{},
			want:    true,
		},
		{
			name:    "mileage inside bounds",
			car:     car("Audi", "40", 5000),
			filters: models.Filters{MileageFrom: "1000", MileageTo: "9000"},
			want:    true,
		},
		{
			name:    "mileage below lower bound",
			car:     car("Audi", "40", 500),
			filters: models.Filters{MileageFrom: "1000"},
			want:    false,
		},
		{
			name:    "mileage above upper bound",
			car:     car("Audi", "40", 9500),
			filters: models.Filters{MileageTo: "9000"},
			want:    false,
		},
		{
			name:    "mileage bounds inclusive",
			car:     car("Audi", "40", 9000),
			filters: models.Filters{MileageFrom: "9000", MileageTo: "9000"},
			want:    true,
		},
		{
			name:    "criteria combine with AND",
			car:     car("Audi", "40", 5000),
			filters: models.Filters{Brand: "Audi", Price: "40", MileageTo: "4000"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.car, tt.filters); got != tt.want {
				t.Fatalf("Matches(%+v, %+v) = %v, want %v", tt.car, tt.filters, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	cars := []models.Car{
		car("Audi", "40", 5000),
		car("BMW", "60", 15000),
		car("Audi", "90", 25000),
	}

	filtered := Apply(cars, models.Filters{Brand: "audi", Price: "50"})
	if len(filtered) != 1 {
		t.Fatalf("filtered %d cars, want 1", len(filtered))
	}
	if filtered[0].Make != "Audi" || filtered[0].RentalPrice != "40" {
		t.Fatalf("unexpected survivor: %+v", filtered[0])
	}

	if len(cars) != 3 {
		t.Fatalf("input slice mutated")
	}
}

func TestApplyNoActiveCriteria(t *testing.T) {
	cars := []models.Car{car("Audi", "40", 5000), car("BMW", "60", 15000)}
	filtered := Apply(cars, models.Filters{})
	if len(filtered) != len(cars) {
		t.Fatalf("filtered %d cars, want %d", len(filtered), len(cars))
	}
}
