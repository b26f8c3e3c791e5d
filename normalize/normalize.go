// Package normalize converts the catalog API's heterogeneous response
// shapes into canonical vehicle records.
package normalize

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-rental-cars/models"
)

// listShape extracts the record array from one known envelope layout.
type listShape struct {
	name    string
	extract func([]byte) ([]json.RawMessage, bool)
}

// Shapes are tried in order; the first match wins. New envelope layouts go
// at the end of this list.
var listShapes = []listShape{
	{name: "array", extract: bareArray},
	{name: "data", extract: keyedArray("data")},
	{name: "cars", extract: keyedArray("cars")},
	{name: "items", extract: keyedArray("items")},
}

// ExtractList pulls the raw record array out of a list response. It returns
// an empty slice when no known shape matches, never an error.
func ExtractList(payload json.RawMessage) []json.RawMessage {
	for _, shape := range listShapes {
		if records, ok := shape.extract(payload); ok {
			return records
		}
	}
	slog.Debug("list payload matched no known shape", slog.Int("bytes", len(payload)))
	return []json.RawMessage{}
}

// ExtractDetail pulls the record object out of a detail response, trying
// {data}, {car}, then the bare object.
func ExtractDetail(payload json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
		Car  json.RawMessage `json:"car"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if isObject(envelope.Data) {
			return envelope.Data
		}
		if isObject(envelope.Car) {
			return envelope.Car
		}
	}
	return payload
}

func bareArray(payload []byte) ([]json.RawMessage, bool) {
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false
	}
	return records, true
}

func keyedArray(key string) func([]byte) ([]json.RawMessage, bool) {
	return func(payload []byte) ([]json.RawMessage, bool) {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, false
		}
		value, ok := envelope[key]
		if !ok {
			return nil, false
		}
		var records []json.RawMessage
		if err := json.Unmarshal(value, &records); err != nil {
			return nil, false
		}
		return records, true
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

// Normalizer maps raw catalog records onto canonical vehicle records.
type Normalizer struct {
	assetBaseURL     string
	placeholderImage string
}

// New builds a normalizer that repairs image URLs against assetBaseURL and
// substitutes placeholderImage when a record carries no image at all.
func New(assetBaseURL, placeholderImage string) *Normalizer {
	return &Normalizer{
		assetBaseURL:     strings.TrimRight(assetBaseURL, "/"),
		placeholderImage: placeholderImage,
	}
}

// Car maps one raw record to the canonical form. It never fails: fields the
// record lacks surface as zero values, and an undecodable record yields the
// zero Car.
func (n *Normalizer) Car(raw json.RawMessage) models.Car {
	var record struct {
		models.Car
		Brand string `json:"brand"`
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		slog.Debug("undecodable catalog record", slog.Any("error", err))
	}

	car := record.Car
	if car.Make == "" {
		car.Make = record.Brand
	}
	car.Img = n.ResolveImage(car.Img)
	return car
}

// List maps a slice of raw records to canonical form. Records without an
// identifier are dropped: every canonical record carries a non-empty id.
func (n *Normalizer) List(raw []json.RawMessage) []models.Car {
	cars := make([]models.Car, 0, len(raw))
	for _, record := range raw {
		car := n.Car(record)
		if car.ID == "" {
			continue
		}
		cars = append(cars, car)
	}
	return cars
}

// ResolveImage rewrites an image reference into an absolute URL.
// Precedence: absolute URLs pass through; protocol-relative URLs gain a
// scheme; anything else is a path under the asset base; an absent image
// falls back to the placeholder.
func (n *Normalizer) ResolveImage(img string) string {
	img = strings.TrimSpace(img)
	if img == "" {
		img = n.placeholderImage
	}
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}
	if strings.HasPrefix(img, "//") {
		return "https:" + img
	}
	return n.assetBaseURL + "/" + strings.TrimLeft(img, "/")
}

// FormatMileage renders a mileage value with space-separated thousands
// groups ("5000" -> "5 000") for display.
func FormatMileage(mileage int) string {
	digits := []byte(strings.TrimPrefix(strconv.Itoa(mileage), "-"))
	negative := mileage < 0

	var out strings.Builder
	if negative {
		out.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		out.Write(digits[:lead])
		if len(digits) > lead {
			out.WriteByte(' ')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		out.Write(digits[i : i+3])
		if i+3 < len(digits) {
			out.WriteByte(' ')
		}
	}
	return out.String()
}
