// Package store holds the catalog state on behalf of the view layer and
// orchestrates the gateway, normalizer, and filter reconciliation.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aluiziolira/go-rental-cars/config"
	"github.com/aluiziolira/go-rental-cars/favorites"
	"github.com/aluiziolira/go-rental-cars/filter"
	"github.com/aluiziolira/go-rental-cars/models"
	"github.com/aluiziolira/go-rental-cars/normalize"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Gateway is the remote catalog surface the store depends on.
type Gateway interface {
	ListCars(ctx context.Context, filters models.Filters, page int) (json.RawMessage, error)
	GetCar(ctx context.Context, id string) (json.RawMessage, error)
}

// Snapshot is the published catalog state consumed by the view layer.
type Snapshot struct {
	Cars         []models.Car   `json:"cars"`
	FilteredCars []models.Car   `json:"filteredCars"`
	Filters      models.Filters `json:"filters"`
	Page         int            `json:"page"`
	IsLoading    bool           `json:"isLoading"`
	HasMore      bool           `json:"hasMore"`
}

// Brands the filter UI offers before any catalog data has been seen.
var seedBrands = []string{
	"Aston Martin", "Audi", "BMW", "Bentley", "Buick", "Chevrolet",
	"Chrysler", "GMC", "HUMMER", "Hyundai", "Kia", "Lamborghini", "Land",
	"Lincoln", "MINI", "Mercedes-Benz", "Mitsubishi", "Nissan", "Pontiac",
	"Subaru", "Volvo",
}

// Store is an injectable catalog state container. It is constructed once
// and passed down; all mutation goes through its methods.
type Store struct {
	cfg        *config.Config
	gw         Gateway
	fav        *favorites.Set
	normalizer *normalize.Normalizer
	detail     *lru.Cache[string, models.Car]

	mu           sync.Mutex
	cars         []models.Car
	filteredCars []models.Car
	filters      models.Filters
	page         int
	isLoading    bool
	hasMore      bool
	generation   uint64
	seenMakes    map[string]struct{}

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds a store over the given gateway and favorites set.
func New(gw Gateway, fav *favorites.Set, cfg *config.Config) (*Store, error) {
	detail, err := lru.New[string, models.Car](cfg.DetailCacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{
		cfg:        cfg,
		gw:         gw,
		fav:        fav,
		normalizer: normalize.New(cfg.AssetBaseURL, cfg.PlaceholderImage),
		detail:     detail,
		page:       1,
		hasMore:    true,
		seenMakes:  make(map[string]struct{}),
		subs:       make(map[int]func(Snapshot)),
	}, nil
}

// Subscribe registers fn to be called with a snapshot after every state
// change. The returned function unsubscribes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// LoadCars performs a fresh load: prior results are discarded and
// pagination restarts before the network is awaited: a fresh load always
// clears the screen. Of two overlapping fresh loads only the newest one
// writes; a stale response is discarded.
//
// When the brand criterion is set, up to Config.BrandPrefetchPages
// consecutive pages are fetched and concatenated to compensate for the
// server's unreliable brand filtering combined with paging, stopping early
// once a page comes back short.
//
// On fetch failure the store degrades to an empty list with loading
// cleared, and the error is returned so callers can still surface it.
func (s *Store) LoadCars(ctx context.Context, filters models.Filters, page int) error {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.filters = filters
	s.cars = nil
	s.filteredCars = nil
	s.page = 1
	s.hasMore = true
	s.isLoading = true
	s.mu.Unlock()
	s.notify()

	slog.Debug("fresh catalog load",
		slog.String("brand", filters.Brand),
		slog.Int("page", page),
	)

	records, lastCount, err := s.fetchPages(ctx, filters, page)
	if err != nil {
		s.failSoft(gen, err)
		return err
	}

	cars := s.normalizer.List(records)
	shown := filter.Apply(cars, filters)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		slog.Debug("discarding stale fresh-load result")
		return nil
	}
	s.cars = cars
	s.filteredCars = shown
	s.page = page
	s.hasMore = lastCount >= s.cfg.PageSize
	s.isLoading = false
	s.observeMakesLocked(cars)
	s.mu.Unlock()
	s.notify()
	return nil
}

// LoadMoreCars fetches the next page for the current filters and appends
// it. It is a no-op while a load is in flight or when no more data is
// expected.
func (s *Store) LoadMoreCars(ctx context.Context) error {
	s.mu.Lock()
	if s.isLoading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	filters := s.filters
	next := s.page + 1
	s.isLoading = true
	s.mu.Unlock()
	s.notify()

	payload, err := s.gw.ListCars(ctx, filters, next)
	if err != nil {
		s.mu.Lock()
		if gen == s.generation {
			s.isLoading = false
		}
		s.mu.Unlock()
		s.notify()
		slog.Error("load more failed", slog.Any("error", err))
		return err
	}

	records := normalize.ExtractList(payload)
	cars := s.normalizer.List(records)
	shown := filter.Apply(cars, filters)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		slog.Debug("discarding stale load-more result")
		return nil
	}
	s.cars = append(s.cars, cars...)
	s.filteredCars = append(s.filteredCars, shown...)
	s.page = next
	s.hasMore = len(records) >= s.cfg.PageSize
	s.isLoading = false
	s.observeMakesLocked(cars)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetFilters merges a partial update into the current criteria without
// fetching.
func (s *Store) SetFilters(patch models.FilterPatch) {
	s.mu.Lock()
	if patch.Brand != nil {
		s.filters.Brand = *patch.Brand
	}
	if patch.Price != nil {
		s.filters.Price = *patch.Price
	}
	if patch.MileageFrom != nil {
		s.filters.MileageFrom = *patch.MileageFrom
	}
	if patch.MileageTo != nil {
		s.filters.MileageTo = *patch.MileageTo
	}
	s.mu.Unlock()
	s.notify()
}

// ResetFilters restores the all-empty default criteria without fetching;
// callers follow up with LoadCars.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	s.filters = models.Filters{}
	s.mu.Unlock()
	s.notify()
}

// Filters returns the current filter criteria.
func (s *Store) Filters() models.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Snapshot returns a copy of the published catalog state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// GetCar fetches and normalizes a single record, serving repeats from an
// in-process LRU cache. A nil car means the vehicle could not be fetched;
// the error says why, so the caller can choose between a "not found" view
// and surfacing the failure.
func (s *Store) GetCar(ctx context.Context, id string) (*models.Car, error) {
	if cached, ok := s.detail.Get(id); ok {
		return &cached, nil
	}

	payload, err := s.gw.GetCar(ctx, id)
	if err != nil {
		slog.Error("detail fetch failed", slog.String("id", id), slog.Any("error", err))
		return nil, err
	}

	car := s.normalizer.Car(normalize.ExtractDetail(payload))
	s.detail.Add(id, car)
	return &car, nil
}

// AddToFavorites adds a vehicle id to the persistent favorites set.
func (s *Store) AddToFavorites(id string) error {
	return s.fav.Add(id)
}

// RemoveFromFavorites removes a vehicle id from the favorites set.
func (s *Store) RemoveFromFavorites(id string) error {
	return s.fav.Remove(id)
}

// IsFavorite reports whether a vehicle id is favorited.
func (s *Store) IsFavorite(id string) (bool, error) {
	return s.fav.Contains(id)
}

// FavoriteIDs returns all favorited vehicle ids.
func (s *Store) FavoriteIDs() ([]string, error) {
	return s.fav.IDs()
}

// Brands returns the sorted union of the seed brand list and every make
// observed in loaded catalog data.
func (s *Store) Brands() []string {
	s.mu.Lock()
	union := make(map[string]struct{}, len(seedBrands)+len(s.seenMakes))
	for _, brand := range seedBrands {
		union[brand] = struct{}{}
	}
	for name := range s.seenMakes {
		union[name] = struct{}{}
	}
	s.mu.Unlock()

	out := make([]string, 0, len(union))
	for brand := range union {
		out = append(out, brand)
	}
	sort.Strings(out)
	return out
}

// fetchPages fetches one page, or several consecutive ones for a brand
// prefetch. A failure after the first page keeps what was fetched and
// leaves lastCount at the previous (full) page, so hasMore stays true and
// a later load can retry the missing pages.
func (s *Store) fetchPages(ctx context.Context, filters models.Filters, startPage int) ([]json.RawMessage, int, error) {
	maxPages := 1
	if strings.TrimSpace(filters.Brand) != "" {
		maxPages = s.cfg.BrandPrefetchPages
	}

	var records []json.RawMessage
	lastCount := 0
	for i := 0; i < maxPages; i++ {
		payload, err := s.gw.ListCars(ctx, filters, startPage+i)
		if err != nil {
			if i == 0 {
				return nil, 0, err
			}
			// Keep the pages already fetched; the prefetch is best-effort.
			slog.Warn("brand prefetch stopped early",
				slog.Int("page", startPage+i),
				slog.Any("error", err),
			)
			break
		}
		page := normalize.ExtractList(payload)
		records = append(records, page...)
		lastCount = len(page)
		if len(page) < s.cfg.PageSize {
			break
		}
	}
	return records, lastCount, nil
}

func (s *Store) failSoft(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.cars = []models.Car{}
	s.filteredCars = []models.Car{}
	s.hasMore = false
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
	slog.Error("catalog load failed, degrading to empty list", slog.Any("error", err))
}

func (s *Store) observeMakesLocked(cars []models.Car) {
	for _, car := range cars {
		if name := strings.TrimSpace(car.Make); name != "" {
			s.seenMakes[name] = struct{}{}
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	cars := make([]models.Car, len(s.cars))
	copy(cars, s.cars)
	filtered := make([]models.Car, len(s.filteredCars))
	copy(filtered, s.filteredCars)

	return Snapshot{
		Cars:         cars,
		FilteredCars: filtered,
		Filters:      s.filters,
		Page:         s.page,
		IsLoading:    s.isLoading,
		HasMore:      s.hasMore,
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
