package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aluiziolira/go-rental-cars/config"
	"github.com/aluiziolira/go-rental-cars/favorites"
	"github.com/aluiziolira/go-rental-cars/gateway"
	"github.com/aluiziolira/go-rental-cars/store"
	"github.com/jarcoal/httpmock"
)

func newTestApp(t *testing.T) (*App, *httpmock.MockTransport) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://catalog.test"
	cfg.PageSize = 3

	client, err := gateway.NewClient(cfg)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	transport := httpmock.NewMockTransport()
	client.WithTransport(transport)

	fav, err := favorites.Open(filepath.Join(t.TempDir(), "favorites.db"))
	if err != nil {
		t.Fatalf("open favorites: %v", err)
	}
	t.Cleanup(func() { fav.Close() })

	st, err := store.New(client, fav, cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewApp(st, client), transport
}

func carsPage(page, count int) string {
	records := make([]string, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, fmt.Sprintf(
			`{"id":"p%d-%d","brand":"Audi","rentalPrice":"40","mileage":5000}`, page, i))
	}
	return `{"cars":[` + strings.Join(records, ",") + `]}`
}

func pagedResponder(counts map[int]int) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		return httpmock.NewStringResponse(http.StatusOK, carsPage(page, counts[page])), nil
	}
}

func getSnapshot(t *testing.T, app *App, target string) store.Snapshot {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}

	var snap store.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestCatalogHandlerReturnsSnapshot(t *testing.T) {
	app, transport := newTestApp(t)
	transport.RegisterResponder("GET", "http://catalog.test/api/cars",
		pagedResponder(map[int]int{1: 3, 2: 2}))

	snap := getSnapshot(t, app, "/catalog")
	if len(snap.FilteredCars) != 3 {
		t.Fatalf("filtered cars = %d, want 3", len(snap.FilteredCars))
	}
	if snap.FilteredCars[0].Make != "Audi" {
		t.Fatalf("make = %q, want Audi", snap.FilteredCars[0].Make)
	}
	if snap.Page != 1 || !snap.HasMore || snap.IsLoading {
		t.Fatalf("snapshot = page %d hasMore %v loading %v, want 1 true false",
			snap.Page, snap.HasMore, snap.IsLoading)
	}
}

func TestCatalogHandlerMoreLoadsNextPage(t *testing.T) {
	app, transport := newTestApp(t)
	transport.RegisterResponder("GET", "http://catalog.test/api/cars",
		pagedResponder(map[int]int{1: 3, 2: 2}))

	if snap := getSnapshot(t, app, "/catalog"); len(snap.FilteredCars) != 3 {
		t.Fatalf("fresh load = %d cars, want 3", len(snap.FilteredCars))
	}

	snap := getSnapshot(t, app, "/catalog?more=1")
	if len(snap.FilteredCars) != 5 {
		t.Fatalf("filtered cars = %d, want 5 after load more", len(snap.FilteredCars))
	}
	if snap.Page != 2 {
		t.Fatalf("page = %d, want 2", snap.Page)
	}
	if snap.HasMore {
		t.Fatalf("hasMore should be false after a short page")
	}
}

func TestCatalogHandlerAppliesQueryFilters(t *testing.T) {
	app, transport := newTestApp(t)
	transport.RegisterResponder("GET", "http://catalog.test/api/cars",
		httpmock.NewStringResponder(http.StatusOK,
			`{"cars":[{"id":"1","brand":"Audi","rentalPrice":"40","mileage":5000},`+
				`{"id":"2","brand":"BMW","rentalPrice":"60","mileage":5000}]}`))

	snap := getSnapshot(t, app, "/catalog?brand=BMW")
	if snap.Filters.Brand != "BMW" {
		t.Fatalf("filters = %+v, want brand BMW", snap.Filters)
	}
	if len(snap.FilteredCars) != 1 || snap.FilteredCars[0].Make != "BMW" {
		t.Fatalf("filtered cars = %+v, want only the BMW", snap.FilteredCars)
	}
}

func TestCarHandlerNotFound(t *testing.T) {
	app, transport := newTestApp(t)
	transport.RegisterResponder("GET", "http://catalog.test/api/cars/42",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))
	transport.RegisterResponder("GET", "http://catalog.test/cars/42",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	req := httptest.NewRequest(http.MethodGet, "/catalog/42", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
