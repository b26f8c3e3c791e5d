package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aluiziolira/go-rental-cars/gateway"
	"github.com/aluiziolira/go-rental-cars/models"
	"github.com/aluiziolira/go-rental-cars/store"
	"github.com/gorilla/mux"
)

// App wires the catalog store and gateway to the HTTP surface consumed by
// the frontend.
type App struct {
	Router  *mux.Router
	Store   *store.Store
	Gateway *gateway.Client
}

// NewApp builds the router over the given store and gateway.
func NewApp(st *store.Store, gw *gateway.Client) *App {
	a := &App{
		Router:  mux.NewRouter(),
		Store:   st,
		Gateway: gw,
	}
	a.Router.StrictSlash(true)
	a.Router.Use(contentTypeApplicationJSONMiddleware)

	a.Router.HandleFunc("/catalog", a.CatalogHandler).Methods("GET")
	a.Router.HandleFunc("/catalog/{id}", a.CarHandler).Methods("GET")
	a.Router.HandleFunc("/brands", a.BrandsHandler).Methods("GET")
	a.Router.HandleFunc("/inquiries", a.InquiryHandler).Methods("POST")
	a.Router.HandleFunc("/favorites", a.FavoritesHandler).Methods("GET")
	a.Router.HandleFunc("/favorites/{id}", a.AddFavoriteHandler).Methods("POST")
	a.Router.HandleFunc("/favorites/{id}", a.RemoveFavoriteHandler).Methods("DELETE")
	return a
}

func contentTypeApplicationJSONMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// CatalogHandler drives the store: a plain request is a fresh load for the
// given filters, `more=1` is an incremental load for the current ones.
// Either way the response is the store snapshot; a failed load degrades to
// the empty snapshot rather than an error page.
func (a *App) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("more") == "1" {
		if err := a.Store.LoadMoreCars(r.Context()); err != nil {
			slog.Error("load more failed", slog.Any("error", err))
		}
	} else {
		filters := models.Filters{
			Brand:       query.Get("brand"),
			Price:       query.Get("price"),
			MileageFrom: query.Get("mileageFrom"),
			MileageTo:   query.Get("mileageTo"),
		}
		page := 1
		if raw := query.Get("page"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				page = parsed
			}
		}
		if err := a.Store.LoadCars(r.Context(), filters, page); err != nil {
			slog.Error("catalog load failed", slog.Any("error", err))
		}
	}

	writeJSON(w, http.StatusOK, a.Store.Snapshot())
}

func (a *App) CarHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	car, err := a.Store.GetCar(r.Context(), vars["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "car not found"})
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (a *App) BrandsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Brands())
}

func (a *App) InquiryHandler(w http.ResponseWriter, r *http.Request) {
	var inquiry models.Inquiry
	if err := json.NewDecoder(r.Body).Decode(&inquiry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid inquiry body"})
		return
	}
	if inquiry.CarID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "carId is required"})
		return
	}

	if err := a.Gateway.SubmitInquiry(r.Context(), inquiry); err != nil {
		slog.Error("inquiry submission failed", slog.Any("error", err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "inquiry submission failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) FavoritesHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := a.Store.FavoriteIDs()
	if err != nil {
		slog.Error("list favorites failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "favorites unavailable"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (a *App) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := a.Store.AddToFavorites(vars["id"]); err != nil {
		slog.Error("add favorite failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "favorites unavailable"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := a.Store.RemoveFromFavorites(vars["id"]); err != nil {
		slog.Error("remove favorite failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "favorites unavailable"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", slog.Any("error", err))
	}
}
