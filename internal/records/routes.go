package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/lead-agent/internal/audit"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// RegisterRoutes mounts attendance endpoints under /api/attendances on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/attendances", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{id}", handleGet(store))
		r.Patch("/{id}/status", handleUpdateStatus(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{}

		if v := q.Get("priority"); v != "" {
			p, ok := leads.ParsePriority(v)
			if !ok {
				writeError(w, http.StatusBadRequest, "priority must be low, medium or high")
				return
			}
			filter.Priority = p
		}
		if v := q.Get("status"); v != "" {
			st, err := ParseStatus(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			filter.Status = st
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}

		list, err := store.List(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"attendances": list, "total": len(list)})
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "attendance not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

type createRequest struct {
	Lead        leads.Lead   `json:"lead"`
	Turns       []leads.Turn `json:"turns"`
	Facts       leads.Facts  `json:"facts"`
	Score       *float64     `json:"score"`
	Priority    string       `json:"priority"`
	HasInterest *bool        `json:"has_interest"`
	HandoffLink string       `json:"handoff_link"`
	Status      string       `json:"status"`
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Lead.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		a := Attendance{
			Lead:           req.Lead,
			Turns:          req.Turns,
			Facts:          req.Facts,
			Classification: leads.Classification{Score: 5, Priority: leads.PriorityMedium},
			HasInterest:    true,
			HandoffLink:    req.HandoffLink,
		}
		if req.Score != nil {
			if *req.Score < 1 || *req.Score > 10 {
				writeError(w, http.StatusBadRequest, "score must be between 1 and 10")
				return
			}
			a.Classification.Score = *req.Score
		}
		if req.Priority != "" {
			p, ok := leads.ParsePriority(req.Priority)
			if !ok {
				writeError(w, http.StatusBadRequest, "priority must be low, medium or high")
				return
			}
			a.Classification.Priority = p
		}
		if req.HasInterest != nil {
			a.HasInterest = *req.HasInterest
		}
		if req.Status != "" {
			st, err := ParseStatus(req.Status)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			a.Status = st
		}

		if err := store.Append(apiActor(r), &a); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func handleUpdateStatus(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		status, err := ParseStatus(body.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := chi.URLParam(r, "id")
		if err := store.UpdateStatus(apiActor(r), id, status); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "attendance not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
	}
}

// apiActor attributes changes made over HTTP to the API caller.
func apiActor(r *http.Request) context.Context {
	return audit.WithActor(r.Context(), audit.ActorUser, "api")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
