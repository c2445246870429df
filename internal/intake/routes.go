package intake

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// RegisterRoutes mounts /api/leads and /api/verify-phone on the given router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/leads", func(r chi.Router) {
		r.Post("/", handleCreate(svc))
		r.Get("/", handleList(svc.store))
	})
	r.Post("/api/verify-phone", handleVerifyPhone)
}

func handleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var lead leads.Lead
		if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rec, err := svc.Register(r.Context(), lead)
		if err != nil {
			var ve *leads.ValidationError
			if errors.As(err, &ve) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success":       true,
			"message":       rec.Welcome,
			"lead":          rec,
			"whatsapp_link": rec.ContactLink,
		})
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		list, err := store.List(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"leads": list, "total": len(list)})
	}
}

func handleVerifyPhone(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	phone := leads.NormalizePhone(body.Phone)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": leads.IsMobileNumber(phone),
		"phone": phone,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
