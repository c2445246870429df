package records

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()
	s := newTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, s)
	return r, s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateAppliesDefaults(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/attendances", map[string]any{
		"lead": map[string]string{"name": "Maria", "email": "maria@example.com", "phone": "85988887777", "category": "auto"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got Attendance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 5.0, got.Classification.Score)
	assert.Equal(t, leads.PriorityMedium, got.Classification.Priority)
	assert.Equal(t, leads.CategoryAuto, got.Lead.Category)
	assert.Equal(t, StatusPending, got.Status)
	assert.Regexp(t, `^ATD-\d+-[0-9A-F]{5}$`, got.ID)
}

func TestCreateRejectsInvalidLead(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/attendances", map[string]any{
		"lead": map[string]string{"name": "Maria", "email": "nope", "phone": "1", "category": "AUTO"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestListGetAndPatchStatus(t *testing.T) {
	r, s := newTestRouter(t)
	ctx := context.Background()
	a := sampleAttendance("maria", leads.PriorityHigh, 9)
	require.NoError(t, s.Append(ctx, a))
	require.NoError(t, s.Append(ctx, sampleAttendance("joao", leads.PriorityLow, 2)))

	w := do(t, r, http.MethodGet, "/api/attendances?priority=high", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Attendances []Attendance `json:"attendances"`
		Total       int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, a.ID, list.Attendances[0].ID)

	w = do(t, r, http.MethodGet, "/api/attendances/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPatch, "/api/attendances/"+a.ID+"/status", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	w = do(t, r, http.MethodPatch, "/api/attendances/"+a.ID+"/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/attendances/ATD-0-NOPE0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/attendances?priority=urgent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
