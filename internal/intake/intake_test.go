package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/lead-agent/internal/conversation"
	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

type fixedGenerator struct {
	reply string
	err   error
}

func (g fixedGenerator) Generate(context.Context, string, []leads.Turn) (string, error) {
	return g.reply, g.err
}

func newTestService(t *testing.T, gen conversation.Generator) *Service {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(NewStore(database), gen, conversation.DefaultPersona, nil, logger)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRegisterScoresAndStores(t *testing.T) {
	svc := newTestService(t, fixedGenerator{reply: "Bem-vinda, Maria!"})
	ctx := context.Background()

	rec, err := svc.Register(ctx, leads.Lead{
		Name: "Maria Silva", Email: "maria@example.com", Phone: "(85) 98888-7777",
		Category: "auto", Message: "Quero entender como funciona a carta de crédito",
	})
	require.NoError(t, err)
	assert.Equal(t, leads.Classification{Score: 8, Priority: leads.PriorityHigh}, rec.Classification)
	assert.Equal(t, "Bem-vinda, Maria!", rec.Welcome)
	assert.Contains(t, rec.ContactLink, "https://wa.me/"+leads.DefaultWhatsAppNumber)

	list, err := svc.store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, leads.CategoryAuto, list[0].Lead.Category)
	assert.Equal(t, rec.ID, list[0].ID)
}

func TestRegisterFallsBackWhenGenerationFails(t *testing.T) {
	svc := newTestService(t, fixedGenerator{err: errors.New("rate limited")})
	rec, err := svc.Register(context.Background(), leads.Lead{
		Name: "João", Email: "joao@example.com", Phone: "11912345678", Category: "EDUCAÇÃO",
	})
	require.NoError(t, err)
	assert.Equal(t, conversation.FallbackWelcome, rec.Welcome)
	assert.Equal(t, leads.PriorityLow, rec.Classification.Priority)
}

func TestLeadRoutes(t *testing.T) {
	svc := newTestService(t, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, svc)

	w := postJSON(t, r, "/api/leads", map[string]string{"name": "Maria", "email": "invalido", "phone": "1", "category": "AUTO"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")

	w = postJSON(t, r, "/api/leads", map[string]string{"name": "Maria", "email": "maria@example.com", "phone": "85988887777", "category": "IMÓVEL"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Success      bool   `json:"success"`
		Message      string `json:"message"`
		WhatsAppLink string `json:"whatsapp_link"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, conversation.FallbackWelcome, created.Message)
	assert.NotEmpty(t, created.WhatsAppLink)

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestVerifyPhoneRoute(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, newTestService(t, nil))

	w := postJSON(t, r, "/api/verify-phone", map[string]string{"phone": "(85) 98888-7777"})
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Valid bool   `json:"valid"`
		Phone string `json:"phone"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, "5585988887777", got.Phone)

	w = postJSON(t, r, "/api/verify-phone", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
