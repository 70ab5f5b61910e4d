package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// registrationRouter mounts both registration routes with a nil pool: any
// request that fails validation must be rejected without reaching the DB.
func registrationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := Config{PublicBaseURL: "http://test", JWTSecret: testSecret}
	r := gin.New()
	r.POST("/api/eventos/:id/inscripciones",
		MaybeAuth(cfg.JWTSecret), RegisterIndividual(nil, disabledMailer{logger: zap.NewNop()}, cfg, zap.NewNop()))
	r.POST("/api/eventos/:id/equipos",
		MaybeAuth(cfg.JWTSecret), RegisterEquipo(nil, disabledMailer{logger: zap.NewNop()}, cfg, zap.NewNop()))
	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeFields(t *testing.T, w *httptest.ResponseRecorder) map[string]bool {
	t.Helper()
	var resp struct {
		Error  string          `json:"error"`
		Fields map[string]bool `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "completa todos los campos requeridos" {
		t.Errorf("error message = %q", resp.Error)
	}
	return resp.Fields
}

func TestRegisterIndividualRejectsIncompleteForm(t *testing.T) {
	r := registrationRouter()

	req := validIndividual()
	req.Celular = "123"
	req.Juegos = nil

	w := postJSON(r, "/api/eventos/1/inscripciones", req)
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	fields := decodeFields(t, w)
	if !fields["celular"] || !fields["juegos"] {
		t.Errorf("expected celular and juegos flags, got %v", fields)
	}
}

func TestRegisterIndividualBadEventID(t *testing.T) {
	w := postJSON(registrationRouter(), "/api/eventos/abc/inscripciones", validIndividual())
	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegisterEquipoRejectsTeammateMissingPhone(t *testing.T) {
	r := registrationRouter()

	req := validEquipo()
	req.Jugadores[1].Celular = ""

	w := postJSON(r, "/api/eventos/1/equipos", req)
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	fields := decodeFields(t, w)
	if !fields["jugador.1.celular"] {
		t.Errorf("broken teammate not flagged: %v", fields)
	}
	if fields["jugador.0.celular"] || fields["celular"] {
		t.Errorf("healthy registrants flagged: %v", fields)
	}
}

func TestRegisterEquipoRejectsMissingGame(t *testing.T) {
	r := registrationRouter()

	req := validEquipo()
	req.JuegoID = nil

	w := postJSON(r, "/api/eventos/1/equipos", req)
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if fields := decodeFields(t, w); !fields["juego_id"] {
		t.Errorf("missing game not flagged: %v", fields)
	}
}

func TestDedupeInts(t *testing.T) {
	got := dedupeInts([]int{3, 1, 3, 2, 1})
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("dedupeInts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupeInts = %v, want %v", got, want)
		}
	}
	if out := dedupeInts(nil); len(out) != 0 {
		t.Errorf("dedupeInts(nil) = %v", out)
	}
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	r := registrationRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/eventos/1/inscripciones", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
