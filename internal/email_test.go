package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testEmailJS(t *testing.T, handler http.HandlerFunc) (*emailJSMailer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &emailJSMailer{
		serviceID:  "svc_1",
		templateID: "tpl_1",
		publicKey:  "pk_1",
		endpoint:   srv.URL,
		client:     srv.Client(),
	}, srv
}

func TestEmailJSMailerSendsExpectedPayload(t *testing.T) {
	var got struct {
		ServiceID      string         `json:"service_id"`
		TemplateID     string         `json:"template_id"`
		UserID         string         `json:"user_id"`
		TemplateParams TemplateParams `json:"template_params"`
	}
	m, _ := testEmailJS(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(200)
	})

	p := TemplateParams{
		ToEmail:     "ana@x.com",
		ToName:      "Ana",
		EventoFecha: "2026-09-12",
		EventoLugar: "La Plata, Calle 7 1234",
		EventoHora:  "10:00",
		Juegos:      "Valorant",
		FAQHTML:     "<h3>Valorant</h3>",
	}
	if err := m.Send(context.Background(), p); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.ServiceID != "svc_1" || got.TemplateID != "tpl_1" || got.UserID != "pk_1" {
		t.Errorf("credentials = %q/%q/%q", got.ServiceID, got.TemplateID, got.UserID)
	}
	if got.TemplateParams != p {
		t.Errorf("template params = %+v, want %+v", got.TemplateParams, p)
	}
}

func TestEmailJSMailerNonOKIsError(t *testing.T) {
	m, _ := testEmailJS(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad template", 400)
	})
	if err := m.Send(context.Background(), TemplateParams{}); err == nil {
		t.Fatal("expected error on 400 response")
	}
}

func TestDisabledMailerNeverFails(t *testing.T) {
	m := disabledMailer{logger: zap.NewNop()}
	if err := m.Send(context.Background(), TemplateParams{ToEmail: "x@y.com"}); err != nil {
		t.Fatalf("disabled mailer returned %v", err)
	}
}

// countingMailer records every send; used to assert the team fan-out.
type countingMailer struct {
	mu    sync.Mutex
	sends []TemplateParams
	err   error
}

func (m *countingMailer) Send(_ context.Context, p TemplateParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, p)
	return m.err
}

func (m *countingMailer) wait(t *testing.T, n int) []TemplateParams {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		m.mu.Lock()
		if len(m.sends) >= n {
			out := append([]TemplateParams(nil), m.sends...)
			m.mu.Unlock()
			return out
		}
		m.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d sends", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSendConfirmacionEquipoFansOut(t *testing.T) {
	m := &countingMailer{}
	ev := Evento{FechaInicio: "2026-09-12", HoraInicio: "10:00", Localidad: "La Plata", Direccion: "Calle 7"}
	req := validEquipo() // captain has email, jugador 0 has none, jugador 1 does

	if err := SendConfirmacionEquipo(context.Background(), m, zap.NewNop(), ev, req, "Valorant"); err != nil {
		t.Fatalf("SendConfirmacionEquipo: %v", err)
	}

	sends := m.wait(t, 2)
	byTo := map[string]TemplateParams{}
	for _, s := range sends {
		byTo[s.ToEmail] = s
	}
	capitan, ok := byTo["ana@x.com"]
	if !ok {
		t.Fatal("captain email not sent")
	}
	if capitan.Equipo != "Los Pibes" {
		t.Errorf("captain equipo = %q", capitan.Equipo)
	}
	if capitan.Jugadores != "Ana Lopez, Beto Gomez, Caro Diaz" {
		t.Errorf("captain roster = %q", capitan.Jugadores)
	}
	mate, ok := byTo["caro@x.com"]
	if !ok {
		t.Fatal("teammate email not sent")
	}
	if mate.Equipo != "" || mate.Jugadores != "" {
		t.Errorf("teammate copy carries team params: %+v", mate)
	}
	if _, ok := byTo[""]; ok {
		t.Error("send attempted for teammate without an address")
	}
}

func TestSendConfirmacionEquipoCaptainErrorPropagates(t *testing.T) {
	m := &countingMailer{err: context.DeadlineExceeded}
	req := validEquipo()
	err := SendConfirmacionEquipo(context.Background(), m, zap.NewNop(), Evento{}, req, "Valorant")
	if err == nil {
		t.Fatal("captain send failure not reported")
	}
}

func TestSendConfirmacionEquipoNoCaptainEmail(t *testing.T) {
	m := &countingMailer{err: context.DeadlineExceeded}
	req := validEquipo()
	req.Email = ""
	// teammate failures must stay out of the result
	if err := SendConfirmacionEquipo(context.Background(), m, zap.NewNop(), Evento{}, req, "Valorant"); err != nil {
		t.Fatalf("teammate failure leaked into result: %v", err)
	}
}
