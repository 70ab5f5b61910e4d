package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TemplateParams is the flat parameter map the email template expects.
// Equipo/Jugadores are only filled on the captain's copy of a team
// confirmation; the template hides its team block when they are empty.
type TemplateParams struct {
	ToEmail     string `json:"to_email"`
	ToName      string `json:"to_name"`
	EventoFecha string `json:"evento_fecha"`
	EventoLugar string `json:"evento_lugar"`
	EventoHora  string `json:"evento_hora"`
	Juegos      string `json:"juegos"`
	Equipo      string `json:"equipo"`
	Jugadores   string `json:"jugadores"`
	FAQHTML     string `json:"faq_html"`
}

// Mailer sends one templated confirmation email. Implementations must be
// safe for concurrent use: team submissions fan player emails out on
// goroutines.
type Mailer interface {
	Send(ctx context.Context, p TemplateParams) error
}

// NewMailer returns the EmailJS client when credentials are configured,
// otherwise a stub that only logs. Registration never fails on email
// problems either way.
func NewMailer(cfg Config, logger *zap.Logger) Mailer {
	if !cfg.EmailEnabled() {
		logger.Warn("EmailJS credentials missing, confirmation emails disabled")
		return disabledMailer{logger: logger}
	}
	return &emailJSMailer{
		serviceID:  cfg.EmailServiceID,
		templateID: cfg.EmailTemplateID,
		publicKey:  cfg.EmailPublicKey,
		endpoint:   emailJSEndpoint,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

/* ===================== EMAILJS ===================== */

const emailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

type emailJSMailer struct {
	serviceID  string
	templateID string
	publicKey  string
	endpoint   string
	client     *http.Client
}

func (m *emailJSMailer) Send(ctx context.Context, p TemplateParams) error {
	body, err := json.Marshal(struct {
		ServiceID      string         `json:"service_id"`
		TemplateID     string         `json:"template_id"`
		UserID         string         `json:"user_id"`
		TemplateParams TemplateParams `json:"template_params"`
	}{m.serviceID, m.templateID, m.publicKey, p})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

type disabledMailer struct {
	logger *zap.Logger
}

func (m disabledMailer) Send(_ context.Context, p TemplateParams) error {
	m.logger.Info("email sending disabled, skipping confirmation",
		zap.String("to", p.ToEmail))
	return nil
}

/* ===================== DISPATCH ===================== */

// SendConfirmacionIndividual emails one registrant. Best effort: the error is
// returned for logging but callers never fail a registration on it.
func SendConfirmacionIndividual(ctx context.Context, mailer Mailer, ev Evento, nombre, email string, juegos []string) error {
	return mailer.Send(ctx, TemplateParams{
		ToEmail:     email,
		ToName:      nombre,
		EventoFecha: ev.FechaInicio,
		EventoLugar: ev.Localidad + ", " + ev.Direccion,
		EventoHora:  ev.HoraInicio,
		Juegos:      strings.Join(juegos, ", "),
		FAQHTML:     BuildFAQHTML(juegos),
	})
}

// SendConfirmacionEquipo emails the captain and, fire-and-forget, every
// teammate with an address. Only the captain's send defines the returned
// error; player failures are logged and dropped.
func SendConfirmacionEquipo(ctx context.Context, mailer Mailer, logger *zap.Logger, ev Evento, req EquipoRequest, juego string) error {
	juegos := []string{juego}

	for _, j := range req.Jugadores {
		if j.Email == "" {
			continue
		}
		go func(nombre, email string) {
			sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := SendConfirmacionIndividual(sendCtx, mailer, ev, nombre, email, juegos); err != nil {
				logger.Warn("teammate confirmation email failed",
					zap.String("to", email), zap.Error(err))
			}
		}(CapitalizeText(j.Nombre), NormalizeEmail(j.Email))
	}

	if req.Email == "" {
		return nil
	}
	return mailer.Send(ctx, TemplateParams{
		ToEmail:     NormalizeEmail(req.Email),
		ToName:      CapitalizeText(req.Nombre),
		EventoFecha: ev.FechaInicio,
		EventoLugar: ev.Localidad + ", " + ev.Direccion,
		EventoHora:  ev.HoraInicio,
		Juegos:      juego,
		Equipo:      req.NombreEquipo,
		Jugadores:   rosterLine(req),
		FAQHTML:     BuildFAQHTML(juegos),
	})
}

// rosterLine lists the whole team, captain first.
func rosterLine(req EquipoRequest) string {
	names := make([]string, 0, 1+len(req.Jugadores))
	names = append(names, CapitalizeText(req.Nombre+" "+req.Apellido))
	for _, j := range req.Jugadores {
		names = append(names, CapitalizeText(j.Nombre+" "+j.Apellido))
	}
	return strings.Join(names, ", ")
}
