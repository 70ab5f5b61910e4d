package internal

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string

	// Public base of the SPA, prefixed onto QR verification URLs.
	PublicBaseURL string

	// EmailJS credentials. All three empty => email sending disabled.
	EmailServiceID  string
	EmailTemplateID string
	EmailPublicKey  string

	CookieSecure bool
	AllowOrigins []string
}

func FromEnv() (Config, error) {
	var c Config
	c.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	c.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))

	c.Port = strings.TrimSpace(os.Getenv("PORT"))
	if c.Port == "" {
		c.Port = "8080"
	}

	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "http://localhost:" + c.Port
	}

	c.EmailServiceID = strings.TrimSpace(os.Getenv("EMAILJS_SERVICE_ID"))
	c.EmailTemplateID = strings.TrimSpace(os.Getenv("EMAILJS_TEMPLATE_ID"))
	c.EmailPublicKey = strings.TrimSpace(os.Getenv("EMAILJS_PUBLIC_KEY"))

	c.CookieSecure = os.Getenv("COOKIE_SECURE") == "1"
	c.AllowOrigins = splitOrigins(os.Getenv("CORS_ORIGINS"))

	if c.DatabaseURL == "" {
		return c, fmt.Errorf("DATABASE_URL is empty")
	}
	if c.JWTSecret == "" {
		return c, fmt.Errorf("JWT_SECRET is empty")
	}

	return c, nil
}

// EmailEnabled reports whether all EmailJS credentials are present.
// A partially configured set counts as disabled so a missing key never
// produces silent 403s from the provider.
func (c Config) EmailEnabled() bool {
	return c.EmailServiceID != "" && c.EmailTemplateID != "" && c.EmailPublicKey != ""
}

func splitOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"http://localhost:5173"}
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
