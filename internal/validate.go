package internal

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\d{8,15}$`)
	ageRe   = regexp.MustCompile(`^\d+$`)
)

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// ValidPhone accepts 8 to 15 ASCII digits, nothing else.
func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

func ValidAge(s string) bool { return ageRe.MatchString(s) }

// CapitalizeText trims the input, upper-cases the first letter of every word
// and lower-cases the rest, collapsing runs of spaces to one.
func CapitalizeText(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r := []rune(strings.ToLower(f))
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

/* ===================== FORM VALIDATION ===================== */

// FieldErrors maps field name -> true when that field failed validation.
// The SPA uses it to flag inputs and scroll to the first offender.
type FieldErrors map[string]bool

func (fe FieldErrors) set(field string, bad bool) {
	if bad {
		fe[field] = true
	}
}

func (fe FieldErrors) OK() bool { return len(fe) == 0 }

// ValidateInscripcion recomputes every field flag from scratch, required-ness
// first, then format for email/phone/age. Email is optional but must be
// well-formed when present.
func ValidateInscripcion(r InscripcionRequest) FieldErrors {
	fe := FieldErrors{}
	fe.set("nombre", strings.TrimSpace(r.Nombre) == "")
	fe.set("apellido", strings.TrimSpace(r.Apellido) == "")
	fe.set("edad", !ValidAge(r.Edad))
	fe.set("celular", !ValidPhone(r.Celular))
	fe.set("localidad", strings.TrimSpace(r.Localidad) == "")
	fe.set("email", r.Email != "" && !ValidEmail(r.Email))
	fe.set("juegos", len(r.Juegos) == 0)
	return fe
}

// ValidateEquipo applies the captain rules plus per-player rules. Exactly one
// game must be selected, and at least one teammate besides the captain.
// Player errors are keyed "jugador.<index>.<field>".
func ValidateEquipo(r EquipoRequest) FieldErrors {
	fe := FieldErrors{}
	fe.set("nombre", strings.TrimSpace(r.Nombre) == "")
	fe.set("apellido", strings.TrimSpace(r.Apellido) == "")
	fe.set("edad", !ValidAge(r.Edad))
	fe.set("celular", !ValidPhone(r.Celular))
	fe.set("localidad", strings.TrimSpace(r.Localidad) == "")
	fe.set("email", r.Email != "" && !ValidEmail(r.Email))
	fe.set("nombre_equipo", strings.TrimSpace(r.NombreEquipo) == "")
	fe.set("juego_id", r.JuegoID == nil)
	fe.set("jugadores", len(r.Jugadores) == 0)

	for i, j := range r.Jugadores {
		fe.set(jugadorField(i, "nombre"), strings.TrimSpace(j.Nombre) == "")
		fe.set(jugadorField(i, "apellido"), strings.TrimSpace(j.Apellido) == "")
		fe.set(jugadorField(i, "edad"), !ValidAge(j.Edad))
		fe.set(jugadorField(i, "celular"), !ValidPhone(j.Celular))
		fe.set(jugadorField(i, "email"), j.Email != "" && !ValidEmail(j.Email))
	}
	return fe
}

func jugadorField(i int, field string) string {
	return "jugador." + strconv.Itoa(i) + "." + field
}
