package internal

import "time"

type Evento struct {
	ID          int     `json:"id"`
	Nombre      *string `json:"nombre,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	FechaInicio string  `json:"fecha_inicio"`
	FechaFin    string  `json:"fecha_fin"`
	HoraInicio  string  `json:"hora_inicio"`
	Localidad   string  `json:"localidad"`
	Direccion   string  `json:"direccion"`
}

type Juego struct {
	ID             int    `json:"id"`
	Nombre         string `json:"nombre"`
	PermiteEquipos bool   `json:"permite_equipos"`
	Activo         bool   `json:"activo"`
}

type Inscripcion struct {
	ID              int        `json:"id"`
	UserID          *int       `json:"user_id,omitempty"`
	Nombre          string     `json:"nombre"`
	Apellido        string     `json:"apellido"`
	Edad            int        `json:"edad"`
	Email           *string    `json:"email,omitempty"`
	Celular         string     `json:"celular"`
	Localidad       string     `json:"localidad"`
	NombreEquipo    *string    `json:"nombre_equipo,omitempty"`
	EventoID        int        `json:"evento_id"`
	Asistencia      bool       `json:"asistencia"`
	FechaAsistencia *time.Time `json:"fecha_asistencia,omitempty"`
	QRCode          *string    `json:"qr_code,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Profile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // admin | coordinador | user
}

/* ===================== REQUEST PAYLOADS ===================== */

// InscripcionRequest is the individual registration form. Fields arrive as
// the SPA sends them: raw strings, edad included. Normalization happens
// server-side after validation.
type InscripcionRequest struct {
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Edad      string `json:"edad"`
	Email     string `json:"email"`
	Celular   string `json:"celular"`
	Localidad string `json:"localidad"`
	Juegos    []int  `json:"juegos"`
}

// Jugador is one teammate row in the team form. No localidad or team name:
// both are inherited from the captain.
type Jugador struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Edad     string `json:"edad"`
	Email    string `json:"email"`
	Celular  string `json:"celular"`
}

// EquipoRequest is the team registration form: captain fields plus the team
// name, exactly one game and at least one teammate.
type EquipoRequest struct {
	Nombre       string    `json:"nombre"`
	Apellido     string    `json:"apellido"`
	Edad         string    `json:"edad"`
	Email        string    `json:"email"`
	Celular      string    `json:"celular"`
	Localidad    string    `json:"localidad"`
	NombreEquipo string    `json:"nombre_equipo"`
	JuegoID      *int      `json:"juego_id"`
	Jugadores    []Jugador `json:"jugadores"`
}
