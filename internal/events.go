package internal

import (
	"context"
	"errors"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rowQuerier is the single-row read slice of the pool, so lookups can run
// against a fake in tests.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ------------------- Reference data (public) -------------------

const eventoCols = `id, nombre, slug, to_char(fecha_inicio,'YYYY-MM-DD'), to_char(fecha_fin,'YYYY-MM-DD'),
	        hora_inicio, localidad, direccion`

// eventosQuery lists events upcoming-first: pending events sorted by start
// date, then the already-finished ones.
func eventosQuery() sq.SelectBuilder {
	return psql.Select(
		"id", "nombre", "slug",
		"to_char(fecha_inicio,'YYYY-MM-DD')", "to_char(fecha_fin,'YYYY-MM-DD')",
		"hora_inicio", "localidad", "direccion",
	).
		From("eventos").
		OrderBy("fecha_fin < CURRENT_DATE", "fecha_inicio ASC")
}

func ListEventos(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := qQuery(context.Background(), db, eventosQuery())
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer rows.Close()

		out := []Evento{}
		for rows.Next() {
			var e Evento
			_ = rows.Scan(&e.ID, &e.Nombre, &e.Slug, &e.FechaInicio, &e.FechaFin,
				&e.HoraInicio, &e.Localidad, &e.Direccion)
			out = append(out, e)
		}
		c.JSON(200, out)
	}
}

func getEvento(ctx context.Context, db rowQuerier, id int) (Evento, error) {
	var e Evento
	err := db.QueryRow(ctx,
		`SELECT `+eventoCols+`
		 FROM eventos WHERE id=$1`, id,
	).Scan(&e.ID, &e.Nombre, &e.Slug, &e.FechaInicio, &e.FechaFin,
		&e.HoraInicio, &e.Localidad, &e.Direccion)
	return e, err
}

func GetEvento(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}
		e, err := getEvento(context.Background(), db, id)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, e)
	}
}

// GetEventoBySlug backs the /formulario/:eventoSlug entry point of the SPA.
func GetEventoBySlug(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		var e Evento
		err := db.QueryRow(context.Background(),
			`SELECT `+eventoCols+`
			 FROM eventos WHERE slug=$1`, slug,
		).Scan(&e.ID, &e.Nombre, &e.Slug, &e.FechaInicio, &e.FechaFin,
			&e.HoraInicio, &e.Localidad, &e.Direccion)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, e)
	}
}

func ListJuegos(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(context.Background(),
			"SELECT id, nombre, permite_equipos, activo FROM juegos WHERE activo=true ORDER BY nombre ASC",
		)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer rows.Close()

		out := []Juego{}
		for rows.Next() {
			var j Juego
			_ = rows.Scan(&j.ID, &j.Nombre, &j.PermiteEquipos, &j.Activo)
			out = append(out, j)
		}
		c.JSON(200, out)
	}
}

// ListEventoJuegos returns the active games offered at one event, the set the
// registration form renders as its game checklist.
func ListEventoJuegos(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}

		rows, err := db.Query(context.Background(),
			`SELECT j.id, j.nombre, j.permite_equipos, j.activo
			 FROM evento_juegos ej
			 JOIN juegos j ON j.id = ej.juego_id
			 WHERE ej.evento_id = $1 AND j.activo = true
			 ORDER BY j.nombre ASC`, id)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer rows.Close()

		out := []Juego{}
		for rows.Next() {
			var j Juego
			_ = rows.Scan(&j.ID, &j.Nombre, &j.PermiteEquipos, &j.Activo)
			out = append(out, j)
		}
		c.JSON(200, out)
	}
}

// juegosOfrecidos returns id->name for the games offered at an event, used to
// reject registrations pointing at games the event does not run.
func juegosOfrecidos(ctx context.Context, db *pgxpool.Pool, eventoID int) (map[int]string, error) {
	rows, err := db.Query(ctx,
		`SELECT j.id, j.nombre
		 FROM evento_juegos ej
		 JOIN juegos j ON j.id = ej.juego_id
		 WHERE ej.evento_id = $1 AND j.activo = true`, eventoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]string{}
	for rows.Next() {
		var id int
		var nombre string
		if err := rows.Scan(&id, &nombre); err != nil {
			return nil, err
		}
		out[id] = nombre
	}
	return out, rows.Err()
}
