package internal

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ------------------- Individual registration -------------------

// POST /api/eventos/:id/inscripciones
func RegisterIndividual(db *pgxpool.Pool, mailer Mailer, cfg Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}

		var req InscripcionRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}

		if fe := ValidateInscripcion(req); !fe.OK() {
			c.JSON(400, gin.H{"error": "completa todos los campos requeridos", "fields": fe})
			return
		}

		ctx := context.Background()

		ev, err := getEvento(ctx, db, eventoID)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		ofrecidos, err := juegosOfrecidos(ctx, db, eventoID)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		// the SPA should not send duplicates, but a doubled checkbox must
		// not turn into a UNIQUE violation
		juegos := dedupeInts(req.Juegos)
		nombresJuegos := make([]string, 0, len(juegos))
		for _, jid := range juegos {
			nombre, ok := ofrecidos[jid]
			if !ok {
				c.JSON(400, gin.H{"error": "game not offered at this event"})
				return
			}
			nombresJuegos = append(nombresJuegos, nombre)
		}

		edad, _ := strconv.Atoi(req.Edad)
		email := NormalizeEmail(req.Email)
		userID := maybeUID(c)

		// Row, QR write-back and game associations commit or roll back
		// together; no orphan rows on a mid-chain failure.
		tx, err := db.Begin(ctx)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer tx.Rollback(ctx)

		inscID, qrURL, err := insertInscripcion(ctx, tx, cfg.PublicBaseURL, inscripcionRow{
			eventoID:  eventoID,
			userID:    userID,
			nombre:    CapitalizeText(req.Nombre),
			apellido:  CapitalizeText(req.Apellido),
			edad:      edad,
			email:     email,
			celular:   req.Celular,
			localidad: req.Localidad,
			juegos:    juegos,
		})
		if err != nil {
			logger.Error("individual registration failed", zap.Int("evento_id", eventoID), zap.Error(err))
			c.JSON(500, gin.H{"error": "no se pudo guardar la inscripción, intentá de nuevo"})
			return
		}

		if err := tx.Commit(ctx); err != nil {
			c.JSON(500, gin.H{"error": "no se pudo guardar la inscripción, intentá de nuevo"})
			return
		}

		if email != "" {
			if err := SendConfirmacionIndividual(ctx, mailer, ev, CapitalizeText(req.Nombre), email, nombresJuegos); err != nil {
				logger.Warn("confirmation email failed",
					zap.Int("inscripcion_id", inscID), zap.Error(err))
			}
		}

		logAction(db, userID, "inscripcion", "evento_id="+strconv.Itoa(eventoID)+" inscripcion_id="+strconv.Itoa(inscID))
		c.JSON(201, gin.H{"ok": true, "inscripcion_id": inscID, "qr_code": qrURL})
	}
}

// ------------------- Team registration -------------------

// POST /api/eventos/:id/equipos
func RegisterEquipo(db *pgxpool.Pool, mailer Mailer, cfg Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}

		var req EquipoRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}

		if fe := ValidateEquipo(req); !fe.OK() {
			c.JSON(400, gin.H{"error": "completa todos los campos requeridos", "fields": fe})
			return
		}

		ctx := context.Background()

		ev, err := getEvento(ctx, db, eventoID)
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		ofrecidos, err := juegosOfrecidos(ctx, db, eventoID)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		nombreJuego, ok := ofrecidos[*req.JuegoID]
		if !ok {
			c.JSON(400, gin.H{"error": "game not offered at this event"})
			return
		}

		var supportsTeams bool
		if err := db.QueryRow(ctx,
			"SELECT permite_equipos FROM juegos WHERE id=$1", *req.JuegoID,
		).Scan(&supportsTeams); err != nil || !supportsTeams {
			c.JSON(400, gin.H{"error": "game does not support team mode"})
			return
		}

		equipo := req.NombreEquipo
		userID := maybeUID(c)

		// Captain and every teammate commit as one unit. A failed insert
		// anywhere rolls the whole team back instead of leaving a partial
		// squad registered.
		tx, err := db.Begin(ctx)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer tx.Rollback(ctx)

		capEdad, _ := strconv.Atoi(req.Edad)
		capitanID, _, err := insertInscripcion(ctx, tx, cfg.PublicBaseURL, inscripcionRow{
			eventoID:  eventoID,
			userID:    userID,
			nombre:    CapitalizeText(req.Nombre),
			apellido:  CapitalizeText(req.Apellido),
			edad:      capEdad,
			email:     NormalizeEmail(req.Email),
			celular:   req.Celular,
			localidad: req.Localidad,
			equipo:    &equipo,
			juegos:    []int{*req.JuegoID},
		})
		if err != nil {
			logger.Error("team registration failed at captain",
				zap.Int("evento_id", eventoID), zap.Error(err))
			c.JSON(500, gin.H{"error": "no se pudo guardar la inscripción, intentá de nuevo"})
			return
		}

		for i, j := range req.Jugadores {
			edad, _ := strconv.Atoi(j.Edad)
			_, _, err := insertInscripcion(ctx, tx, cfg.PublicBaseURL, inscripcionRow{
				eventoID:  eventoID,
				nombre:    CapitalizeText(j.Nombre),
				apellido:  CapitalizeText(j.Apellido),
				edad:      edad,
				email:     NormalizeEmail(j.Email),
				celular:   j.Celular,
				localidad: req.Localidad,
				equipo:    &equipo,
				juegos:    []int{*req.JuegoID},
			})
			if err != nil {
				logger.Error("team registration failed at teammate",
					zap.Int("evento_id", eventoID), zap.Int("jugador", i), zap.Error(err))
				c.JSON(500, gin.H{"error": "no se pudo guardar la inscripción, intentá de nuevo"})
				return
			}
		}

		if err := tx.Commit(ctx); err != nil {
			c.JSON(500, gin.H{"error": "no se pudo guardar la inscripción, intentá de nuevo"})
			return
		}

		if err := SendConfirmacionEquipo(ctx, mailer, logger, ev, req, nombreJuego); err != nil {
			logger.Warn("captain confirmation email failed",
				zap.Int("inscripcion_id", capitanID), zap.Error(err))
		}

		logAction(db, userID, "inscripcion_equipo",
			"evento_id="+strconv.Itoa(eventoID)+" equipo="+equipo+" jugadores="+strconv.Itoa(1+len(req.Jugadores)))
		c.JSON(201, gin.H{"ok": true, "capitan_id": capitanID, "jugadores": 1 + len(req.Jugadores)})
	}
}

// dedupeInts drops repeated ids, keeping first-seen order.
func dedupeInts(in []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ------------------- Shared insert chain -------------------

type inscripcionRow struct {
	eventoID  int
	userID    *int
	nombre    string
	apellido  string
	edad      int
	email     string
	celular   string
	localidad string
	equipo    *string
	juegos    []int
}

// insertInscripcion runs one registrant's chain inside the caller's
// transaction: inscription row, QR write-back, one association row per game.
func insertInscripcion(ctx context.Context, tx pgx.Tx, baseURL string, r inscripcionRow) (int, string, error) {
	var email *string
	if r.email != "" {
		email = &r.email
	}

	var id int
	err := tx.QueryRow(ctx,
		`INSERT INTO inscripciones(evento_id, user_id, nombre, apellido, edad, email, celular, localidad, nombre_equipo, asistencia)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false)
		 RETURNING id`,
		r.eventoID, r.userID, r.nombre, r.apellido, r.edad, email, r.celular, r.localidad, r.equipo,
	).Scan(&id)
	if err != nil {
		return 0, "", err
	}

	qrURL := BuildVerificationURL(baseURL, r.eventoID, id)
	if _, err := tx.Exec(ctx,
		"UPDATE inscripciones SET qr_code=$1 WHERE id=$2", qrURL, id,
	); err != nil {
		return 0, "", err
	}

	for _, jid := range r.juegos {
		if _, err := tx.Exec(ctx,
			"INSERT INTO juegos_inscripciones(inscripcion_id, juego_id) VALUES ($1,$2)",
			id, jid,
		); err != nil {
			return 0, "", err
		}
	}
	return id, qrURL, nil
}
