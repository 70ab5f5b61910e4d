package internal

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// attendanceDB is the slice of the pool the verification chain touches.
type attendanceDB interface {
	rowQuerier
	execer
}

// VerifyAttendance handles the QR scan flow. Route is mounted behind Auth +
// RequireStaff, so by the time this runs the caller is an authenticated
// admin or coordinador — authorization is settled before any lookup.
//
// POST /api/verify-attendance/:eventoId/:inscripcionId/:token
//
// The trailing token is the random component of the printed QR URL. It is
// accepted for URL compatibility but not compared against the stored value;
// the role check is the access control here.
func VerifyAttendance(db *pgxpool.Pool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Both ids are parsed to int at the boundary so the equality check
		// below never compares mixed representations.
		eventoID, err := strconv.Atoi(c.Param("eventoId"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}
		inscID, err := strconv.Atoi(c.Param("inscripcionId"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad registration id"})
			return
		}

		actor := uid(c)
		code, body := verifyAttendance(context.Background(), db, logger, eventoID, inscID, &actor)
		c.JSON(code, body)
	}
}

// verifyAttendance runs the post-guard chain: registration lookup, event
// cross-check, event lookup, then the one-way asistencia flip. The first
// failed check is terminal.
func verifyAttendance(ctx context.Context, db attendanceDB, logger *zap.Logger, eventoID, inscID int, actor *int) (int, gin.H) {
	var insc Inscripcion
	err := db.QueryRow(ctx,
		`SELECT id, nombre, apellido, nombre_equipo, evento_id, asistencia, fecha_asistencia
		 FROM inscripciones WHERE id=$1`, inscID,
	).Scan(&insc.ID, &insc.Nombre, &insc.Apellido, &insc.NombreEquipo,
		&insc.EventoID, &insc.Asistencia, &insc.FechaAsistencia)
	if errors.Is(err, pgx.ErrNoRows) {
		return 404, gin.H{"error": "registration not found"}
	}
	if err != nil {
		return 500, gin.H{"error": "db"}
	}

	if insc.EventoID != eventoID {
		return 409, gin.H{"error": "event does not match registration"}
	}

	ev, err := getEvento(ctx, db, eventoID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 404, gin.H{"error": "event not found"}
	}
	if err != nil {
		return 500, gin.H{"error": "db"}
	}

	if insc.Asistencia {
		return 200, gin.H{
			"status":           "already-verified",
			"inscripcion":      insc,
			"evento":           ev,
			"fecha_asistencia": insc.FechaAsistencia,
		}
	}

	// asistencia=false repeated in the WHERE clause keeps the flag one-way
	// under concurrent scans of the same code.
	now := time.Now()
	tag, err := db.Exec(ctx,
		"UPDATE inscripciones SET asistencia=true, fecha_asistencia=$1 WHERE id=$2 AND asistencia=false",
		now, inscID,
	)
	if err != nil {
		logger.Error("attendance update failed", zap.Int("inscripcion_id", inscID), zap.Error(err))
		return 500, gin.H{"error": "could not record attendance"}
	}
	if tag.RowsAffected() == 0 {
		// Lost the race to another scanner. The row is verified by now, so
		// report it that way with the timestamp the winner wrote.
		insc.Asistencia = true
		_ = db.QueryRow(ctx,
			"SELECT fecha_asistencia FROM inscripciones WHERE id=$1", inscID,
		).Scan(&insc.FechaAsistencia)
		return 200, gin.H{
			"status":           "already-verified",
			"inscripcion":      insc,
			"evento":           ev,
			"fecha_asistencia": insc.FechaAsistencia,
		}
	}

	logAction(db, actor, "verify_asistencia",
		"evento_id="+strconv.Itoa(eventoID)+" inscripcion_id="+strconv.Itoa(inscID))

	insc.Asistencia = true
	insc.FechaAsistencia = &now
	return 200, gin.H{"status": "success", "inscripcion": insc, "evento": ev}
}
