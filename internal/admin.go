package internal

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// InscripcionAdmin is one dashboard row: the inscription plus its game names
// aggregated into a single column.
type InscripcionAdmin struct {
	Inscripcion
	Juegos []string `json:"juegos"`
}

func inscripcionesQuery(c *gin.Context) sq.SelectBuilder {
	q := psql.Select(
		"i.id", "i.user_id", "i.nombre", "i.apellido", "i.edad", "i.email",
		"i.celular", "i.localidad", "i.nombre_equipo", "i.evento_id",
		"i.asistencia", "i.fecha_asistencia", "i.qr_code", "i.created_at",
		"COALESCE(array_agg(j.nombre) FILTER (WHERE j.nombre IS NOT NULL), '{}')",
	).
		From("inscripciones i").
		LeftJoin("juegos_inscripciones ji ON ji.inscripcion_id = i.id").
		LeftJoin("juegos j ON j.id = ji.juego_id").
		GroupBy("i.id").
		OrderBy("i.created_at DESC")

	if v := c.Query("evento_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			q = q.Where(sq.Eq{"i.evento_id": id})
		}
	}
	if v := c.Query("juego_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			q = q.Where("i.id IN (SELECT inscripcion_id FROM juegos_inscripciones WHERE juego_id = ?)", id)
		}
	}
	if v := c.Query("asistencia"); v == "true" || v == "false" {
		q = q.Where(sq.Eq{"i.asistencia": v == "true"})
	}
	if v := c.Query("buscar"); v != "" {
		like := "%" + v + "%"
		q = q.Where(sq.Or{
			sq.ILike{"i.nombre": like},
			sq.ILike{"i.apellido": like},
			sq.ILike{"i.email": like},
			sq.ILike{"i.nombre_equipo": like},
		})
	}
	return q
}

func scanInscripciones(ctx context.Context, db *pgxpool.Pool, q sq.SelectBuilder) ([]InscripcionAdmin, error) {
	rows, err := qQuery(ctx, db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []InscripcionAdmin{}
	for rows.Next() {
		var r InscripcionAdmin
		if err := rows.Scan(&r.ID, &r.UserID, &r.Nombre, &r.Apellido, &r.Edad, &r.Email,
			&r.Celular, &r.Localidad, &r.NombreEquipo, &r.EventoID,
			&r.Asistencia, &r.FechaAsistencia, &r.QRCode, &r.CreatedAt, &r.Juegos); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GET /api/admin/inscripciones?evento_id=&juego_id=&asistencia=&buscar=
func AdminInscripciones(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := scanInscripciones(context.Background(), db, inscripcionesQuery(c).Limit(500))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/admin/inscripciones/export — same filters, CSV download.
func AdminExportInscripciones(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := scanInscripciones(context.Background(), db, inscripcionesQuery(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="inscripciones.csv"`)

		w := csv.NewWriter(c.Writer)
		_ = w.Write([]string{"id", "nombre", "apellido", "edad", "email", "celular",
			"localidad", "equipo", "evento_id", "juegos", "asistencia", "fecha_asistencia", "creada"})
		for _, r := range out {
			_ = w.Write(csvRow(r))
		}
		w.Flush()
	}
}

func csvRow(r InscripcionAdmin) []string {
	email, equipo, fecha := "", "", ""
	if r.Email != nil {
		email = *r.Email
	}
	if r.NombreEquipo != nil {
		equipo = *r.NombreEquipo
	}
	if r.FechaAsistencia != nil {
		fecha = r.FechaAsistencia.Format(time.RFC3339)
	}
	juegos := ""
	for i, j := range r.Juegos {
		if i > 0 {
			juegos += ", "
		}
		juegos += j
	}
	return []string{
		strconv.Itoa(r.ID), r.Nombre, r.Apellido, strconv.Itoa(r.Edad), email,
		r.Celular, r.Localidad, equipo, strconv.Itoa(r.EventoID), juegos,
		strconv.FormatBool(r.Asistencia), fecha, r.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/eventos/:id/stats — total vs attended for the check-in desk.
func AdminEventoStats(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}

		var total, asistieron int
		err = qRow(context.Background(), db,
			psql.Select("COUNT(*)", "COUNT(*) FILTER (WHERE asistencia)").
				From("inscripciones").
				Where(sq.Eq{"evento_id": id}),
		).Scan(&total, &asistieron)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, gin.H{"total": total, "asistieron": asistieron})
	}
}

// ------------------- Admin: eventos CRUD -------------------

type eventoRequest struct {
	Nombre      *string `json:"nombre"`
	Slug        *string `json:"slug"`
	FechaInicio string  `json:"fecha_inicio" binding:"required"`
	FechaFin    string  `json:"fecha_fin" binding:"required"`
	HoraInicio  string  `json:"hora_inicio" binding:"required"`
	Localidad   string  `json:"localidad" binding:"required"`
	Direccion   string  `json:"direccion" binding:"required"`
	Juegos      []int   `json:"juegos"`
}

func AdminCreateEvento(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var req eventoRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		ctx := context.Background()
		tx, err := db.Begin(ctx)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer tx.Rollback(ctx)

		var id int
		err = tx.QueryRow(ctx,
			`INSERT INTO eventos(nombre, slug, fecha_inicio, fecha_fin, hora_inicio, localidad, direccion)
			 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
			req.Nombre, req.Slug, req.FechaInicio, req.FechaFin, req.HoraInicio, req.Localidad, req.Direccion,
		).Scan(&id)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		if err := replaceEventoJuegos(ctx, tx, id, req.Juegos); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if err := tx.Commit(ctx); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		logAction(db, &actor, "admin_create_evento", "evento_id="+strconv.Itoa(id))
		c.JSON(201, gin.H{"ok": true, "evento_id": id})
	}
}

func AdminUpdateEvento(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": "bad event id"})
			return
		}
		var req eventoRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}

		ctx := context.Background()
		tx, err := db.Begin(ctx)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer tx.Rollback(ctx)

		tag, err := qExecTx(ctx, tx, psql.Update("eventos").
			Set("nombre", req.Nombre).
			Set("slug", req.Slug).
			Set("fecha_inicio", req.FechaInicio).
			Set("fecha_fin", req.FechaFin).
			Set("hora_inicio", req.HoraInicio).
			Set("localidad", req.Localidad).
			Set("direccion", req.Direccion).
			Where(sq.Eq{"id": id}))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(404, gin.H{"error": "event not found"})
			return
		}

		if err := replaceEventoJuegos(ctx, tx, id, req.Juegos); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if err := tx.Commit(ctx); err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}

		logAction(db, &actor, "admin_update_evento", "evento_id="+strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// replaceEventoJuegos swaps the offered-games set for an event in one go.
func replaceEventoJuegos(ctx context.Context, tx pgx.Tx, eventoID int, juegos []int) error {
	if _, err := tx.Exec(ctx, "DELETE FROM evento_juegos WHERE evento_id=$1", eventoID); err != nil {
		return err
	}
	for _, jid := range juegos {
		if _, err := tx.Exec(ctx,
			"INSERT INTO evento_juegos(evento_id, juego_id) VALUES ($1,$2) ON CONFLICT DO NOTHING",
			eventoID, jid,
		); err != nil {
			return err
		}
	}
	return nil
}

// ------------------- Admin: staff accounts -------------------

func AdminUsers(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(context.Background(),
			"SELECT id, username, role FROM profiles ORDER BY id ASC",
		)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer rows.Close()

		var out []Profile
		for rows.Next() {
			var p Profile
			_ = rows.Scan(&p.ID, &p.Username, &p.Role)
			out = append(out, p)
		}
		c.JSON(200, out)
	}
}

func AdminCreateUser(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.BindJSON(&req); err != nil || req.Username == "" || len(req.Password) < 6 {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if !validRole(req.Role) {
			c.JSON(400, gin.H{"error": "bad role"})
			return
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), 10)

		var id int
		err := db.QueryRow(context.Background(),
			"INSERT INTO profiles(username, pass_hash, role) VALUES ($1,$2,$3) RETURNING id",
			req.Username, string(hash), req.Role,
		).Scan(&id)
		if err != nil {
			c.JSON(409, gin.H{"error": "username already exists"})
			return
		}
		logAction(db, &actor, "admin_create_user", "user_id="+strconv.Itoa(id)+" role="+req.Role)
		c.JSON(201, gin.H{"ok": true, "user_id": id})
	}
}

func AdminSetRole(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := uid(c)
		id, _ := strconv.Atoi(c.Param("id"))
		var req struct {
			Role string `json:"role"`
		}
		if err := c.BindJSON(&req); err != nil || !validRole(req.Role) {
			c.JSON(400, gin.H{"error": "bad request"})
			return
		}
		if id == actor {
			c.JSON(400, gin.H{"error": "cannot change your own role"})
			return
		}
		tag, err := qExec(context.Background(), db,
			psql.Update("profiles").Set("role", req.Role).Where(sq.Eq{"id": id}))
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(404, gin.H{"error": "user not found"})
			return
		}
		logAction(db, &actor, "admin_set_role", "user_id="+strconv.Itoa(id)+" role="+req.Role)
		c.JSON(200, gin.H{"ok": true})
	}
}

func validRole(r string) bool {
	return r == "admin" || r == "coordinador" || r == "user"
}

// ------------------- Admin: audit log -------------------

func AdminLogs(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(context.Background(),
			`SELECT l.id,
			        to_char(l.created_at, 'YYYY-MM-DD HH24:MI:SS') AS created_at,
			        COALESCE(u.username,'(deleted)') AS actor,
			        l.action,
			        l.details
			 FROM logs l
			 LEFT JOIN profiles u ON u.id=l.actor_id
			 ORDER BY l.id DESC LIMIT 200`)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		defer rows.Close()

		type row struct {
			ID        int64  `json:"id"`
			CreatedAt string `json:"created_at"`
			Actor     string `json:"actor"`
			Action    string `json:"action"`
			Details   string `json:"details"`
		}

		out := []row{}
		for rows.Next() {
			var r row
			if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Actor, &r.Action, &r.Details); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "scan"})
				return
			}
			out = append(out, r)
		}

		c.JSON(200, out)
	}
}
