package main

import (
	"time"

	"esports-platform/internal"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := internal.FromEnv()
	if err != nil {
		logger.Fatal("bad configuration", zap.Error(err))
	}

	db := internal.MustDB(cfg.DatabaseURL, logger)
	defer db.Close()

	mailer := internal.NewMailer(cfg, logger)

	internal.StartCleaner(db, logger)

	r := gin.New()
	r.Use(gin.Recovery(), internal.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.POST("/auth/login", internal.Login(db, cfg))
		api.POST("/auth/logout", internal.Logout())
		api.GET("/me", internal.Auth(cfg.JWTSecret), internal.Me(db))

		// reference data for the registration forms
		api.GET("/eventos", internal.ListEventos(db))
		api.GET("/eventos/slug/:slug", internal.GetEventoBySlug(db))
		api.GET("/eventos/:id", internal.GetEvento(db))
		api.GET("/eventos/:id/juegos", internal.ListEventoJuegos(db))
		api.GET("/juegos", internal.ListJuegos(db))

		// registration (public; a logged-in visitor gets tagged on the row)
		api.POST("/eventos/:id/inscripciones",
			internal.MaybeAuth(cfg.JWTSecret),
			internal.RegisterIndividual(db, mailer, cfg, logger))
		api.POST("/eventos/:id/equipos",
			internal.MaybeAuth(cfg.JWTSecret),
			internal.RegisterEquipo(db, mailer, cfg, logger))

		// QR scan confirmation (staff only)
		api.POST("/verify-attendance/:eventoId/:inscripcionId/:token",
			internal.Auth(cfg.JWTSecret), internal.RequireStaff(),
			internal.VerifyAttendance(db, logger))

		// staff dashboard
		staff := api.Group("/admin", internal.Auth(cfg.JWTSecret), internal.RequireStaff())
		{
			staff.GET("/inscripciones", internal.AdminInscripciones(db))
			staff.GET("/inscripciones/export", internal.AdminExportInscripciones(db))
			staff.GET("/eventos/:id/stats", internal.AdminEventoStats(db))

			admin := staff.Group("", internal.RequireAdmin())
			{
				admin.POST("/eventos", internal.AdminCreateEvento(db))
				admin.PUT("/eventos/:id", internal.AdminUpdateEvento(db))

				admin.GET("/usuarios", internal.AdminUsers(db))
				admin.POST("/usuarios", internal.AdminCreateUser(db))
				admin.POST("/usuarios/:id/role", internal.AdminSetRole(db))

				admin.GET("/logs", internal.AdminLogs(db))
			}
		}
	}

	logger.Info("listening", zap.String("port", cfg.Port))
	_ = r.Run(":" + cfg.Port)
}
