package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SorrisoKids/clinic-go/internal/auth"
	"github.com/SorrisoKids/clinic-go/internal/config"
	"github.com/SorrisoKids/clinic-go/internal/database"
	"github.com/SorrisoKids/clinic-go/internal/email"
	"github.com/SorrisoKids/clinic-go/internal/handlers"
	"github.com/SorrisoKids/clinic-go/internal/maintenance"
	"github.com/SorrisoKids/clinic-go/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	sessions := auth.NewSessionService(cfg.JWTSecret, cfg.JWTIssuer)
	emails := email.NewService(cfg, log.Logger)

	maintenance.StartTokenPurge(ctx, db, time.Duration(cfg.TokenPurgeIntervalMin)*time.Minute, log.Logger)

	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": Version})
	})

	api := r.Group("/api")

	// Public
	api.POST("/auth/guardian/login", handlers.GuardianLogin(db, sessions))
	api.POST("/auth/dentist/login", handlers.DentistLogin(db, sessions))
	api.POST("/auth/admin/login", handlers.AdminLogin(db, sessions))
	api.POST("/auth/logout", handlers.Logout)
	api.POST("/auth/forgot-password", handlers.ForgotPassword(db, emails))
	api.POST("/auth/reset-password", handlers.ResetPassword(db))
	api.GET("/auth/verify-email", handlers.VerifyEmail(db))
	api.POST("/guardians", handlers.RegisterGuardian(db, emails))
	api.POST("/volunteers", handlers.ApplyVolunteer(db))

	// Any authenticated role
	authed := api.Group("", middleware.RequireAuth(sessions))
	authed.GET("/schedule/calendar", handlers.MonthlyCalendar(db))
	authed.GET("/schedule/available", handlers.AvailableSlots(db))
	authed.GET("/appointments", handlers.ListAppointments(db))

	// Guardian self-service
	profile := authed.Group("/profile", middleware.RequireRole(auth.RoleGuardian))
	profile.GET("", handlers.GetProfile(db))
	profile.PUT("", handlers.UpdateProfile(db))
	profile.PUT("/password", handlers.ChangePassword(db))
	profile.GET("/children", handlers.ListMyChildren(db))
	profile.POST("/children", handlers.CreateChild(db))
	profile.PUT("/children/:id", handlers.UpdateChild(db))
	profile.DELETE("/children/:id", handlers.DeactivateChild(db))

	// Booking: guardians for their own children, admins for any
	booking := authed.Group("", middleware.RequireRole(auth.RoleGuardian, auth.RoleAdmin))
	booking.POST("/appointments", handlers.BookAppointment(db, emails))
	booking.PUT("/appointments/:id", handlers.RescheduleAppointment(db))
	booking.DELETE("/appointments/:id", handlers.CancelAppointment(db))

	// Odontograms: all roles may read (guardians only their own children),
	// dentists and admins may edit
	authed.GET("/children/:id/odontogram",
		middleware.RequireRole(auth.RoleGuardian, auth.RoleDentist, auth.RoleAdmin),
		handlers.GetChildOdontogram(db))

	charts := authed.Group("", middleware.RequireRole(auth.RoleDentist, auth.RoleAdmin))
	charts.POST("/odontograms/:id/treatments", handlers.AddTreatment(db))
	charts.PUT("/odontograms/:id/notes", handlers.UpdateOdontogramNotes(db))
	charts.PUT("/treatments/:id", handlers.UpdateTreatment(db))
	charts.DELETE("/treatments/:id", handlers.RemoveTreatment(db))

	// Admin
	admin := authed.Group("/admin", middleware.RequireRole(auth.RoleAdmin))
	admin.GET("/guardians", handlers.ListGuardians(db))
	admin.GET("/guardians/:id", handlers.GetGuardian(db))
	admin.PUT("/guardians/:id", handlers.UpdateGuardian(db))
	admin.DELETE("/guardians/:id", handlers.DeleteGuardian(db))
	admin.POST("/guardians/:id/children", handlers.AdminCreateChild(db))
	admin.PUT("/children/:id", handlers.UpdateChild(db))
	admin.DELETE("/children/:id", handlers.DeactivateChild(db))
	admin.GET("/dentists", handlers.ListDentists(db))
	admin.POST("/dentists", handlers.CreateDentist(db))
	admin.GET("/dentists/:id", handlers.GetDentist(db))
	admin.PUT("/dentists/:id", handlers.UpdateDentist(db))
	admin.DELETE("/dentists/:id", handlers.DeleteDentist(db))
	admin.POST("/schedule", handlers.CreateScheduleBlocks(db))
	admin.DELETE("/schedule/:id", handlers.DeleteScheduleBlock(db))
	admin.GET("/volunteers", handlers.ListVolunteers(db))
	admin.GET("/volunteers/:id", handlers.GetVolunteer(db))
	admin.POST("/volunteers/:id/approve", handlers.ApproveVolunteer(db, emails))
	admin.POST("/volunteers/:id/reject", handlers.RejectVolunteer(db))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("version", Version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
