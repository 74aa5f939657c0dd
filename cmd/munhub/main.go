package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"github.com/munhub-dev/munhub/db"
	"github.com/munhub-dev/munhub/internal/auth"
	"github.com/munhub-dev/munhub/internal/config"
	"github.com/munhub-dev/munhub/internal/handlers"
	"github.com/munhub-dev/munhub/internal/mailer"
	"github.com/munhub-dev/munhub/internal/payments"
	"github.com/munhub-dev/munhub/internal/router"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/storage"
	"github.com/munhub-dev/munhub/internal/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	conn, err := db.Connect(cfg.DatabaseURL)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := db.Seed(conn, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	files, err := storage.NewStore(cfg.UploadsDir)

	if err != nil {
		log.Fatalf("Failed to prepare uploads directory: %v", err)
	}

	var gateway payments.Gateway = payments.Disabled{}

	if cfg.PaymentsConfigured() {
		gateway = payments.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		log.Println("Payment gateway credentials not set, payments are disabled")
	}

	var transport mailer.Mailer

	if cfg.MailConfigured() {
		transport = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		log.Println("SMTP credentials not set, outbound mail is disabled")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, auth.DefaultTTL)
	dispatcher := mailer.NewDispatcher(conn, transport)
	activity := services.NewActivityRecorder(conn)
	paymentSvc := services.NewPaymentService(conn, gateway, cfg.RazorpayKeySecret)
	feed := handlers.NewCheckInFeed(wsOriginCheck())

	r := router.New(router.Deps{
		DB:            conn,
		Tokens:        tokens,
		UploadsDir:    cfg.UploadsDir,
		Auth:          handlers.NewAuthHandler(conn, tokens),
		Users:         handlers.NewUserHandler(conn, activity),
		Registrations: handlers.NewRegistrationHandler(conn, files, dispatcher, activity),
		Committees:    handlers.NewCommitteeHandler(conn, activity),
		Pricing:       handlers.NewPricingHandler(conn, activity),
		Payments:      handlers.NewPaymentHandler(conn, paymentSvc, dispatcher, activity),
		CheckIns:      handlers.NewCheckInHandler(conn, feed, activity),
		Accommodation: handlers.NewAccommodationHandler(conn, activity),
		Events:        handlers.NewEventHandler(conn, activity),
		Attendance:    handlers.NewAttendanceHandler(conn, activity),
		Marks:         handlers.NewMarkHandler(conn, activity),
		Contact:       handlers.NewContactHandler(conn, activity),
		Notifications: handlers.NewNotificationHandler(conn, dispatcher, activity),
		Popups:        handlers.NewPopupHandler(conn, activity),
		Resources:     handlers.NewResourceHandler(conn, files, activity),
		ActivityLogs:  handlers.NewActivityLogHandler(conn),
		Dashboard:     handlers.NewDashboardHandler(conn),
		CheckInFeed:   feed,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func wsOriginCheck() func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if origin == "" {
			return true
		}

		for _, allowed := range types.AllowedOrigins {
			if strings.EqualFold(origin, allowed) {
				return true
			}
		}

		return false
	}
}
