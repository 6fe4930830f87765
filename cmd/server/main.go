package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"bookflow/internal/api"
	"bookflow/internal/auth"
	"bookflow/internal/calendar"
	"bookflow/internal/repository"
	"bookflow/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	loc := time.UTC
	if tz := os.Getenv("BOOKING_TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("Invalid BOOKING_TIMEZONE %q: %v", tz, err)
		}
	}

	var provider calendar.BusyIntervalProvider
	googleProvider, err := calendar.NewGoogleProvider(10*time.Second, loc)
	if err != nil {
		log.Printf("External calendar disabled: %v", err)
		provider = calendar.NewNoopProvider()
	} else {
		provider = googleProvider
	}

	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	jobRepo := repository.NewJobRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	sender := service.NewSenderService(loc)
	bookingSvc := service.NewBookingService(availabilityRepo, bookingRepo, provider, sender, loc)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)
	jobSvc := service.NewJobService(jobRepo, bookingSvc)

	// Warm the blocked-date cache; a failed sync just means no external
	// blocking until the next attempt.
	bookingSvc.SyncExternalCalendar(context.Background())

	bookingHandler := api.NewBookingHandler(bookingSvc, bookingRepo)
	adminHandler := api.NewAdminHandler(availabilitySvc, bookingRepo)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	c := cron.New()
	c.AddFunc("@every 1h", func() {
		jobSvc.RefreshExternalCalendar(context.Background())
	})
	c.AddFunc("15 3 * * *", func() {
		if err := jobSvc.CompletePastBookings(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/slots", bookingHandler.GetSlots).Methods("GET")
	r.HandleFunc("/api/dates/{date}/selectable", bookingHandler.IsDateSelectable).Methods("GET")
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/calendar/sync", bookingHandler.SyncCalendar).Methods("POST")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/availability", adminHandler.ListRules).Methods("GET")
	admin.HandleFunc("/availability", adminHandler.SaveRule).Methods("PUT")
	admin.HandleFunc("/availability/{id}", adminHandler.DeleteRule).Methods("DELETE")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{code}", adminHandler.CancelBooking).Methods("DELETE")
	admin.HandleFunc("/users", adminAuthHandler.CreateAdminUser).Methods("POST")

	allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{allowedOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(r)))
}
