package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/termgate/termgate/internal/audit"
	"github.com/termgate/termgate/internal/auth"
	"github.com/termgate/termgate/internal/config"
	"github.com/termgate/termgate/internal/database"
	"github.com/termgate/termgate/internal/gateway"
	"github.com/termgate/termgate/internal/handlers"
	"github.com/termgate/termgate/internal/logging"
	"github.com/termgate/termgate/internal/middleware"
	"github.com/termgate/termgate/internal/sshconn"
)

// dbStore serves server records and key material to the gateway straight
// from the database, so credential changes apply on the next call.
type dbStore struct{}

func (dbStore) GetServer(id uint) (*database.Server, error) { return database.GetServer(id) }
func (dbStore) GetKey(id uint) (*database.SSHKey, error)    { return database.GetSSHKey(id) }

func main() {
	// Handle CLI commands before starting the server
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--create-admin":
			runCLICommand("create-admin")
			return
		case "--reset-password":
			runCLICommand("reset-password")
			return
		}
	}

	config.Load()

	logging.Init()
	defer logging.Close()

	if err := database.Init(); err != nil {
		log.Fatalf("Database init: %v", err)
	}
	defer database.Close()

	log.Printf("Config: ListenAddr=%s, AuthDisabled=%v", config.Cfg.ListenAddr, config.Cfg.AuthDisabled)

	// Init session store
	sessionStore := auth.NewSessionStore()
	handlers.SessionStore = sessionStore

	// Session cleanup goroutine
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionStore.Cleanup()
		}
	}()

	// Init terminal gateway
	factory := sshconn.NewFactory(dbStore{})
	factory.ConnectTimeout = parseDurationOr(config.Cfg.SSHConnectTimeout, sshconn.DefaultConnectTimeout)
	factory.IdleTimeout = parseDurationOr(config.Cfg.SSHCommandTimeout, sshconn.DefaultIdleTimeout)

	sessionTTL := parseDurationOr(config.Cfg.TerminalSessionTTL, gateway.SessionTTL)
	gate := gateway.New(dbStore{}, gateway.NewMemoryRegistry(), gateway.NewBroker(), factory, sessionTTL)
	handlers.Gate = gate
	log.Printf("Terminal gateway initialized (session_ttl=%s, connect_timeout=%s, command_timeout=%s)",
		sessionTTL, factory.ConnectTimeout, factory.IdleTimeout)

	// Init audit trail with daily pruning
	auditor := audit.NewAuditor(database.DB, config.Cfg.AuditRetentionDays)
	handlers.Auditor = auditor

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		if _, err := auditor.Prune(); err != nil {
			log.Printf("Audit prune: %v", err)
		}
	}); err != nil {
		log.Fatalf("Audit prune schedule: %v", err)
	}
	scheduler.Start()

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	// Health (no auth)
	r.Get("/health", handlers.HealthCheck)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (no auth required)
		r.Post("/auth/login", handlers.Login)

		// Protected routes (require auth)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionStore))

			r.Post("/auth/logout", handlers.Logout)
			r.Get("/auth/me", handlers.GetCurrentUser)

			// Terminal sessions
			r.Post("/terminal/connect", handlers.ConnectTerminal)
			r.Post("/terminal/input", handlers.SendTerminalInput)
			r.Post("/terminal/disconnect", handlers.DisconnectTerminal)
			r.Get("/terminal/sessions/{sessionId}/events", handlers.TerminalEvents)

			// Servers
			r.Get("/servers", handlers.ListServers)
			r.Post("/servers", handlers.CreateServer)
			r.Put("/servers/{id}", handlers.UpdateServer)

			// SSH keys
			r.Get("/ssh-keys", handlers.ListSSHKeys)
			r.Post("/ssh-keys", handlers.GenerateSSHKey)
			r.Put("/ssh-keys/{id}", handlers.UpdateSSHKey)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Delete("/servers/{id}", handlers.DeleteServer)
				r.Post("/servers/bulk-delete", handlers.BulkDeleteServers)
				r.Delete("/ssh-keys/{id}", handlers.DeleteSSHKey)
				r.Post("/ssh-keys/bulk-delete", handlers.BulkDeleteSSHKeys)
			})
		})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:    config.Cfg.ListenAddr,
		Handler: r,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", config.Cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("Shutting down...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func runCLICommand(command string) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	fs.Parse(os.Args[2:])

	if *username == "" || *password == "" {
		fmt.Fprintf(os.Stderr, "Usage: termgate --%s --username <user> --password <pass>\n", command)
		os.Exit(1)
	}

	config.Load()
	if err := database.Init(); err != nil {
		log.Fatalf("Database init: %v", err)
	}
	defer database.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	switch command {
	case "create-admin":
		user := &database.User{
			Username:     *username,
			PasswordHash: hash,
			Role:         "admin",
		}
		if err := database.CreateUser(user); err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("Admin user '%s' created successfully.\n", *username)

	case "reset-password":
		user, err := database.GetUserByUsername(*username)
		if err != nil {
			log.Fatalf("User '%s' not found", *username)
		}
		if err := database.UpdateUserPassword(user.ID, hash); err != nil {
			log.Fatalf("Failed to update password: %v", err)
		}
		fmt.Printf("Password reset for '%s'. Note: existing sessions will expire within 1 hour.\n", *username)
	}
}
