// Package server provides HTTP server initialization and lifecycle
// management for the Banyan API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/banyan/internal/assets"
	"github.com/scrypster/banyan/internal/auth"
	"github.com/scrypster/banyan/internal/config"
	"github.com/scrypster/banyan/internal/engine"
	"github.com/scrypster/banyan/internal/notify"
	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server. Returns the actual
// address being listened on (useful for testing with port 0) and the
// WebSocketHub, or an error when the listener or a dependency cannot be
// created.
func Start(ctx context.Context, cfg *config.Config, store storage.Store) (string, *handlers.WebSocketHub, error) {
	devMode := cfg.Security.SecurityMode == "development"

	secret := cfg.Security.JWTSecret
	if secret == "" && devMode {
		// Tokens issued against an ephemeral secret do not survive a
		// restart; development only.
		secret = uuid.NewString()
		log.Println("WARNING: no JWT secret configured, using an ephemeral development secret")
	}

	tokens, err := auth.NewManager(secret, cfg.Security.TokenTTL)
	if err != nil {
		return "", nil, err
	}

	photoStore, err := assets.NewDiskStore(cfg.Assets.Path, cfg.Assets.BaseURL, cfg.Assets.MaxUploadMB)
	if err != nil {
		return "", nil, err
	}

	wsHub := handlers.NewWebSocketHub(tokens)
	go wsHub.Run()

	dispatcher := notify.NewDispatcher(store, wsHub, nil)
	relationService := engine.NewRelationService(store, dispatcher, nil)
	treeBuilder := engine.NewTreeBuilder(store)

	authHandlers := handlers.NewAuthHandlers(store, tokens)
	personHandlers := handlers.NewPersonHandlers(store)
	relationHandlers := handlers.NewRelationHandlers(relationService, treeBuilder)
	notificationHandlers := handlers.NewNotificationHandlers(store)
	uploadHandlers := handlers.NewUploadHandlers(photoStore)

	rateLimiter := handlers.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)

	// Authenticated API routes.
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			personHandlers.GetMe(w, r)
		case http.MethodPut:
			personHandlers.UpdateMe(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/relations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			relationHandlers.ListRelations(w, r)
		case http.MethodPost:
			relationHandlers.CreateRelation(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/relations/requests", relationHandlers.ListRequests)
	apiMux.HandleFunc("/api/relations/tree", relationHandlers.GetTree)

	apiMux.HandleFunc("/api/relations/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			relationHandlers.UpdateRelation(w, r)
		case http.MethodDelete:
			relationHandlers.DeleteRelation(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/relations/{id}/approve", relationHandlers.ApproveRelation)
	apiMux.HandleFunc("/api/relations/{id}/reject", relationHandlers.RejectRelation)

	apiMux.HandleFunc("/api/relation-types", relationHandlers.ListRelationTypes)

	apiMux.HandleFunc("/api/notifications", notificationHandlers.ListNotifications)
	apiMux.HandleFunc("/api/notifications/read-all", notificationHandlers.MarkAllRead)
	apiMux.HandleFunc("/api/notifications/{id}/read", notificationHandlers.MarkRead)

	apiMux.HandleFunc("/api/upload", uploadHandlers.UploadPhoto)

	mux := http.NewServeMux()

	// Auth endpoints sit outside the token-protected prefix.
	mux.HandleFunc("/api/auth/check-phone", authHandlers.CheckPhone)
	mux.HandleFunc("/api/auth/register", authHandlers.Register)
	mux.HandleFunc("/api/auth/login", authHandlers.Login)

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	mux.Handle("/api/", handlers.RequireAuth(apiMux, tokens, devMode))

	// WebSocket endpoint authenticates its own token query parameter.
	mux.Handle("/ws", wsHub)

	// Uploaded photos.
	fs := http.FileServer(http.Dir(photoStore.Dir()))
	mux.Handle(cfg.Assets.BaseURL+"/", http.StripPrefix(cfg.Assets.BaseURL+"/", fs))

	// Wrap entire server with rate limiting, then security headers.
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub, nil
}
