/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the chat service,
the classifier and the optional database into the router.
*/
package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"FoodAdvisor_V0.1/internal/chatbot"
	"FoodAdvisor_V0.1/internal/classifier"
	"FoodAdvisor_V0.1/internal/config"
	"FoodAdvisor_V0.1/internal/database"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

// Deps are the services the transport hands requests to.
type Deps struct {
	Chat       *chatbot.Service
	Classifier *classifier.Service

	// Store is the session memory backend, probed by /health when it supports Ping.
	Store chatbot.MemoryStore

	// DB is nil unless the dataset is read from PostgreSQL.
	DB database.Service
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	cfg  *config.Config
	deps Deps

	// cookies keeps the chat session id of browser clients.
	cookies *sessions.CookieStore

	// jwtSecret validates bearer tokens; empty disables bearer identity.
	jwtSecret []byte
}

// New builds the Server. Call RegisterRoutes for its handler.
func New(cfg *config.Config, deps Deps) *Server {
	secret := []byte(cfg.SessionSecret)
	cookieKey := secret
	if len(cookieKey) == 0 {
		cookieKey = make([]byte, 32)
		if _, err := rand.Read(cookieKey); err != nil {
			panic(fmt.Sprintf("generate cookie key: %v", err))
		}
		log.Warn().Msg("SESSION_SECRET not set, chat cookies will not survive a restart and bearer tokens are ignored")
	}

	store := sessions.NewCookieStore(cookieKey)
	store.MaxAge(int(cfg.SessionTTL / time.Second))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.IsProduction()
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		port:      cfg.Port,
		cfg:       cfg,
		deps:      deps,
		cookies:   store,
		jwtSecret: secret,
	}
}

// NewServer initializes a new Server instance and returns a configured *http.Server
// with production-ready network timeouts.
func NewServer(cfg *config.Config, deps Deps) *http.Server {
	newApp := New(cfg, deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,             // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,        // Maximum duration for reading the entire request.
		WriteTimeout: 30 * time.Second,        // Maximum duration before timing out writes of the response.
	}
}
