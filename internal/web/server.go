// Package web serves the built catalog site: the output tree as static files
// and the product detail page rendered from the catalog document.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/qrcatalog/internal/catalog"
	"github.com/JonMunkholm/qrcatalog/internal/config"
	"github.com/JonMunkholm/qrcatalog/internal/qrcode"
	mw "github.com/JonMunkholm/qrcatalog/internal/web/middleware"
)

// Server is the read-only HTTP server for a built catalog site.
type Server struct {
	cfg      config.ServerConfig
	siteDir  string
	pagePath string
	index    *CatalogIndex
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server over siteDir. pagePath is the detail page route,
// relative to the site root (e.g. "product.html").
func NewServer(cfg config.ServerConfig, siteDir, pagePath string) (*Server, error) {
	info, err := os.Stat(siteDir)
	if err != nil {
		return nil, fmt.Errorf("site directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site directory: %s is not a directory", siteDir)
	}

	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	index, err := NewCatalogIndex(filepath.Join(siteDir, filepath.FromSlash(catalog.DocumentPath)), cacheSize)
	if err != nil {
		return nil, err
	}

	pagePath = strings.Trim(pagePath, "/")
	if pagePath == "" {
		pagePath = qrcode.DefaultPagePath
	}

	realIP, err := mw.RealIP(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("SERVER_TRUSTED_PROXIES: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		siteDir:  siteDir,
		pagePath: pagePath,
		index:    index,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware(realIP)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(realIP func(http.Handler) http.Handler) {
	s.router.Use(middleware.RequestID)
	s.router.Use(realIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Security hardening
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes. Only GET and HEAD are routed; the
// site is never written through the server.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/"+s.pagePath, s.handleProduct)
	s.router.Head("/"+s.pagePath, s.handleProduct)

	files := http.FileServer(http.Dir(s.siteDir))
	s.router.Get("/*", files.ServeHTTP)
	s.router.Head("/*", files.ServeHTTP)
}

// Start begins listening for HTTP requests. It returns nil once Shutdown has
// been called, including when Shutdown ran first.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr, "site", s.siteDir)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Product images may live on any https host; everything else is local.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data: https:")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
