package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hiredeck/hireauth"
	"github.com/hiredeck/hireauth/middleware"
)

const refreshCookieName = "refreshToken"

// Config controls transport-level behavior of the server.
type Config struct {
	// CookieSecure marks the refresh cookie Secure. Leave false only for
	// plain-HTTP development setups.
	CookieSecure bool
	// CookiePath scopes the refresh cookie. Defaults to /auth.
	CookiePath string
	// RefreshTTL sets the refresh cookie Max-Age. Defaults to the engine's
	// refresh token lifetime when zero.
	RefreshTTL time.Duration
}

// Server adapts an engine to HTTP handlers.
type Server struct {
	engine *hireauth.Engine
	config Config
}

// NewServer wraps the engine. The engine must already be built.
func NewServer(engine *hireauth.Engine, cfg Config) *Server {
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/auth"
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Server{engine: engine, config: cfg}
}

// Routes returns a mux with all auth endpoints registered.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.Handle("GET /auth/me", middleware.Authenticate(s.engine)(http.HandlerFunc(s.handleMe)))
	return mux
}

// Guard exposes role enforcement for routes mounted outside this package.
func (s *Server) Guard(role hireauth.Role) func(http.Handler) http.Handler {
	return middleware.Guard(s.engine, role)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User        hireauth.Account `json:"user"`
	AccessToken string           `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ctx := requestContext(r)
	account, pair, err := s.engine.Register(ctx, hireauth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     hireauth.Role(req.Role),
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.setRefreshCookie(w, pair.Refresh)
	writeJSON(w, http.StatusCreated, sessionResponse{User: account, AccessToken: pair.Access})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ctx := requestContext(r)
	account, pair, err := s.engine.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.setRefreshCookie(w, pair.Refresh)
	writeJSON(w, http.StatusOK, sessionResponse{User: account, AccessToken: pair.Access})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	pair, err := s.engine.Refresh(requestContext(r), cookie.Value)
	if err != nil {
		// A failed refresh ends the session client-side as well.
		if errors.Is(err, hireauth.ErrInvalidOrExpiredToken) {
			s.clearRefreshCookie(w)
		}
		s.writeEngineError(w, err)
		return
	}

	if pair.Refresh != "" {
		s.setRefreshCookie(w, pair.Refresh)
	}
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: pair.Access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}

	if err := s.engine.Logout(requestContext(r), token); err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := s.engine.CurrentAccount(r.Context(), p)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     s.config.CookiePath,
		MaxAge:   int(s.config.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     s.config.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, errorStatus(err), err.Error())
}

// errorStatus maps engine sentinels onto HTTP statuses. Unknown errors are
// 500s so infrastructure failures never masquerade as client mistakes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, hireauth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, hireauth.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, hireauth.ErrInvalidCredentials),
		errors.Is(err, hireauth.ErrMissingToken),
		errors.Is(err, hireauth.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, hireauth.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, hireauth.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func requestContext(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return hireauth.WithClientIP(r.Context(), host)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
