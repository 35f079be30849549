package http

import (
	"context"
	"errors"
	"net/http"

	"vibeledger/internal/auth"
	"vibeledger/internal/core"
	"vibeledger/internal/log"
)

type sessionKey struct{}

// session returns the verified session stored by requireAuth.
func session(ctx context.Context) auth.Session {
	sess, _ := ctx.Value(sessionKey{}).(auth.Session)
	return sess
}

// sessionToken returns the raw cookie token for the request, or "".
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// requireAuth verifies the session cookie and stores the session in the
// request context. Browsers get redirected to the auth screen; HTMX
// requests get a 401 so the client-side handler can do the same.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		sess, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next(w, r.WithContext(ctx))
	})
}

// handleIndex shows the marketing page with the auth card, or sends a
// signed-in visitor straight to their dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.Verify(r.Context(), sessionToken(r)); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := struct {
		Mode core.AuthMode
	}{Mode: core.AuthSignIn}
	s.render(w, r, "index_page", data)
}

// handlePage serves a static content page (about, pricing).
func (s *Server) handlePage(name string) http.HandlerFunc {
	tmpl := name + "_page"
	return func(w http.ResponseWriter, r *http.Request) {
		signedIn := false
		if _, err := s.auth.Verify(r.Context(), sessionToken(r)); err == nil {
			signedIn = true
		}
		s.render(w, r, tmpl, struct{ SignedIn bool }{signedIn})
	}
}

// handleAuthToggle flips the auth card between sign-in and sign-up and
// re-renders it. Anonymous visitors carry no server-side state, so the
// posted mode seeds a throwaway view state and the controller performs
// the flip.
func (s *Server) handleAuthToggle(w http.ResponseWriter, r *http.Request) {
	vs := core.NewViewState(core.AuthMode(r.FormValue("mode")))
	vs.ToggleAuthMode()
	s.render(w, r, "auth_card", struct{ Mode core.AuthMode }{vs.AuthMode()})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errorFragment(http.StatusBadRequest, "Invalid request").Write(w)
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")
	name := sanitizeInput(r.Form.Get("display_name"))

	token, sess, err := s.auth.SignUp(r.Context(), email, password, name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			errorFragment(http.StatusUnprocessableEntity, "That email is already registered").Write(w)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
			errorFragment(http.StatusUnprocessableEntity, err.Error()).Write(w)
		default:
			s.logger.ErrorContext(r.Context(), "sign-up failed",
				log.FieldOperation, log.OpSignUp, log.FieldError, err)
			errorFragment(http.StatusInternalServerError, "Could not create your account").Write(w)
		}
		return
	}

	s.logger.InfoContext(r.Context(), "account created",
		log.FieldOperation, log.OpSignUp, log.FieldOwner, sess.UserID)

	setSessionCookie(w, token, int(s.auth.Lifetime().Seconds()))
	NewResponse().Header("HX-Redirect", "/dashboard").Write(w)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errorFragment(http.StatusBadRequest, "Invalid request").Write(w)
		return
	}

	token, sess, err := s.auth.SignIn(r.Context(), sanitizeInput(r.Form.Get("email")), r.Form.Get("password"))
	if err != nil {
		// One message for every failure mode.
		errorFragment(http.StatusUnauthorized, "Invalid email or password").Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "signed in",
		log.FieldOperation, log.OpSignIn, log.FieldOwner, sess.UserID)

	setSessionCookie(w, token, int(s.auth.Lifetime().Seconds()))
	NewResponse().Header("HX-Redirect", "/dashboard").Write(w)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		s.panels.drop(token)
	}
	clearSessionCookie(w)
	if r.Header.Get("HX-Request") == "true" {
		NewResponse().Header("HX-Redirect", "/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
