package fakebackend

import (
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/users"
	"github.com/rs/zerolog/log"
)

// UserInfoHandler returns the profile of the authenticated user.
func (s *Server) UserInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeResult(w, http.StatusOK, user)
	}
}

// UpdateUserHandler applies a partial profile update. Users may update
// themselves, administrators anyone.
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := userFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id := r.PathValue("id")
		if caller.ID != id && !caller.IsAdmin() {
			writeError(w, http.StatusForbidden, "You may only update your own profile")
			return
		}

		var update users.ProfileUpdate
		if !decodeJSON(w, r, &update) {
			return
		}
		if update.Empty() {
			writeError(w, http.StatusBadRequest, "No fields to update")
			return
		}

		user, err := s.users.GetByID(id)
		if errors.Is(err, apperrors.ErrUserNotFound) || (err == nil && user == nil) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			log.Err(err).Str("id", id).Msg("user lookup failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if update.Email != nil {
			email := strings.TrimSpace(*update.Email)
			if email == "" || !strings.Contains(email, "@") {
				writeError(w, http.StatusBadRequest, "A valid email is required")
				return
			}
			if other, err := s.users.GetByEmail(email); err == nil && other != nil && other.ID != user.ID {
				writeError(w, http.StatusConflict, "Email already registered")
				return
			}
			update.Email = &email
		}

		update.Apply(user)
		if err := s.users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		writeResult(w, http.StatusOK, user)
	}
}
