package fakebackend

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-internship-session/users"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type registerRequest struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Surname      string  `json:"surname"`
	DepartmentID *string `json:"departmentId"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type resetToken struct {
	token     string
	expiresAt time.Time
}

// LoginHandler exchanges an e-mail and password for an access token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := s.users.GetByEmail(strings.TrimSpace(req.Email))
		if err != nil || user == nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		accessToken, err := s.issuer.Issue(user.ID, string(user.Role))
		if err != nil {
			log.Err(err).Str("user", user.ID).Msg("failed to issue access token")
			writeError(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}

		writeResult(w, http.StatusOK, loginResult{
			AccessToken:  accessToken,
			RefreshToken: uuid.NewString(),
		})
	}
}

// RegisterHandler creates a student account and mails its initial password.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		email := strings.TrimSpace(req.Email)
		if email == "" || !strings.Contains(email, "@") {
			writeError(w, http.StatusBadRequest, "A valid email is required")
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Surname) == "" {
			writeError(w, http.StatusBadRequest, "Name and surname are required")
			return
		}
		if existing, err := s.users.GetByEmail(email); err == nil && existing != nil {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}

		password := initialPassword()
		hash, err := users.HashPassword(password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create account")
			return
		}

		user := &users.User{
			Name:         strings.TrimSpace(req.Name),
			Surname:      strings.TrimSpace(req.Surname),
			Email:        email,
			Role:         users.RoleStudent,
			Permissions:  []users.Permission{users.PermissionSubmitApplications, users.PermissionUploadDocuments},
			PasswordHash: hash,
		}
		if req.DepartmentID != nil {
			user.DepartmentID = *req.DepartmentID
		}
		if err := s.users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create account")
			return
		}

		s.mailbox.send(Mail{To: email, Kind: MailWelcome, Secret: password})
		writeResult(w, http.StatusCreated, user)
	}
}

// ForgotPasswordHandler mails a reset token. It answers 204 whether or not
// the address is known.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := s.users.GetByEmail(strings.TrimSpace(req.Email))
		if err == nil && user != nil {
			token := uuid.NewString()
			s.resetLock.Lock()
			s.resetTokens[strings.ToLower(user.Email)] = resetToken{
				token:     token,
				expiresAt: time.Now().Add(s.resetTokenTTL),
			}
			s.resetLock.Unlock()
			s.mailbox.send(Mail{To: user.Email, Kind: MailPasswordReset, Secret: token})
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ResetPasswordHandler sets a new password using a mailed reset token.
func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if req.NewPassword != req.ConfirmPassword {
			writeError(w, http.StatusBadRequest, "Passwords do not match")
			return
		}
		if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !s.consumeResetToken(email, req.Token) {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}

		hash, err := users.HashPassword(req.NewPassword)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset password")
			return
		}
		if err := s.users.SetPasswordHash(email, hash); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// consumeResetToken reports whether token is the pending token for email and
// removes it when it is.
func (s *Server) consumeResetToken(email, token string) bool {
	s.resetLock.Lock()
	defer s.resetLock.Unlock()

	pending, ok := s.resetTokens[email]
	if !ok || token == "" {
		return false
	}
	if time.Now().After(pending.expiresAt) {
		delete(s.resetTokens, email)
		return false
	}
	if subtle.ConstantTimeCompare([]byte(pending.token), []byte(token)) != 1 {
		return false
	}
	delete(s.resetTokens, email)
	return true
}

// initialPassword returns a random password that passes
// users.ValidatePasswordStrength.
func initialPassword() string {
	return fmt.Sprintf("Welcome-%s-1", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
