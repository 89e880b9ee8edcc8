package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/server/models"
	"github.com/dklimov/taskvault/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{Token: res.Token, User: toUserResponse(res.User)}
}

// SignupHandler creates an account and returns 201 with a token.
func (s *HTTPServer) SignupHandler(w http.ResponseWriter, r *http.Request) {

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body"})
		return
	}

	result, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, common.ErrorValidation) && !errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Error(r.Context(), "signup failed", "error", err.Error())
		}
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", result.User.ID)
	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

// SigninHandler authenticates and returns 200 with a token. Unknown email and
// wrong password produce the same response.
func (s *HTTPServer) SigninHandler(w http.ResponseWriter, r *http.Request) {

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body"})
		return
	}

	result, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid email or password"})
			return
		}
		s.logger.Error(r.Context(), "signin failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// SignoutHandler acknowledges sign-out. Tokens are stateless, so no server
// state changes; an invalid or expired token is still acknowledged because
// the client drops the token either way. A missing bearer header is the one
// case that gets a 401.
func (s *HTTPServer) SignoutHandler(w http.ResponseWriter, r *http.Request) {

	token, ok := bearerToken(r)
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return
	}

	if _, err := s.users.Signout(r.Context(), token); err != nil {
		s.logger.Debug(r.Context(), "signout with unverifiable token", "reason", err.Error())
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully signed out"})
}
