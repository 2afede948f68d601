package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondWithError(w, http.StatusUnauthorized, "Wrong email or password")
			return
		}
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{
		userResponse:  newUserResponse(user),
		tokenResponse: tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		respondWithError(w, http.StatusBadRequest, "Need refresh_token")
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	if err := s.users.Logout(r.Context(), claimsFromContext(r.Context()), req.RefreshToken); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, M{"success": true})
}

func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token, ok := bearerToken(r)
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, M{"authenticated": false})
		return
	}

	claims, err := s.users.Authenticate(r.Context(), token)
	if err != nil {
		respondWithJSON(w, http.StatusUnauthorized, M{"authenticated": false})
		return
	}

	user, err := s.users.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondWithJSON(w, http.StatusUnauthorized, M{"authenticated": false})
			return
		}
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, M{"authenticated": true, "username": user.UserName})
}
