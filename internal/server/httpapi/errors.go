package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

// respondWithServiceError maps service errors to status codes. Unknown
// errors are logged and reported as 500 without detail.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		respondWithError(w, http.StatusBadRequest, common.ValidationMessage(err))
	case errors.Is(err, common.ErrorIncorrectData):
		respondWithError(w, http.StatusBadRequest, "Invalid data")
	case errors.Is(err, common.ErrorNotFound):
		respondWithError(w, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		respondWithError(w, http.StatusBadRequest, "Email exists")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked),
		errors.Is(err, common.ErrRefreshTokenExpired):
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
	default:
		s.logger.Error(r.Context(), "request failed",
			"path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
