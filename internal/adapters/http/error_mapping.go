package httpadapter

import (
	"net/http"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAssessmentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
