package httpsvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/validation"
)

const (
	msgNotFound    = "Oh No! - 404 - Resource Not Found"
	msgInternal    = "It's our fault... Internal Server Error"
	msgUnavailable = "Storage is temporarily unavailable, please retry later"
	msgRateLimited = "Too many requests from this IP, please try again after 15 minutes"
)

// statusFor переводит доменные ошибки в HTTP-статус и код ошибки.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "duplicate_key"
	case errors.Is(err, domain.ErrUnknownProduct):
		return http.StatusBadRequest, "unknown_product"
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, "missing_field"
	case errors.Is(err, domain.ErrInvalidType):
		return http.StatusBadRequest, "invalid_type"
	case errors.Is(err, domain.ErrInvalidEnum):
		return http.StatusBadRequest, "invalid_enum"
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, validation.ErrMalformedBody):
		return http.StatusBadRequest, "malformed_body"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// publicMessage скрывает детали внутренних ошибок от клиента.
func publicMessage(err error) string {
	status, _ := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		return msgInternal
	case http.StatusServiceUnavailable:
		return msgUnavailable
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
		}).Error("request failed")
	}

	writeJSON(w, status, errorResponse{Error: publicMessage(err), Code: code})
}

// notFoundError уточняет сообщение для клиента, сохраняя ErrNotFound в цепочке.
type notFoundError struct {
	msg string
}

func (e notFoundError) Error() string { return e.msg }

func (e notFoundError) Unwrap() error { return domain.ErrNotFound }

func describeNotFound(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return notFoundError{msg: fmt.Sprintf(format, args...)}
	}
	return err
}
