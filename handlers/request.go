package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/upb/lead-gateway/services"
	"github.com/upb/lead-gateway/utils"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds every JSON request body
const MaxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// decodeBody decodes exactly one JSON value from the request body into dst.
// Failures come back as validation errors, except errBodyTooLarge.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return services.ErrEmptyBody
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return services.Validation(fmt.Sprintf("%s must be a JSON %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String())))
		case errors.As(err, &typeErr):
			return services.Validation("request body must be a JSON object")
		default:
			return services.Validation("request body is not valid JSON")
		}
	}

	if dec.More() {
		return services.Validation("request body must contain a single JSON value")
	}
	return nil
}

func jsonKind(goKind string) string {
	switch goKind {
	case "map", "struct":
		return "object"
	case "slice", "array":
		return "array"
	case "int", "int64", "float64", "float32":
		return "number"
	case "bool":
		return "boolean"
	default:
		return goKind
	}
}

// writeDecodeError writes the response for a decodeBody failure
func writeDecodeError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if errors.Is(err, errBodyTooLarge) {
		if err := utils.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large", nil); err != nil {
			logger.Error("failed to write payload too large response", zap.Error(err))
		}
		return
	}
	HandleServiceError(w, err, logger)
}
