package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/grocer-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// RequireQuery returns the trimmed query value or a validation error carrying msg.
func RequireQuery(r *http.Request, key, msg string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	return raw, nil
}

// PathID parses a positive integer route parameter.
func PathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Invalid "+key)
	}
	return id, nil
}
