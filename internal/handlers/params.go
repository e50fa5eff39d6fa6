package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/handlers"
)

// maxFormMemory bounds multipart forms kept in memory
const maxFormMemory = 1 << 20

// idParam reads a positive integer path parameter
func idParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s parameter", models.ErrValidation, name)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter, 0 when it is absent
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: invalid %s parameter", models.ErrValidation, name)
	}
	return value, nil
}

// decodeBody reads a JSON body into dst, or calls fromForm with the parsed form
// when the request is form encoded
func decodeBody(r *http.Request, dst any, fromForm func(url.Values)) error {
	if handlers.IsJSON(r) {
		if err := handlers.DecodeJSON(r, dst); err != nil {
			return fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		return nil
	}

	if err := parseForm(r); err != nil {
		return err
	}
	fromForm(r.Form)
	return nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return fmt.Errorf("%w: failed to parse form", models.ErrValidation)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: failed to parse form", models.ErrValidation)
	}
	return nil
}

func formInt(values url.Values, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(values.Get(key)))
	return n
}
