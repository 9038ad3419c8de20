package handler

import (
	"net/http"

	"github.com/mcoot/tarot-go2/internal/api/apierr"
)

// WriteError writes an error response; engine and room errors map to their stable codes
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

func invalidRequest(message string) error {
	return apierr.NewInvalidRequestError(message)
}

func invalidBody() error {
	return invalidRequest("invalid request body")
}
