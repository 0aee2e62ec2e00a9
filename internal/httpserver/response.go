package httpserver

import (
	"net/http"

	"github.com/go-chi/render"
)

// Client-facing error messages.
const (
	msgMissingQuery = "Please provide query."
	msgInvalidForm  = "Invalid form data."
	msgTooLarge     = "Upload too large."
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Detail: detail})
}
