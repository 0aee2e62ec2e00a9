package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/price-sniffer/pkg/search"
)

// maxQueryLength is the longest accepted text query, in characters.
const maxQueryLength = 256

// multipartMemory is the part of an upload kept in memory; the rest spills to disk.
const multipartMemory = 1 << 20

type searchForm struct {
	Query string `validate:"max=256"`
}

// newSearchHandler serves POST /api/search. The body is multipart/form-data or
// application/x-www-form-urlencoded with an optional "query" field and an
// optional "file" upload.
func newSearchHandler(
	searcher Searcher,
	validate *validator.Validate,
	maxUploadBytes int64,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "httpserver.search"

		log := logger.With().
			Str("op", op).
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger()

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				log.Warn().Int64("limit", tooLarge.Limit).Msg("Upload too large")
				renderError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
				return
			}

			log.Warn().Err(err).Msg("Failed to parse form")
			renderError(w, r, http.StatusBadRequest, msgInvalidForm)
			return
		}
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}

		form := searchForm{Query: r.FormValue("query")}
		if err := validate.Struct(form); err != nil {
			log.Warn().Err(err).Int("length", len(form.Query)).Msg("Invalid search form")
			renderError(w, r, http.StatusBadRequest,
				fmt.Sprintf("Query must be at most %d characters.", maxQueryLength))
			return
		}

		req := search.Request{
			Query: form.Query,
			Image: uploadedImage(r),
		}

		result, err := searcher.Search(r.Context(), req)
		if err != nil {
			if errors.Is(err, search.ErrMissingInput) {
				renderError(w, r, http.StatusBadRequest, msgMissingQuery)
				return
			}

			log.Error().Err(err).Str("query", req.Query).Msg("Search failed")
			renderError(w, r, http.StatusInternalServerError, err.Error())
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, result)
	}
}

// uploadedImage returns the "file" part of a multipart body, or nil.
func uploadedImage(r *http.Request) *search.Image {
	if r.MultipartForm == nil {
		return nil
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil
	}

	fh := files[0]
	return &search.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
}
