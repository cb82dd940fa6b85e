// AngelaMos | 2026
// handler.go

package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog. Reads are public; every mutation runs
// behind authenticator followed by adminOnly.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Get("/categories", h.Categories)

	r.Route("/data", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r, "limit")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	offset, err := parseOptionalInt(r, "offset")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	resp, err := h.service.List(r.Context(), ListParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	records, err := decodeRecords(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Create(r.Context(), records)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	records, err := decodeRecords(w, r)
	if err != nil && !isEmptyBody(err) {
		writeError(w, err)
		return
	}
	if len(records) > 1 {
		core.BadRequest(w, "expected a single JSON object")
		return
	}

	rec := Record{}
	if len(records) == 1 {
		rec = records[0]
	}

	resp, err := h.service.Update(r.Context(), id, rec)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, categories)
}

// writeError is the single translation point from service errors to HTTP.
func writeError(w http.ResponseWriter, err error) {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		core.BadRequest(w, inputErr.Error())
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid product data")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "product")
	default:
		core.InternalServerError(w, err)
	}
}

var errEmptyBody = &InputError{Reason: "No data provided"}

func isEmptyBody(err error) bool {
	return errors.Is(err, errEmptyBody)
}

// decodeRecords accepts a single JSON object or an array of objects.
func decodeRecords(w http.ResponseWriter, r *http.Request) ([]Record, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &InputError{Reason: "request body too large"}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if body[0] == '[' {
		var records []Record
		if err := dec.Decode(&records); err != nil || !atEOF(dec) {
			return nil, &InputError{Reason: "invalid JSON body"}
		}
		for _, rec := range records {
			if rec == nil {
				return nil, &InputError{Reason: "each item must be a JSON object"}
			}
		}
		return records, nil
	}

	var rec Record
	if err := dec.Decode(&rec); err != nil || !atEOF(dec) {
		return nil, &InputError{Reason: "invalid JSON body"}
	}
	if len(rec) == 0 {
		return nil, errEmptyBody
	}
	return []Record{rec}, nil
}

// atEOF reports whether the decoder has nothing left after the first value.
func atEOF(dec *json.Decoder) bool {
	var extra json.RawMessage
	return errors.Is(dec.Decode(&extra), io.EOF)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid product id")
		return 0, false
	}
	return id, true
}

func parseOptionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &InputError{Field: name, Reason: "must be an integer"}
	}
	if n < 0 {
		return nil, &InputError{Field: name, Reason: "must not be negative"}
	}
	return &n, nil
}
