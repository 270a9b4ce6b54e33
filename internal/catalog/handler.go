// internal/catalog/handler.go
package catalog

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"libracatalog/internal/httpx"
	"libracatalog/pkg/eventstore"
	"libracatalog/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/categories", h.handleListCategories)
	r.Get("/categories/resolve", h.handleResolveCategory)
	r.Get("/digital-formats", h.handleListDigitalFormats)
	r.Get("/digital-formats/resolve", h.handleResolveDigitalFormat)

	r.Post("/books", h.handleAddBook)
	r.Route("/books/{id}", func(r chi.Router) {
		r.Get("/", h.handleGetBook)
		r.Put("/status", h.handleSetStatus)
		r.Put("/condition", h.handleSetCondition)
		r.Put("/location", h.handleRelocate)
		r.Post("/checkouts", h.handleRecordCheckout)
		r.Put("/ratings/{user}", h.handleRate)
		r.Post("/rebuild", h.handleRebuild)
		r.Get("/audiobook-length", h.handleAudiobookLength)
	})
}

type digitalFormatResponse struct {
	Label string    `json:"label"`
	Kind  MediaKind `json:"kind"`
}

func (h *Handler) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, Categories())
}

func (h *Handler) handleResolveCategory(w http.ResponseWriter, r *http.Request) {
	c, err := ResolveCategory(r.URL.Query().Get("label"))
	if err != nil {
		httpx.ErrorCode(w, r, http.StatusNotFound, ErrorCode(err), err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleListDigitalFormats(w http.ResponseWriter, r *http.Request) {
	formats := DigitalFormats()
	if k := r.URL.Query().Get("kind"); k != "" {
		kind, err := ParseMediaKind(k)
		if err != nil {
			httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
			return
		}
		formats = DigitalFormatsOf(kind)
	}
	out := make([]digitalFormatResponse, 0, len(formats))
	for _, f := range formats {
		out = append(out, digitalFormatResponse{Label: f.String(), Kind: f.Kind()})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleResolveDigitalFormat(w http.ResponseWriter, r *http.Request) {
	f, err := ResolveDigitalFormat(r.URL.Query().Get("label"))
	if err != nil {
		httpx.ErrorCode(w, r, http.StatusNotFound, ErrorCode(err), err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, digitalFormatResponse{Label: f.String(), Kind: f.Kind()})
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
		return
	}
	p, err := ParseBookParams(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p.ID = uuid.Nil

	book, err := h.service.AddBook(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/books/"+book.ID.String())
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body, err := json.Marshal(book)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sum := blake2b.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status BookStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
		return
	}
	h.respondBook(w, r)(h.service.SetBookStatus(r.Context(), id, req.Status))
}

func (h *Handler) handleSetCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	var req struct {
		Condition BookCondition `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
		return
	}
	h.respondBook(w, r)(h.service.SetBookCondition(r.Context(), id, req.Condition))
}

// handleRelocate takes a location document, or null to take the book off
// the shelf.
func (h *Handler) handleRelocate(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
		return
	}
	var loc *LibraryLocation
	if !isAbsent(raw) {
		parsed, err := ParseLibraryLocation(string(raw))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		loc = &parsed
	}
	h.respondBook(w, r)(h.service.RelocateBook(r.Context(), id, loc))
}

func (h *Handler) handleRecordCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	h.respondBook(w, r)(h.service.RecordCheckout(r.Context(), id))
}

func (h *Handler) handleRate(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	var req struct {
		Stars int `json:"stars"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
		return
	}
	h.respondBook(w, r)(h.service.RateBook(r.Context(), id, chi.URLParam(r, "user"), req.Stars))
}

func (h *Handler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	h.respondBook(w, r)(h.service.RebuildBook(r.Context(), id))
}

func (h *Handler) handleAudiobookLength(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"length": book.FormatAudiobookLength()})
}

func (h *Handler) respondBook(w http.ResponseWriter, r *http.Request) func(*Book, error) {
	return func(book *Book, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, book)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsValidationError(err):
		httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
	case errors.Is(err, ErrBookNotFound):
		httpx.ErrorCode(w, r, http.StatusNotFound, ErrorCode(err), err.Error())
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		httpx.Error(w, r, http.StatusConflict, err.Error())
	default:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			httpx.ErrorCode(w, r, http.StatusBadRequest, ErrorCode(err), err.Error())
			return
		}
		logger.Error(r.Context(), "catalog request failed", zap.Error(err))
		httpx.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func bookID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid book ID")
		return uuid.Nil, false
	}
	return id, true
}
