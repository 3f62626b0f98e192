// Package handler provides HTTP handlers for the pocket-points roster.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/core"
	"github.com/sevigo/pocket-points/internal/imaging"
	"github.com/sevigo/pocket-points/internal/roster"
	"github.com/sevigo/pocket-points/internal/storage"
)

// StudentHandler serves the roster and student thumbnails.
type StudentHandler struct {
	cfg     *config.Config
	roster  roster.Service
	decoder core.Decoder
	logger  *slog.Logger
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(cfg *config.Config, svc roster.Service, decoder core.Decoder, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{
		cfg:     cfg,
		roster:  svc,
		decoder: decoder,
		logger:  logger,
	}
}

// List writes every student as a JSON array ordered by name.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.roster.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list students", "error", err)
		http.Error(w, "Failed to list students", http.StatusInternalServerError)
		return
	}
	if students == nil {
		students = []*core.Student{}
	}
	h.writeJSON(w, http.StatusOK, students)
}

// Get writes a single student as JSON.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, student)
}

// Update applies a JSON body of roster.Changes and returns the edited student.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var changes roster.Changes
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&changes); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	student, err := h.roster.Edit(r.Context(), id, changes)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, student)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Student not found", http.StatusNotFound)
	case errors.Is(err, roster.ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("failed to edit student", "id", id, "error", err)
		http.Error(w, "Failed to update student", http.StatusInternalServerError)
	}
}

// AddSticker awards one sticker and returns the updated student.
func (h *StudentHandler) AddSticker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	student, err := h.roster.AddSticker(r.Context(), id)
	h.writeStickerResult(w, id, student, err)
}

// RemoveSticker takes back the most recent sticker.
func (h *StudentHandler) RemoveSticker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	student, err := h.roster.RemoveLastSticker(r.Context(), id)
	h.writeStickerResult(w, id, student, err)
}

func (h *StudentHandler) writeStickerResult(w http.ResponseWriter, id int64, student *core.Student, err error) {
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, student)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Student not found", http.StatusNotFound)
	case errors.Is(err, roster.ErrNoStickers):
		http.Error(w, "No stickers to remove", http.StatusConflict)
	default:
		h.logger.Error("failed to change stickers", "id", id, "error", err)
		http.Error(w, "Failed to update stickers", http.StatusInternalServerError)
	}
}

// Thumbnail renders the student's photo downsampled to the configured
// thumbnail size. Students without a photo get the placeholder.
func (h *StudentHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	student, ok := h.lookup(w, r)
	if !ok {
		return
	}

	width, height := h.cfg.Thumbnails.Width, h.cfg.Thumbnails.Height
	var img image.Image
	if locator := h.roster.PhotoPath(student); locator == "" {
		img = imaging.Placeholder(width, height)
	} else {
		decoded, err := h.decoder.Decode(r.Context(), locator, width, height)
		if err != nil {
			if errors.Is(err, imaging.ErrDecode) {
				h.logger.Warn("failed to decode photo", "id", student.ID, "locator", locator, "error", err)
				http.Error(w, "Photo cannot be decoded", http.StatusUnprocessableEntity)
				return
			}
			h.logger.Debug("thumbnail request aborted", "id", student.ID, "error", err)
			http.Error(w, "Thumbnail unavailable", http.StatusServiceUnavailable)
			return
		}
		img = decoded
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.logger.Error("failed to encode thumbnail", "id", student.ID, "error", err)
		http.Error(w, "Failed to encode thumbnail", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (h *StudentHandler) lookup(w http.ResponseWriter, r *http.Request) (*core.Student, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	student, err := h.roster.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Student not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to get student", "id", id, "error", err)
		http.Error(w, "Failed to get student", http.StatusInternalServerError)
		return nil, false
	}
	return student, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, fmt.Sprintf("Invalid student id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *StudentHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
