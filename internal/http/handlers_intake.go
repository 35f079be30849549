package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"vibeledger/internal/core"
	"vibeledger/internal/intake"
	"vibeledger/internal/log"
)

// Uploads larger than this are rejected before they reach the paid APIs.
const maxUploadBytes = 15 << 20

// handleVoiceUpload transcribes a recording and answers with the manual
// panel pre-filled from what was heard. The user reviews and submits;
// nothing is recorded here.
func (s *Server) handleVoiceUpload(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		errorFragment(http.StatusServiceUnavailable, "Voice entry is not configured").Write(w)
		return
	}

	file, header, err := s.uploadedFile(w, r, "audio")
	if err != nil {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.intakeTimeout)
	defer cancel()

	suggestion, err := s.voice.FromAudio(ctx, file, header.Filename)
	if err != nil {
		s.intakeError(w, r, err, "We couldn't make out that recording. Try again or type it in.")
		return
	}

	// The review step happens in the manual panel.
	s.panels.get(sessionToken(r)).Activate(core.PanelManual)
	s.render(w, r, "panel_manual", formDataFromSuggestion(suggestion))
}

// handleReceiptUpload extracts a suggestion from a receipt photo, same
// contract as voice.
func (s *Server) handleReceiptUpload(w http.ResponseWriter, r *http.Request) {
	if s.receipt == nil {
		errorFragment(http.StatusServiceUnavailable, "Receipt scanning is not configured").Write(w)
		return
	}

	file, header, err := s.uploadedFile(w, r, "image")
	if err != nil {
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		errorFragment(http.StatusBadRequest, "Could not read the upload").Write(w)
		return
	}

	contentType := header.Header.Get("Content-Type")
	ctx, cancel := context.WithTimeout(r.Context(), s.intakeTimeout)
	defer cancel()

	suggestion, err := s.receipt.FromImage(ctx, data, contentType)
	if err != nil {
		s.intakeError(w, r, err, "We couldn't read that receipt. Try a clearer photo or type it in.")
		return
	}

	s.panels.get(sessionToken(r)).Activate(core.PanelManual)
	s.render(w, r, "panel_manual", formDataFromSuggestion(suggestion))
}

func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errorFragment(http.StatusRequestEntityTooLarge, "That file is too large").Write(w)
		return nil, nil, err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		errorFragment(http.StatusBadRequest, "No file in the upload").Write(w)
		return nil, nil, err
	}
	return file, header, nil
}

func (s *Server) intakeError(w http.ResponseWriter, r *http.Request, err error, friendly string) {
	switch {
	case errors.Is(err, intake.ErrUnsupportedMedia):
		errorFragment(http.StatusUnsupportedMediaType, "That file type is not supported").Write(w)
	case errors.Is(err, intake.ErrTranscription), errors.Is(err, intake.ErrExtraction):
		errorFragment(http.StatusUnprocessableEntity, friendly).Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "intake failed", log.FieldError, err)
		errorFragment(http.StatusInternalServerError, friendly).Write(w)
	}
}
