package notes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/notedhq/noted/internal/auth"
	"github.com/notedhq/noted/internal/db"
	apperrors "github.com/notedhq/noted/internal/errors"
	"github.com/notedhq/noted/internal/logger"
)

// NoteStore is the slice of the note repository the handlers need.
type NoteStore interface {
	ListByUser(ctx context.Context, userIdx int64) ([]*db.Note, error)
	Create(ctx context.Context, userIdx int64, title, text string, tagIdx *int64) (*db.Note, error)
}

type Handlers struct {
	notes NoteStore
	log   *logger.Logger
}

func NewHandlers(notes NoteStore) *Handlers {
	return &Handlers{
		notes: notes,
		log:   logger.Default().WithComponent("notes"),
	}
}

// GetNotes returns every note owned by the authenticated user. Zero notes
// is an empty list, not an error.
func (h *Handlers) GetNotes(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthorized("User not found"))
		return
	}

	list, err := h.notes.ListByUser(r.Context(), user.UserIdx)
	if err != nil {
		h.log.Error(r.Context(), "listing notes failed", err, map[string]interface{}{
			"user_idx": user.UserIdx,
		})
		apperrors.WriteError(w, requestID, apperrors.NotImplemented(err.Error()))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, list)
}

type createNoteRequest struct {
	NoteTitle string `json:"note_title"`
	NoteText  string `json:"note_text"`
	TagIdx    *int64 `json:"tag_idx"`
}

type createNoteResponse struct {
	Status int      `json:"status"`
	Note   *db.Note `json:"note"`
}

// CreateNote persists a new note for the authenticated user.
func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthorized("User not found"))
		return
	}

	req, err := decodeCreateNote(r)
	if err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	if req.NoteTitle == "" || req.NoteText == "" {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("Data not fulfilled. Expected Title and Text."))
		return
	}

	note, err := h.notes.Create(r.Context(), user.UserIdx, req.NoteTitle, req.NoteText, req.TagIdx)
	if err != nil {
		h.log.Error(r.Context(), "creating note failed", err, map[string]interface{}{
			"user_idx": user.UserIdx,
		})
		apperrors.WriteError(w, requestID, apperrors.NotImplemented(err.Error()))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusCreated, createNoteResponse{
		Status: http.StatusCreated,
		Note:   note,
	})
}

func decodeCreateNote(r *http.Request) (*createNoteRequest, error) {
	req := &createNoteRequest{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, err
		}
		return req, nil
	}

	req.NoteTitle = r.FormValue("note_title")
	req.NoteText = r.FormValue("note_text")
	if v := r.FormValue("tag_idx"); v != "" {
		tag, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.TagIdx = &tag
	}
	return req, nil
}
