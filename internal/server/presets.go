package server

import (
	"net/http"

	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/zsiec/timeframe/internal/errors"
	"github.com/zsiec/timeframe/internal/preset"
	"github.com/zsiec/timeframe/pkg/timecode"
)

type presetList struct {
	Presets []*preset.Preset `json:"presets"`
}

type presetRequest struct {
	Framerate   *timecode.Framerate `json:"framerate"`
	Description string              `json:"description,omitempty"`
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.List(r.Context())
	if err != nil {
		s.writeError(w, r, presetError(err))
		return
	}
	if presets == nil {
		presets = []*preset.Preset{}
	}
	s.writeJSON(w, r, http.StatusOK, presetList{Presets: presets})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.presets.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, presetError(err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

// handlePutPreset creates or replaces a preset.
func (s *Server) handlePutPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := preset.ValidateName(name); err != nil {
		s.writeError(w, r, presetError(err))
		return
	}

	var req presetRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Framerate == nil {
		s.writeError(w, r, errors.NewValidationError("framerate is required"))
		return
	}

	// Save stamps CreatedAt and UpdatedAt
	p := &preset.Preset{
		Name:        name,
		Framerate:   *req.Framerate,
		Description: req.Description,
	}
	if err := s.presets.Save(r.Context(), p); err != nil {
		s.writeError(w, r, presetError(err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.presets.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		s.writeError(w, r, presetError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// presetError maps store errors onto API errors.
func presetError(err error) error {
	switch {
	case pkgerrors.Is(err, preset.ErrNotFound):
		return errors.Wrap(err, errors.ErrorTypeNotFound, "preset not found", http.StatusNotFound)
	case pkgerrors.Is(err, preset.ErrInvalidName):
		return errors.Wrap(err, errors.ErrorTypeValidation, err.Error(), http.StatusBadRequest)
	case timecode.KindOf(err) != "":
		return err
	default:
		return errors.WrapInternalError(err, "preset store unavailable")
	}
}
