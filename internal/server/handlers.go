package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/zsiec/timeframe/internal/errors"
	"github.com/zsiec/timeframe/internal/metrics"
	"github.com/zsiec/timeframe/internal/preset"
	"github.com/zsiec/timeframe/pkg/timecode"
)

const maxBodyBytes = 64 << 10

// operand is one timecode in a request: a label or a frame count, and a
// framerate. The framerate may be a string (standard name, fraction,
// decimal or preset name), a number or a {numerator, denominator, drop}
// object; when absent the configured default applies.
type operand struct {
	Timecode  *string         `json:"timecode,omitempty"`
	Frames    *float64        `json:"frames,omitempty"`
	Framerate json.RawMessage `json:"framerate,omitempty"`
}

type arithmeticRequest struct {
	A *operand `json:"a"`
	B *operand `json:"b"`
}

type framerateList struct {
	Framerates []timecode.Framerate `json:"framerates"`
}

func (s *Server) handleListFramerates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, framerateList{Framerates: timecode.StandardFramerates()})
}

func (s *Server) handleGetFramerate(w http.ResponseWriter, r *http.Request) {
	fr, err := preset.Resolve(r.Context(), s.presets, mux.Vars(r)["spec"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, fr)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	const op = "parse"

	var req operand
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Timecode == nil {
		s.writeError(w, r, errors.NewValidationError("timecode is required"))
		return
	}

	fr, err := s.resolveFramerate(r, req.Framerate)
	if err != nil {
		s.conversionFailed(w, r, op, err)
		return
	}
	tc, err := timecode.Parse(*req.Timecode, fr)
	if err != nil {
		s.conversionFailed(w, r, op, err)
		return
	}

	metrics.RecordConversion(op, fr)
	s.writeJSON(w, r, http.StatusOK, tc)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	const op = "format"

	var req operand
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Frames == nil {
		s.writeError(w, r, errors.NewValidationError("frames is required"))
		return
	}

	tc, err := s.resolveOperand(r, &operand{Frames: req.Frames, Framerate: req.Framerate})
	if err != nil {
		s.conversionFailed(w, r, op, err)
		return
	}

	metrics.RecordConversion(op, tc.Framerate())
	s.writeJSON(w, r, http.StatusOK, tc)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.handleArithmetic(w, r, "add", timecode.Add)
}

func (s *Server) handleSubtract(w http.ResponseWriter, r *http.Request) {
	s.handleArithmetic(w, r, "subtract", timecode.Subtract)
}

func (s *Server) handleArithmetic(w http.ResponseWriter, r *http.Request, op string, fn func(a, b *timecode.Timecode) (*timecode.Timecode, error)) {
	var req arithmeticRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.A == nil || req.B == nil {
		s.writeError(w, r, errors.NewValidationError("operands a and b are required"))
		return
	}

	a, err := s.resolveOperand(r, req.A)
	if err != nil {
		s.conversionFailed(w, r, op, err)
		return
	}
	b, err := s.resolveOperand(r, req.B)
	if err != nil {
		s.conversionFailed(w, r, op, err)
		return
	}

	result, err := fn(a, b)
	if err != nil {
		s.conversionFailed(w, r, op, err)
		return
	}

	metrics.RecordConversion(op, result.Framerate())
	s.writeJSON(w, r, http.StatusOK, result)
}

// resolveOperand builds the timecode an operand describes. Exactly one of
// timecode and frames must be set.
func (s *Server) resolveOperand(r *http.Request, o *operand) (*timecode.Timecode, error) {
	switch {
	case o.Timecode != nil && o.Frames != nil:
		return nil, errors.NewValidationError("operand must have either timecode or frames, not both")
	case o.Timecode == nil && o.Frames == nil:
		return nil, errors.NewValidationError("operand must have timecode or frames")
	}

	fr, err := s.resolveFramerate(r, o.Framerate)
	if err != nil {
		return nil, err
	}

	if o.Timecode != nil {
		return timecode.Parse(*o.Timecode, fr)
	}
	frames, err := timecode.FramesFromFloat(*o.Frames)
	if err != nil {
		return nil, err
	}
	return timecode.New(frames, fr)
}

func (s *Server) resolveFramerate(r *http.Request, raw json.RawMessage) (timecode.Framerate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return s.defaultRate, nil
	}

	if raw[0] == '"' {
		var spec string
		if err := json.Unmarshal(raw, &spec); err != nil {
			return timecode.Framerate{}, errors.NewValidationError("framerate must be valid JSON")
		}
		return preset.Resolve(r.Context(), s.presets, strings.TrimSpace(spec))
	}

	var fr timecode.Framerate
	if err := json.Unmarshal(raw, &fr); err != nil {
		return timecode.Framerate{}, err
	}
	return fr, nil
}

func (s *Server) conversionFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.IsAppError(err) {
		metrics.RecordConversionError(op, err)
	}
	s.writeError(w, r, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "Invalid request body", http.StatusBadRequest)
	}
	return nil
}
