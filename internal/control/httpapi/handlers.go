package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	siggen "github.com/tphakala/go-signal-generator"
)

// statusResponse is the body of GET /api/status.
type statusResponse struct {
	Running    bool    `json:"running"`
	State      string  `json:"state"`
	SampleRate float64 `json:"sample_rate"`
	Nyquist    float64 `json:"nyquist"`
	Dropped    uint64  `json:"dropped"`
	Malformed  uint64  `json:"malformed"`
}

// channelRequest is the body of PUT /api/channels/{index}. Omitted fields
// take their defaults.
type channelRequest struct {
	Shape        string   `json:"shape"`
	Duty         *float64 `json:"duty"`
	AmplitudeDB  *float64 `json:"amplitude_db"`
	Frequency    *float64 `json:"frequency"`
	PhaseDegrees *float64 `json:"phase_degrees"`
}

func (c channelRequest) params() (siggen.ChannelParams, error) {
	return siggen.PresetChannel{
		Shape:        c.Shape,
		Duty:         c.Duty,
		AmplitudeDB:  c.AmplitudeDB,
		Frequency:    c.Frequency,
		PhaseDegrees: c.PhaseDegrees,
	}.Params()
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	rate := s.engine.SampleRate()
	state := s.engine.State()
	stats := s.engine.Stats()
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:    state == siggen.Running,
		State:      state.String(),
		SampleRate: rate,
		Nyquist:    rate / 2,
		Dropped:    stats.Dropped,
		Malformed:  stats.Malformed,
	})
}

func (s *Server) handleSetChannel(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 || index >= siggen.MaxChannels {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("channel index must be an integer in [0, %d)", siggen.MaxChannels))
		return
	}

	var req channelRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	params, err := req.params()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.signal(w, r, siggen.SetParamsMessage(index, params))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.signal(w, r, siggen.ResetMessage())
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	frame, err := io.ReadAll(http.MaxBytesReader(w, r.Body, siggen.MaxFrameSize+1))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeError(w, status, err)
		return
	}

	if err := s.engine.SignalFrame(r.Context(), frame); err != nil {
		if errors.Is(err, siggen.ErrMalformedMessage) {
			s.logger.Debug("rejected malformed frame", slog.Any("error", err))
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	// The stream outlives the request.
	if err := s.engine.Run(context.WithoutCancel(r.Context())); err != nil {
		s.logger.Error("run failed", slog.Any("error", err))
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.handleStatus(w, r)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(); err != nil {
		s.logger.Error("stop failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.handleStatus(w, r)
}

func (s *Server) signal(w http.ResponseWriter, r *http.Request, m siggen.Message) {
	if err := s.engine.Signal(r.Context(), m); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
