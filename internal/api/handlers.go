package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/marinerstack/mariner-guard/internal/anchor"
	"github.com/marinerstack/mariner-guard/internal/models"
	"github.com/marinerstack/mariner-guard/internal/utils"
)

// GuardAPI is the service behaviour the control surface depends on.
type GuardAPI interface {
	CheckNow(ctx context.Context) ([]models.RiskAssessment, []models.Alert, error)
	Assessments(ctx context.Context) ([]models.RiskAssessment, error)
	DropAnchor(ctx context.Context) (models.Position, error)
	ConfirmAnchorDropped(pos *models.Position) error
	SetAnchorPosition(pos models.Position) error
	SetAnchorRadius(radiusMeters float64) error
	RepositionAnchor(ctx context.Context, rodeMeters, depthMeters float64) error
	RaiseAnchor(ctx context.Context) error
	AnchorStatus() anchor.Status
	AnchorSnapshot() anchor.Record
	HandleModeChange(ctx context.Context, mode string)
}

// NewHandler builds the control-surface route table.
func NewHandler(service GuardAPI) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/v1/anchor/drop", func(w http.ResponseWriter, r *http.Request) {
		pos, err := service.DropAnchor(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dropResponse{Position: pos})
	})

	mux.HandleFunc("POST /api/v1/anchor/confirm", func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		if r.ContentLength != 0 && !decodeBody(w, r, &req) {
			return
		}
		if err := service.ConfirmAnchorDropped(req.Position); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.AnchorStatus())
	})

	mux.HandleFunc("POST /api/v1/anchor/position", func(w http.ResponseWriter, r *http.Request) {
		var req positionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		pos := models.Position{Latitude: req.Latitude, Longitude: req.Longitude}
		if err := service.SetAnchorPosition(pos); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.AnchorStatus())
	})

	mux.HandleFunc("POST /api/v1/anchor/radius", func(w http.ResponseWriter, r *http.Request) {
		var req radiusRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := service.SetAnchorRadius(req.Radius); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.AnchorStatus())
	})

	mux.HandleFunc("POST /api/v1/anchor/reposition", func(w http.ResponseWriter, r *http.Request) {
		var req repositionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := service.RepositionAnchor(r.Context(), req.RodeLength, req.AnchorDepth); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.AnchorStatus())
	})

	mux.HandleFunc("POST /api/v1/anchor/raise", func(w http.ResponseWriter, r *http.Request) {
		if err := service.RaiseAnchor(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.AnchorStatus())
	})

	mux.HandleFunc("GET /api/v1/anchor/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, service.AnchorStatus())
	})

	mux.HandleFunc("GET /api/v1/anchor/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, toStateResponse(service.AnchorSnapshot()))
	})

	mux.HandleFunc("POST /api/v1/mode", func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Mode == "" {
			writeError(w, utils.NewValidationError("mode.change", "mode is required"))
			return
		}
		service.HandleModeChange(r.Context(), req.Mode)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/v1/collision/assessments", func(w http.ResponseWriter, r *http.Request) {
		assessments, err := service.Assessments(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assessmentsResponse{Assessments: assessments})
	})

	mux.HandleFunc("POST /api/v1/collision/check", func(w http.ResponseWriter, r *http.Request) {
		assessments, alerts, err := service.CheckNow(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, checkResponse{Assessments: assessments, Alerts: alerts})
	})

	return mux
}

type dropResponse struct {
	Position models.Position `json:"position"`
}

type radiusRequest struct {
	Radius float64 `json:"radius"`
}

type confirmRequest struct {
	Position *models.Position `json:"position"`
}

type positionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type repositionRequest struct {
	RodeLength  float64 `json:"rode_length"`
	AnchorDepth float64 `json:"anchor_depth"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type assessmentsResponse struct {
	Assessments []models.RiskAssessment `json:"assessments"`
}

type checkResponse struct {
	Assessments []models.RiskAssessment `json:"assessments"`
	Alerts      []models.Alert          `json:"alerts"`
}

// stateResponse is the full-record view; timestamps render as RFC 3339.
type stateResponse struct {
	State       string           `json:"state"`
	Position    *models.Position `json:"position"`
	Radius      float64          `json:"radius"`
	RodeLength  *float64         `json:"rode_length"`
	AnchorDepth *float64         `json:"anchor_depth"`
	DroppedAt   string           `json:"dropped_at,omitempty"`
	RaisedAt    string           `json:"raised_at,omitempty"`
}

func toStateResponse(rec anchor.Record) stateResponse {
	return stateResponse{
		State:       string(rec.State),
		Position:    rec.Position,
		Radius:      rec.RadiusMeters,
		RodeLength:  rec.RodeLengthMeters,
		AnchorDepth: rec.AnchorDepthMeters,
		DroppedAt:   utils.FormatRFC3339(rec.DroppedAt),
		RaisedAt:    utils.FormatRFC3339(rec.RaisedAt),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch utils.KindOf(err) {
	case utils.KindValidation:
		status = http.StatusBadRequest
	case utils.KindConflict:
		status = http.StatusConflict
	case utils.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
