package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/dmitrijs2005/secanalytics/internal/server/services"
)

const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type passwordRequest struct {
	Password *string `json:"password"`
}

type trainResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Metrics *models.TrainingMetrics `json:"metrics,omitempty"`
	Count   *int                    `json:"count,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: common.ServiceVersion,
	})
}

func (s *Server) handleAnalyzePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil || req.Password == nil {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	writeJSON(w, http.StatusOK, s.passwords.Analyze(r.Context(), *req.Password))
}

func (s *Server) handleDetectAnomaly(w http.ResponseWriter, r *http.Request) {
	var ev models.LoginEvent
	if err := decodeBody(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.anomalies.Detect(r.Context(), ev)
	if errors.Is(err, common.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "detection failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	m, err := s.anomalies.Train(r.Context())

	var insufficient *common.InsufficientDataError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, trainResponse{
			Success: true,
			Message: services.MessageTrained,
			Metrics: m,
		})
	case errors.Is(err, common.ErrDataNotFound):
		writeJSON(w, http.StatusNotFound, trainResponse{
			Error:   "No training data found",
			Message: err.Error(),
		})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusBadRequest, trainResponse{
			Error:   "Insufficient training data",
			Message: err.Error(),
			Count:   &insufficient.Count,
		})
	default:
		s.logger.Error(r.Context(), "training failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, trainResponse{
			Error: common.ErrorInternal.Error(),
		})
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.anomalies.Stats(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRecordLogin(w http.ResponseWriter, r *http.Request) {
	var ev models.LoginEvent
	if err := decodeBody(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.anomalies.RecordLogin(r.Context(), ev)
	if errors.Is(err, common.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "recording login failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

var errNoData = errors.New("no data provided")

func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errNoData
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
