package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/prompt"
	"github.com/smartkas-app/kasai/internal/validate"
)

// ChatRequest is one conversational turn from the session layer.
type ChatRequest struct {
	BusinessID string        `json:"business_id"`
	History    []prompt.Turn `json:"history,omitempty"`
	Message    string        `json:"message"`
	ImageURL   string        `json:"image_url,omitempty"`
}

// ChatResponse carries the reply text. A turn always succeeds from the
// caller's perspective; failures inside the turn surface as fallback text.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ScanRequest is an OCR extraction request carrying a base64 image.
type ScanRequest struct {
	ImageData string `json:"image_data"`
}

// AnomalyScanRequest triggers an anomaly scan for one business.
type AnomalyScanRequest struct {
	BusinessID string `json:"business_id"`
	DryRun     bool   `json:"dry_run"`
}

func (s *Server) chatSend(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business_id")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.assistant.InterpretTurn(r.Context(), businessID, req.History, req.Message, req.ImageURL)
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func (s *Server) scanProducts(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageData == "" {
		writeError(w, http.StatusBadRequest, "image_data is required")
		return
	}

	rows, err := s.assistant.ScanProducts(r.Context(), req.ImageData)
	if err != nil {
		s.logger.Error("product scan failed", "error", err)
		writeError(w, http.StatusBadGateway, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": rows})
}

func (s *Server) scanTransactions(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageData == "" {
		writeError(w, http.StatusBadRequest, "image_data is required")
		return
	}

	receipt, err := s.assistant.ScanReceipt(r.Context(), req.ImageData)
	if err != nil {
		s.logger.Error("receipt scan failed", "error", err)
		writeError(w, http.StatusBadGateway, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) scanAnomalies(w http.ResponseWriter, r *http.Request) {
	var req AnomalyScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business_id")
		return
	}

	anomalies, err := s.detector.Scan(r.Context(), businessID, req.DryRun)
	if err != nil {
		s.logger.Error("anomaly scan failed", "business_id", businessID, "error", err)
		writeError(w, http.StatusBadGateway, "scan failed")
		return
	}
	if anomalies == nil {
		anomalies = []validate.Anomaly{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"anomalies": anomalies,
		"count":     len(anomalies),
		"dry_run":   req.DryRun,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
