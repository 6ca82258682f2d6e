package rest

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.node.Status())
}

func (s *Server) handleListElements(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.node.Elements().Elements())
}

// sendModelRequest is the payload for POST /elements/{id}/models/{model_id}/send.
// Payload is hex-encoded so arbitrary already-encoded opcode bodies can be
// posted from a debug client without a JSON byte-array.
type sendModelRequest struct {
	Opcode  uint32 `json:"opcode"`
	Dst     uint16 `json:"dst"`
	NetIdx  uint16 `json:"net_idx"`
	AppIdx  uint16 `json:"app_idx"`
	IsGet   bool   `json:"is_get"`
	Payload string `json:"payload_hex"`
}

func (s *Server) handleSendModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	elementID, err := strconv.ParseUint(vars["id"], 10, 16)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid element id")
		return
	}
	modelID, err := strconv.ParseUint(vars["model_id"], 0, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	var req sendModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payload, err := hex.DecodeString(req.Payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, "payload_hex is not valid hex")
		return
	}

	if err := s.node.SendRaw(r.Context(), uint16(elementID), uint32(modelID), req.Opcode, req.Dst, req.NetIdx, req.AppIdx, req.IsGet, payload); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
