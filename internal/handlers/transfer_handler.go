package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/transfer"
)

// TransferHandler exposes the drag-and-drop gesture protocol over HTTP so a
// thin client can drive it without owning any move logic.
type TransferHandler struct {
	controller *transfer.Controller
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(controller *transfer.Controller) *TransferHandler {
	return &TransferHandler{controller: controller}
}

// Begin starts a gesture with the dragged photo's payload
func (h *TransferHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req models.TransferBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.controller.BeginTransfer(transfer.Payload{
		Type:          req.Type,
		ID:            req.ID,
		SourceAlbumID: req.SourceAlbumID,
	})
	switch {
	case errors.Is(err, transfer.ErrInvalidPayload):
		http.Error(w, "Invalid transfer payload", http.StatusBadRequest)
	case errors.Is(err, transfer.ErrTransferInProgress):
		http.Error(w, "A transfer is already in progress", http.StatusConflict)
	case err != nil:
		respondError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Target records the album the gesture is hovering over
func (h *TransferHandler) Target(w http.ResponseWriter, r *http.Request) {
	var req models.TransferTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.controller.UpdateTarget(req.AlbumID); err != nil {
		http.Error(w, "No transfer in progress", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leave clears the hover target if it still matches
func (h *TransferHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req models.TransferTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.controller.LeaveTarget(req.AlbumID)
	w.WriteHeader(http.StatusNoContent)
}

// Commit drops the payload onto the target album
func (h *TransferHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req models.TransferCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res := h.controller.CommitTransfer(r.Context(), req.TargetAlbumID)
	resp := models.TransferResultResponse{Success: res.Success}
	if res.Success {
		resp.Operation = &res.Operation
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

// Cancel abandons the gesture
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.controller.CancelTransfer()
	w.WriteHeader(http.StatusNoContent)
}
