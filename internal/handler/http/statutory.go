package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type StatutoryHandler interface {
	UpsertTable(w http.ResponseWriter, r *http.Request)
	ListTables(w http.ResponseWriter, r *http.Request)
	GetEffectiveTable(w http.ResponseWriter, r *http.Request)
}

type statutoryHandlerImpl struct {
	statutoryService statutory.Service
}

func NewStatutoryHandler(statutoryService statutory.Service) StatutoryHandler {
	return &statutoryHandlerImpl{statutoryService: statutoryService}
}

func (h *statutoryHandlerImpl) UpsertTable(w http.ResponseWriter, r *http.Request) {
	var req statutory.UpsertTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.statutoryService.UpsertTable(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Statutory table saved", result)
}

func (h *statutoryHandlerImpl) ListTables(w http.ResponseWriter, r *http.Request) {
	result, err := h.statutoryService.ListTables(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) GetEffectiveTable(w http.ResponseWriter, r *http.Request) {
	asOf := r.URL.Query().Get("as_of")

	result, err := h.statutoryService.GetEffectiveTable(r.Context(), asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
