package handler

import (
	"net/http"

	"github.com/templui/filesmanager/internal/service"
)

type AppHandler struct {
	appService *service.AppService
}

func NewAppHandler(appService *service.AppService) *AppHandler {
	return &AppHandler{appService: appService}
}

func (h *AppHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.appService.Status(r.Context()))
}

func (h *AppHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.appService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
