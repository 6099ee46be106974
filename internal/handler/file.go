package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var in service.CreateFileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	file, err := h.fileService.Create(r.Context(), ctxkeys.UserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) Show(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.Get(r.Context(), r.PathValue("id"), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

// Index lists the requester's files under ?parentId (root when absent or 0),
// 20 per ?page starting at 0.
func (h *FileHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	parent := model.ParseParent(q.Get("parentId"))

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 0
	}

	result, err := h.fileService.List(r.Context(), ctxkeys.UserID(r.Context()), parent, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *FileHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

func (h *FileHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *FileHandler) setPublic(w http.ResponseWriter, r *http.Request, isPublic bool) {
	v, err := h.fileService.SetPublic(r.Context(), r.PathValue("id"), ctxkeys.UserID(r.Context()), isPublic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// Data streams the raw content, or a thumbnail with ?size=500|250|100
func (h *FileHandler) Data(w http.ResponseWriter, r *http.Request) {
	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		var err error
		size, err = strconv.Atoi(s)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid size")
			return
		}
	}

	content, err := h.fileService.ReadContent(r.Context(), r.PathValue("id"), ctxkeys.UserID(r.Context()), size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() { _ = content.Body.Close() }()

	w.Header().Set("Content-Type", content.ContentType)
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, content.Body)
	if err != nil {
		slog.Warn("failed to stream file content", "error", err, "file_id", content.File.ID)
	}
}
