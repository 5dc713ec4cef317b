package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"insurance-portal/internal/documents"
)

// DocumentHandler redirects to uploaded documents and policy PDFs
type DocumentHandler struct {
	resolver *documents.Resolver
}

func NewDocumentHandler(resolver *documents.Resolver) *DocumentHandler {
	return &DocumentHandler{resolver: resolver}
}

// Get handles GET /v1/documents/{path}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	target, err := h.resolver.Resolve(r.Context(), mux.Vars(r)["path"])
	if err != nil {
		slog.Warn("Document not resolved", "path", mux.Vars(r)["path"], "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid document path", nil)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
