package api

import (
	"bytes"
	"net/http"

	"github.com/okian/refxpp/internal/inventory"
)

// InventoryHandler serves the native library inventory.
type InventoryHandler struct {
	inv inventory.Inventory
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler() *InventoryHandler {
	return &InventoryHandler{inv: inventory.Build()}
}

var contentTypes = map[inventory.Format]string{
	inventory.FormatJSON:   "application/json; charset=utf-8",
	inventory.FormatYAML:   "application/yaml; charset=utf-8",
	inventory.FormatHeader: "text/x-c; charset=utf-8",
}

// HandleInventory handles GET /inventory?format=json|yaml|header.
func (h *InventoryHandler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	const op = "api.inventory"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format := inventory.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = inventory.FormatJSON
	}
	var buf bytes.Buffer
	if err := inventory.Write(&buf, h.inv, format); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(buf.Bytes())
}
