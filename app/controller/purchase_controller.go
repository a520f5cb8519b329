package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"chem-purchase-assistant/app/session"
	"chem-purchase-assistant/models"
	"chem-purchase-assistant/service"
)

// PurchaseController handles chemical purchase requests and summary exports
type PurchaseController struct {
	purchases service.PurchaseServiceInterface
	exports   service.SummaryExportServiceInterface
	logger    *zap.Logger
}

// NewPurchaseController creates a new PurchaseController
func NewPurchaseController(purchases service.PurchaseServiceInterface, exports service.SummaryExportServiceInterface, logger *zap.Logger) *PurchaseController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseController{purchases: purchases, exports: exports, logger: logger}
}

// ChemicalPurchase handles POST /chemical_purchase
// Example request:
// {"supplier": "sigma", "items": ["500g Sodium Chloride (NaCl)", "1L Methanol"]}
// Example response:
// {
//   "status": "success_simulated",
//   "supplier": "sigma",
//   "order_id": "ORD-SIM-48213",
//   "items": [{"name": "Sodium Chloride (NaCl)", "quantity": "500g", "cas": "231-45-7", "price": 42.17}],
//   "total_price": 42.17,
//   "estimated_delivery": "4 business days (Est. 2026-10-20)",
//   "note": "Simulated response, no supplier integration."
// }
func (c *PurchaseController) ChemicalPurchase(w http.ResponseWriter, r *http.Request) {
	user, _ := session.FromContext(r.Context())
	logger := c.logger.With(zap.String("username", user.Username))

	var req models.PurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid purchase body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger.Info("purchase requested", zap.String("supplier", req.Supplier), zap.Int("items", len(req.Items)))

	result, err := c.purchases.PlaceOrder(r.Context(), req)
	if errors.Is(err, service.ErrInvalidPurchase) {
		writeError(w, http.StatusBadRequest, "Supplier and item list are required")
		return
	}
	if err != nil {
		logger.Error("purchase failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ExportSummary handles POST /chemical_purchase/summary?format=pdf|png|thumb|xlsx
// Example request:
// {"supplier": "sigma", "supplier_name": "Sigma-Aldrich", "order": {"order_id": "ORD-SIM-48213", "items": ["1L Methanol"], "total_price": 12.5}}
// Responds with the file as an attachment.
func (c *PurchaseController) ExportSummary(w http.ResponseWriter, r *http.Request) {
	format, err := service.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "format must be pdf, png, thumb or xlsx")
		return
	}

	var req models.SummaryExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := c.exports.Export(r.Context(), req, format)
	if errors.Is(err, service.ErrInvalidPurchase) {
		writeError(w, http.StatusBadRequest, "Supplier is required")
		return
	}
	if err != nil {
		c.logger.Error("summary export failed", zap.String("format", string(format)), zap.Error(err))
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to export summary: %v", err))
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
