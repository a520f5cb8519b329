package service

import (
	"context"

	"chem-purchase-assistant/models"
)

// PurchaseServiceInterface defines the contract for placing chemical orders
type PurchaseServiceInterface interface {
	PlaceOrder(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseOrderResult, error)
}
