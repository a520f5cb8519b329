package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"chem-purchase-assistant/models"
	"chem-purchase-assistant/summary"
)

const (
	orderSheetName = "Sheet1"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// first row of the item table, below the order details and a blank row
	itemHeaderRow = 7
)

// OrderSheet writes the order as a spreadsheet: the summary details on top,
// then one row per item
func OrderSheet(data summary.Data, items []models.OrderItem) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := f.NewStreamWriter(orderSheetName)
	if err != nil {
		return nil, err
	}

	details := [][]interface{}{
		{"Supplier", data.SupplierName},
		{"Order ID", data.OrderID},
		{"Order Date", data.OrderDate},
		{"Estimated Delivery", data.EstimatedDelivery},
		{"Total Price", "¥" + data.TotalPrice},
	}
	for i, row := range details {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write order details: %w", err)
		}
	}

	header, _ := excelize.CoordinatesToCellName(1, itemHeaderRow)
	if err := sw.SetRow(header, []interface{}{"Item", "Quantity", "CAS", "Price (¥)"}); err != nil {
		return nil, fmt.Errorf("failed to write item header: %w", err)
	}
	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, itemHeaderRow+1+i)
		if err := sw.SetRow(cell, itemRow(item)); err != nil {
			return nil, fmt.Errorf("failed to write item %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

func itemRow(item models.OrderItem) []interface{} {
	switch {
	case item.IsText():
		return []interface{}{item.Text}
	case !item.Valid():
		return []interface{}{"Invalid item data"}
	}

	row := []interface{}{item.Name, item.Quantity, item.CAS}
	if item.Price != nil {
		row = append(row, *item.Price)
	}
	return row
}
