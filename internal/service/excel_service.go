package service

import (
	"fmt"

	"ticketops-web/internal/models"

	"github.com/xuri/excelize/v2"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ExportPurchases writes the purchase table to an XLSX file.
func (s *ExcelService) ExportPurchases(purchases []models.Purchase, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Purchases"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"ID", "Account ID", "Event ID", "Card ID", "Order Number", "Quantity",
		"Total Price", "Price Per Ticket", "Section", "Row", "Seats",
		"PO Number", "Status", "POS Synced", "Created At",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	safeInt64 := func(p *int64) string {
		if p == nil {
			return ""
		}
		return fmt.Sprintf("%d", *p)
	}

	for rowIdx, p := range purchases {
		row := rowIdx + 2
		values := []interface{}{
			p.ID,
			p.AccountID,
			safeInt64(p.EventID),
			safeInt64(p.CardID),
			p.TmOrderNumber,
			p.Quantity,
			fmt.Sprintf("%.2f", p.TotalPrice),
			fmt.Sprintf("%.2f", p.PricePerTicket),
			p.Section,
			p.Row,
			p.Seats,
			p.PONumber,
			p.Status,
			func() string {
				if p.POSSynced {
					return "Yes"
				}
				return "No"
			}(),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	f.SetActiveSheet(index)
	return f.SaveAs(outputPath)
}

// ExportInvoices writes resale invoices to an XLSX file.
func (s *ExcelService) ExportInvoices(invoices []models.Invoice, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Invoices"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"ID", "Listing ID", "Amount", "Fees", "Status", "Created At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, inv := range invoices {
		row := rowIdx + 2
		values := []interface{}{
			inv.ID,
			inv.ListingID,
			fmt.Sprintf("%.2f", inv.Amount),
			fmt.Sprintf("%.2f", inv.Fees),
			inv.Status,
			inv.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	f.SetActiveSheet(index)
	return f.SaveAs(outputPath)
}

// getColumnName converts a zero-based column index to an Excel column name
func getColumnName(index int) string {
	name := ""
	for index >= 0 {
		name = string(rune('A'+index%26)) + name
		index = index/26 - 1
	}
	return name
}
