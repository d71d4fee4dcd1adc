package utils

import (
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/velora-shop/velora-backend/models"
)

// ProductsWorkbook builds the admin catalog export.
func ProductsWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"ID", "Name", "Slug", "Price", "OriginalPrice", "Discount%",
		"Quantity", "RatingAvg", "RatingCount", "Featured", "Disabled",
		"CategoryIDs", "CreatedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()

		row.AddCell().SetValue(p.Id.Hex())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Slug)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.OriginalPrice)
		row.AddCell().SetValue(p.Discount())
		row.AddCell().SetValue(p.Quantity)
		row.AddCell().SetValue(p.Rating.Average)
		row.AddCell().SetValue(p.Rating.Count)
		row.AddCell().SetValue(p.IsFeatured)
		row.AddCell().SetValue(p.IsDisabled)

		catIDs := make([]string, 0, len(p.CategoryIds))
		for _, id := range p.CategoryIds {
			catIDs = append(catIDs, id.Hex())
		}
		row.AddCell().SetValue(strings.Join(catIDs, ","))

		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file, nil
}
