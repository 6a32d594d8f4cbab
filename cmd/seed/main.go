package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/model"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Imports a product catalog from an XLSX sheet. Expected columns:
// name, sku, description, price, discount, stock, category, image_url.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped %d invalid rows)\n", len(products), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	if err := db.GetDB().CreateInBatches(products, batchSize).Error; err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seenSKUs := make(map[string]bool)
	categoryIDs := make(map[string]uint)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 7 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		sku := strings.TrimSpace(row[1])
		description := strings.TrimSpace(row[2])
		priceStr := strings.TrimSpace(row[3])
		discountStr := strings.TrimSpace(row[4])
		stockStr := strings.TrimSpace(row[5])
		categoryName := strings.TrimSpace(row[6])
		imageURL := ""
		if len(row) > 7 {
			imageURL = strings.TrimSpace(row[7])
		}

		if name == "" || sku == "" || categoryName == "" {
			skipped++
			continue
		}
		if seenSKUs[sku] {
			skipped++
			continue
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil || price.IsNegative() || price.IsZero() {
			skipped++
			continue
		}

		discount, _ := strconv.Atoi(discountStr)
		if discount < 0 || discount > 100 {
			skipped++
			continue
		}

		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			skipped++
			continue
		}

		categoryID, err := resolveCategory(categoryIDs, categoryName)
		if err != nil {
			return nil, skipped, err
		}

		seenSKUs[sku] = true
		products = append(products, model.Product{
			Name:        name,
			SKU:         sku,
			Description: description,
			Price:       price,
			Discount:    discount,
			Stock:       stock,
			IsAvailable: stock > 0,
			CategoryID:  categoryID,
			ImageURL:    imageURL,
		})
	}

	return products, skipped, nil
}

// resolveCategory gets or creates the named category, caching IDs
// across rows.
func resolveCategory(cache map[string]uint, name string) (uint, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	var category model.Category
	err := db.GetDB().Where("name = ?", name).First(&category).Error
	if err != nil {
		category = model.Category{Name: name}
		if err := db.GetDB().Create(&category).Error; err != nil {
			return 0, fmt.Errorf("failed to create category %q: %w", name, err)
		}
	}

	cache[name] = category.ID
	return category.ID, nil
}
