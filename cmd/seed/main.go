package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/storely/storely-backend/config"
	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/internal/db"
)

// Imports a product catalog from an XLSX export. Expected columns:
// name, description, price, stock_quantity, category, brand, image_url.
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

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	// Categories and brands are created on demand and cached by name
	categoryIDs := make(map[string]uint)
	brandIDs := make(map[string]uint)

	var products []model.Product
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 4 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		priceStr := strings.TrimSpace(row[2])
		stockStr := strings.TrimSpace(row[3])

		var categoryName, brandName, imageURL string
		if len(row) > 4 {
			categoryName = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			brandName = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			imageURL = strings.TrimSpace(row[6])
		}

		if name == "" || priceStr == "" {
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skippedCount++
			continue
		}

		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			stock = 0
		}

		if seen[name] {
			skippedCount++
			continue
		}
		seen[name] = true

		product := model.Product{
			Name:          name,
			Description:   description,
			Price:         price,
			StockQuantity: stock,
			IsActive:      true,
		}
		if imageURL != "" {
			product.ImageURLs = []string{imageURL}
		}

		if categoryName != "" {
			id, err := lookupOrCreateCategory(categoryIDs, categoryName)
			if err != nil {
				return nil, err
			}
			product.CategoryID = &id
		}
		if brandName != "" {
			id, err := lookupOrCreateBrand(brandIDs, brandName)
			if err != nil {
				return nil, err
			}
			product.BrandID = &id
		}

		products = append(products, product)

		if len(products)%500 == 0 {
			fmt.Printf("Processed %d products...\n", len(products))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return products, nil
}

func lookupOrCreateCategory(cache map[string]uint, name string) (uint, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	var category model.Category
	if err := db.GetDB().Where("name = ?", name).FirstOrCreate(&category, model.Category{Name: name}).Error; err != nil {
		return 0, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}

	cache[name] = category.ID
	return category.ID, nil
}

func lookupOrCreateBrand(cache map[string]uint, name string) (uint, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	var brand model.Brand
	if err := db.GetDB().Where("name = ?", name).FirstOrCreate(&brand, model.Brand{Name: name}).Error; err != nil {
		return 0, fmt.Errorf("failed to resolve brand %q: %w", name, err)
	}

	cache[name] = brand.ID
	return brand.ID, nil
}
