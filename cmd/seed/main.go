package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/automarket/automarket-backend/config"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/app/service"
	"github.com/automarket/automarket-backend/internal/db"
	"github.com/automarket/automarket-backend/internal/events"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Sheet columns, in order.
const (
	colBrand = iota
	colModel
	colYear
	colPrice
	colMileage
	colTransmission
	colFuelType
	colColor
	colEngineSize
	colCondition
	colVehicleType
	colDescription
	colImages
	columnCount
)

type importRow struct {
	line   int
	input  service.ListingInput
	images []string
}

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/seed/main.go <xlsx_file_path> <seller_email>")
		os.Exit(1)
	}
	filePath, sellerEmail := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db.GetDB())
	seller, err := userRepo.FindByEmail(ctx, strings.ToLower(sellerEmail))
	if err != nil {
		logger.Fatal("Seller account not found", err, map[string]interface{}{
			"email": sellerEmail,
		})
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, skipped, err := readListingsFromXLSX(filePath)
	if err != nil {
		logger.Fatal("Failed to read XLSX", err)
	}

	fmt.Printf("Listings to import: %d (skipped while reading: %d)\n", len(rows), skipped)
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	listingService := service.NewListingService(
		repository.NewListingRepository(db.GetDB()),
		repository.NewFavoriteRepository(db.GetDB()),
		nil,
		nil,
		nil,
		events.NopPublisher{},
	)

	imported := 0
	for _, row := range rows {
		if _, err := listingService.Import(ctx, seller.ID, row.input, row.images); err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("  row %d rejected: %v\n", row.line, verr.Fields)
				continue
			}
			logger.Fatal("Failed to import listing", err, map[string]interface{}{"row": row.line})
		}
		imported++
		if imported%100 == 0 {
			fmt.Printf("Imported %d listings...\n", imported)
		}
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total listings imported: %d of %d\n", imported, len(rows))
}

func readListingsFromXLSX(filePath string) ([]importRow, int, error) {
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

	var result []importRow
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		parsed, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		parsed.line = i + 1
		result = append(result, parsed)
	}
	return result, skipped, nil
}

// parseRow maps one sheet row. Rows with too few cells are skipped; field
// level problems are left to listing validation.
func parseRow(row []string) (importRow, bool) {
	if len(row) < columnCount {
		return importRow{}, false
	}
	cell := func(i int) string { return strings.TrimSpace(row[i]) }

	in := service.ListingInput{
		Brand:        cell(colBrand),
		Model:        cell(colModel),
		Year:         parseNumber(cell(colYear)),
		Price:        parseNumber(cell(colPrice)),
		Mileage:      parseNumber(cell(colMileage)),
		Transmission: cell(colTransmission),
		FuelType:     cell(colFuelType),
		Color:        cell(colColor),
		EngineSize:   parseNumber(cell(colEngineSize)),
		Condition:    normalizeCondition(cell(colCondition)),
		VehicleType:  cell(colVehicleType),
		Description:  cell(colDescription),
	}

	var images []string
	for _, u := range strings.Split(cell(colImages), ",") {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, u)
		}
	}
	return importRow{input: in, images: images}, true
}

// parseNumber accepts "12.500.000" and "12,500,000" style thousands
// separators.
func parseNumber(s string) *int {
	s = strings.NewReplacer(".", "", ",", "", " ", "", "$", "").Replace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func normalizeCondition(s string) string {
	switch strings.ToLower(s) {
	case "nuevo", "new":
		return "new"
	case "semi nuevo", "seminuevo", "semi-nuevo", "semi_new":
		return "semi_new"
	case "usado", "used":
		return "used"
	}
	return s
}
