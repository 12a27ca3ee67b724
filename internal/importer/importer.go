// Package importer loads catalog CSV files into the product store.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	productsvc "techstore/internal/service/product"
)

// ProductImporter inserts a product or refreshes an existing one with the same id.
type ProductImporter interface {
	Import(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
}

// ImageSaver stores a product picture. Optional.
type ImageSaver interface {
	Save(productID, filename string, r io.Reader) (string, error)
}

// CSVImporter reads rows keyed by header name. Required columns are
// productId, productName and price; the rest are optional:
// brand, color, quantity, specification, warrantyPeriod, releaseDate, status, image.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductImporter
	images   ImageSaver
	imageDir string
}

func NewCSVImporter(r io.Reader, products ProductImporter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, products: products}
}

// WithImages makes the importer upload the file named in the image column,
// resolved relative to dir.
func (i *CSVImporter) WithImages(saver ImageSaver, dir string) *CSVImporter {
	i.images = saver
	i.imageDir = dir
	return i
}

// RowError points at the CSV line that could not be imported.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Run imports every row and returns how many products were written. It stops
// at the first bad row; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"productId", "productName", "price"} {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)
		if blank(record) {
			continue
		}

		in, image, err := parseRow(record, index)
		if err != nil {
			return imported, &RowError{Line: line, Err: err}
		}
		if _, err := i.products.Import(ctx, in); err != nil {
			return imported, &RowError{Line: line, Err: fmt.Errorf("import %s: %w", in.ProductID, err)}
		}
		if image != "" && i.images != nil {
			if err := i.saveImage(in.ProductID, image); err != nil {
				return imported, &RowError{Line: line, Err: err}
			}
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveImage(productID, name string) error {
	f, err := os.Open(filepath.Join(i.imageDir, name))
	if err != nil {
		return fmt.Errorf("open image for %s: %w", productID, err)
	}
	defer f.Close()
	if _, err := i.images.Save(productID, name, f); err != nil {
		return fmt.Errorf("save image for %s: %w", productID, err)
	}
	return nil
}

func parseRow(record []string, index map[string]int) (productsvc.CreateInput, string, error) {
	in := productsvc.CreateInput{
		ProductID:     pick(record, index, "productId"),
		ProductName:   pick(record, index, "productName"),
		Brand:         optional(record, index, "brand"),
		Color:         optional(record, index, "color"),
		Specification: optional(record, index, "specification"),
		ReleaseDate:   optional(record, index, "releaseDate"),
		Status:        pick(record, index, "status"),
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return in, "", fmt.Errorf("price: %w", err)
	}
	in.Price = price

	if raw := pick(record, index, "quantity"); raw != "" {
		if in.Quantity, err = strconv.Atoi(raw); err != nil {
			return in, "", fmt.Errorf("quantity: %w", err)
		}
	}
	if raw := pick(record, index, "warrantyPeriod"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			return in, "", fmt.Errorf("warrantyPeriod: %w", err)
		}
		in.WarrantyPeriod = &months
	}
	return in, pick(record, index, "image"), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func optional(record []string, index map[string]int, key string) *string {
	v := pick(record, index, key)
	if v == "" {
		return nil
	}
	return &v
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
