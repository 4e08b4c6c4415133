package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"go.uber.org/zap"
)

const (
	maxImportErrors     = 10
	maxImportDuplicates = 20
	exportTimeLayout    = "2006-01-02T15:04:05.000Z07:00"
)

// ExportColumns is the header row written by Export.
var ExportColumns = []string{"name", "unit", "category", "brand", "stock", "status", "image", "createdAt", "updatedAt"}

// ImportRowError is a rejected row. Line is the 1-based file line.
type ImportRowError struct {
	Line  int               `json:"line"`
	Data  map[string]string `json:"data"`
	Error string            `json:"error"`
}

// ImportDuplicate is a row skipped because its name is already taken.
type ImportDuplicate struct {
	Line            int               `json:"line"`
	CSVData         map[string]string `json:"csvData"`
	ExistingProduct *ExistingProduct  `json:"existingProduct"`
}

type ExistingProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Stock    int    `json:"stock"`
	Image    string `json:"image"`
}

// ImportResult counts every row; Errors and Duplicates are truncated previews.
type ImportResult struct {
	SuccessCount int               `json:"successCount"`
	SkipCount    int               `json:"skipCount"`
	ErrorCount   int               `json:"errorCount"`
	Errors       []ImportRowError  `json:"errors"`
	Duplicates   []ImportDuplicate `json:"duplicates"`
}

type ImportService interface {
	Import(ctx context.Context, r io.Reader, actor Actor) (*ImportResult, error)
	Export(ctx context.Context, w io.Writer) error
}

type importService struct {
	productRepo repository.ProductRepository
	ledger      *stockLedger
	categories  *cache.Categories
	log         *zap.Logger
}

func NewImportService(pRepo repository.ProductRepository, hRepo repository.HistoryRepository, categories *cache.Categories, log *zap.Logger) ImportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &importService{
		productRepo: pRepo,
		ledger:      newStockLedger(hRepo, log),
		categories:  categories,
		log:         log,
	}
}

// Import creates one product per row, in file order. Rows fail
// independently; only an unreadable file fails the whole call.
func (s *importService) Import(ctx context.Context, r io.Reader, actor Actor) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &ImportResult{Errors: []ImportRowError{}, Duplicates: []ImportDuplicate{}}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return nil, invalid("csvFile", fmt.Sprintf("unreadable CSV: %v", err))
	}
	columns := normalizeHeader(header)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("csvFile", fmt.Sprintf("unreadable CSV: %v", err))
		}
		line, _ := reader.FieldPos(0)

		row := rowFromRecord(columns, record)
		s.importRow(ctx, line, row, actor, result)
	}

	if result.SuccessCount > 0 {
		if err := s.categories.Invalidate(ctx); err != nil {
			s.log.Warn("category cache invalidation failed", zap.Error(err))
		}
	}

	result.ErrorCount = len(result.Errors)
	if len(result.Errors) > maxImportErrors {
		result.Errors = result.Errors[:maxImportErrors]
	}
	if len(result.Duplicates) > maxImportDuplicates {
		result.Duplicates = result.Duplicates[:maxImportDuplicates]
	}

	s.log.Info("csv import finished",
		zap.Stringer("user_id", actor.ID),
		zap.Int("created", result.SuccessCount),
		zap.Int("duplicates", result.SkipCount),
		zap.Int("errors", result.ErrorCount),
	)
	return result, nil
}

func (s *importService) importRow(ctx context.Context, line int, row map[string]string, actor Actor, result *ImportResult) {
	rowError := func(msg string) {
		metrics.ImportRows.WithLabelValues(metrics.ImportError).Inc()
		result.Errors = append(result.Errors, ImportRowError{Line: line, Data: row, Error: msg})
	}

	name := strings.TrimSpace(row["name"])
	unit := strings.TrimSpace(row["unit"])
	category := strings.TrimSpace(row["category"])
	brand := strings.TrimSpace(row["brand"])
	if name == "" || unit == "" || category == "" || brand == "" {
		rowError("Missing required fields (name, unit, category, brand)")
		return
	}

	stock, err := parseImportStock(row["stock"])
	if err != nil {
		rowError(err.Error())
		return
	}

	existing, err := s.productRepo.FindByNameExact(ctx, name)
	switch {
	case err == nil:
		s.duplicate(line, row, existing, result)
		return
	case !errors.Is(err, repository.ErrNotFound):
		rowError("failed to check for an existing product")
		return
	}

	product := &model.Product{
		Name:        name,
		Unit:        unit,
		Category:    category,
		Brand:       brand,
		Stock:       stock,
		Image:       strings.TrimSpace(row["image"]),
		CreatedByID: actor.ID,
		UpdatedByID: actor.ID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent create of the same name
			if existing, findErr := s.productRepo.FindByNameExact(ctx, name); findErr == nil {
				s.duplicate(line, row, existing, result)
				return
			}
		}
		s.log.Warn("csv import row failed", zap.Int("line", line), zap.Error(err))
		rowError("failed to create product")
		return
	}

	s.ledger.record(ctx, product, 0, actor, model.ReasonCSVImport)
	metrics.ImportRows.WithLabelValues(metrics.ImportCreated).Inc()
	result.SuccessCount++
}

func (s *importService) duplicate(line int, row map[string]string, existing *model.Product, result *ImportResult) {
	metrics.ImportRows.WithLabelValues(metrics.ImportDuplicate).Inc()
	result.SkipCount++
	result.Duplicates = append(result.Duplicates, ImportDuplicate{
		Line:    line,
		CSVData: row,
		ExistingProduct: &ExistingProduct{
			ID:       existing.ID.String(),
			Name:     existing.Name,
			Unit:     existing.Unit,
			Category: existing.Category,
			Brand:    existing.Brand,
			Stock:    existing.Stock,
			Image:    existing.Image,
		},
	})
}

// Export writes every product, newest first, status derived at write time.
func (s *importService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.FindAllForExport(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		record := []string{
			p.Name,
			p.Unit,
			p.Category,
			p.Brand,
			strconv.Itoa(p.Stock),
			p.Status(),
			p.Image,
			p.CreatedAt.UTC().Format(exportTimeLayout),
			p.UpdatedAt.UTC().Format(exportTimeLayout),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// parseImportStock treats an empty cell as 0.
func parseImportStock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("Stock must be a non-negative integer")
	}
	if n < 0 {
		return 0, errors.New("Stock must be non-negative")
	}
	return n, nil
}

// normalizeHeader lowercases header cells and strips a UTF-8 BOM.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return columns
}

// rowFromRecord keys cells by header. Surplus cells are dropped and missing
// ones read as empty.
func rowFromRecord(columns, record []string) map[string]string {
	row := make(map[string]string, len(columns))
	for i, col := range columns {
		if col == "" {
			continue
		}
		if i < len(record) {
			row[col] = record[i]
		} else {
			row[col] = ""
		}
	}
	return row
}

// ExportFilename names an export taken at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("products-%d.csv", now.UnixMilli())
}
