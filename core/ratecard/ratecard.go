// Package ratecard reads rate files into raw catalog tables.
//
// Rate files are CSV or XLSX spreadsheets with a header row. Header cells are
// normalised to canonical column names, so files exported from the billing
// spreadsheets ("Compute type", "Rate/hour", "Rate/GB_50TB", ...) load
// without editing.
package ratecard

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
)

// headerAliases maps lower-cased spreadsheet headers to canonical columns
var headerAliases = map[string]string{
	"compute type":      catalog.ColComputeFamily,
	"compute_type":      catalog.ColComputeFamily,
	"instance":          catalog.ColInstanceID,
	"instance type":     catalog.ColInstanceID,
	"vcpu":              catalog.ColVCPU,
	"memory (gb)":       catalog.ColMemoryGB,
	"memory":            catalog.ColMemoryGB,
	"dbu/hour":          catalog.ColDBUPerHour,
	"dbu per hour":      catalog.ColDBUPerHour,
	"rate/hour":         catalog.ColUnitRate,
	"ondemandlinuxhr":   catalog.ColInfraRate,
	"s3_storage":        catalog.ColStorageClass,
	"storage class":     catalog.ColStorageClass,
	"rate/gb_50tb":      catalog.ColRateTier1,
	"rate/gb_500tb":     catalog.ColRateTier2,
	"rate/gb_over500tb": catalog.ColRateTier3,
}

// NormalizeHeader maps a header cell to its canonical column name
func NormalizeHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	return strings.Join(strings.Fields(key), "_")
}

// Load reads the compute, warehouse and storage files named by cfg. The
// compute file feeds both the jobs and development tables.
func Load(cfg config.PricingConfig) (catalog.RawTables, error) {
	log := logging.Named("ratecard")

	compute, err := ReadFile(cfg.Path(cfg.ComputeFile))
	if err != nil {
		return catalog.RawTables{}, err
	}
	warehouse, err := ReadFile(cfg.Path(cfg.WarehouseFile))
	if err != nil {
		return catalog.RawTables{}, err
	}
	storage, err := ReadFile(cfg.Path(cfg.StorageFile))
	if err != nil {
		return catalog.RawTables{}, err
	}

	development := *compute
	log.Info("rate files loaded",
		zap.Int("compute_rows", len(compute.Rows)),
		zap.Int("warehouse_rows", len(warehouse.Rows)),
		zap.Int("storage_rows", len(storage.Rows)),
	)

	return catalog.RawTables{
		Jobs:        compute,
		Warehouse:   warehouse,
		Development: &development,
		Storage:     storage,
	}, nil
}

// LoadCatalog reads the rate files and builds the catalog with the family
// groupings from cfg
func LoadCatalog(cfg config.PricingConfig) (*catalog.RateCatalog, error) {
	tables, err := Load(cfg)
	if err != nil {
		return nil, err
	}
	return catalog.Build(tables, Options(cfg))
}

// Options derives catalog options from pricing settings, falling back to the
// default family groupings for any list left empty
func Options(cfg config.PricingConfig) catalog.Options {
	opts := catalog.DefaultOptions()
	if len(cfg.IngestFamilies) > 0 {
		opts.IngestFamilies = cfg.IngestFamilies
	}
	if len(cfg.TransformFamilies) > 0 {
		opts.TransformFamilies = cfg.TransformFamilies
	}
	if len(cfg.WarehouseFamilies) > 0 {
		opts.WarehouseFamilies = cfg.WarehouseFamilies
	}
	if len(cfg.DevelopmentFamilies) > 0 {
		opts.DevelopmentFamilies = cfg.DevelopmentFamilies
	}
	return opts
}

// ReadFile reads a rate file, choosing the decoder by extension
func ReadFile(path string) (*catalog.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataLoad("open rate file "+path, err).WithContext("path", path)
	}
	defer f.Close()

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(name, f)
	case ".csv", "":
		return ReadCSV(name, f)
	default:
		return nil, errors.DataLoadf("unsupported rate file format %q", filepath.Ext(path)).
			WithContext("path", path)
	}
}

// ReadCSV decodes a CSV rate table
func ReadCSV(name string, r io.Reader) (*catalog.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DataLoad("parse csv "+name, err)
	}
	return buildTable(name, records)
}

// ReadXLSX decodes the first sheet of an XLSX workbook
func ReadXLSX(name string, r io.Reader) (*catalog.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.DataLoad("open workbook "+name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DataLoadf("workbook %s has no sheets", name)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.DataLoad(fmt.Sprintf("read sheet %s of %s", sheets[0], name), err)
	}
	return buildTable(name, rows)
}

// buildTable turns a header row plus records into a table. Blank records are
// skipped and short records are padded with empty cells.
func buildTable(name string, records [][]string) (*catalog.Table, error) {
	if len(records) == 0 {
		return nil, errors.DataLoadf("rate file %s is empty", name)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeHeader(h)
	}

	t := &catalog.Table{Name: name, Columns: header}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(catalog.Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, errors.DataLoadf("rate file %s has a header but no rows", name)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
