package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/productmatch/backend/internal/domain"
)

// Input formats accepted by ReadRecords
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// formatFromPath guesses the input format from the file extension
func formatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("cannot infer input format from %q, use --format", path)
}

// ReadRecords reads product records in the given format
func ReadRecords(r io.Reader, format string) ([]domain.Record, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatJSONL:
		return readJSONL(r)
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

// readCSV maps header columns to record fields case-insensitively; other columns are ignored
func readCSV(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[int]domain.Field)
	for i, name := range header {
		if field, ok := domain.ParseField(strings.TrimSpace(name)); ok {
			columns[i] = field
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("csv header %v has no product field column", header)
	}

	var records []domain.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(records)+2, err)
		}

		var record domain.Record
		for i, value := range row {
			field, ok := columns[i]
			if !ok {
				continue
			}
			setField(&record, field, strings.TrimSpace(value))
		}
		records = append(records, record)
	}

	return records, nil
}

func readJSONL(r io.Reader) ([]domain.Record, error) {
	decoder := json.NewDecoder(r)

	var records []domain.Record
	for {
		var record domain.Record
		err := decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(records)+1, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func setField(record *domain.Record, field domain.Field, value string) {
	switch field {
	case domain.FieldGTINs:
		record.GTINs = value
	case domain.FieldBrand:
		record.Brand = value
	case domain.FieldManufacturer:
		record.Manufacturer = value
	case domain.FieldManufacturerNumber:
		record.ManufacturerNumber = value
	}
}
