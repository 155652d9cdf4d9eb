package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
)

// ParsedProductCSVRecord は商品CSVの1行を表します。価格は文字列のまま保持し、検証は呼び出し側で行います。
type ParsedProductCSVRecord struct {
	Line        int
	Name        string
	Price       string
	Description string
}

// ParseProductCSV は name,price[,description] ヘッダー付きの商品CSVを解析します。
func ParseProductCSV(r io.Reader, charset string) ([]ParsedProductCSVRecord, error) {
	decoded, err := DecodeReader(r, charset)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(SkipBOM(decoded))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("product CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product CSV header: %w", err)
	}

	colIndex, err := getColIndex(header, []string{"name", "price"})
	if err != nil {
		return nil, err
	}

	var records []ParsedProductCSVRecord
	line := 1

	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: product CSV line %d unreadable (skipping): %v", line, err)
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		name := get("name")
		if name == "" && get("price") == "" {
			continue
		}

		records = append(records, ParsedProductCSVRecord{
			Line:        line,
			Name:        name,
			Price:       get("price"),
			Description: get("description"),
		})
	}

	return records, nil
}
