package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns the decoder knows how to map. Anything else in the header is ignored.
const (
	ColSku         = "sku"
	ColName        = "name"
	ColDescription = "description"
	ColPrice       = "price"
	ColActive      = "active"
)

var truthyTokens = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "on": true}
var falsyTokens = map[string]bool{"0": true, "false": true, "no": true, "n": true, "off": true}

// Row is a single normalized CSV record. Nil pointers mean the field was
// absent or unparsable in the source row.
type Row struct {
	Sku         string
	Name        *string
	Description *string
	Price       *float64
	Active      *bool
}

// Decoder streams product rows out of a CSV file in batches of at most
// chunkSize rows, so memory stays bounded regardless of file size.
type Decoder struct {
	r         *csv.Reader
	chunkSize int
	cols      map[string]int
	done      bool
}

// NewDecoder reads the header record and resolves the known columns by name.
// Column order is irrelevant; a missing column makes that field absent on
// every row. A file without a header yields zero batches.
func NewDecoder(r io.Reader, chunkSize int) (*Decoder, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	d := &Decoder{
		r:         cr,
		chunkSize: chunkSize,
		cols:      make(map[string]int),
	}

	header, err := cr.Read()
	if err == io.EOF {
		d.done = true
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := d.cols[key]; !exists {
			d.cols[key] = i
		}
	}

	return d, nil
}

// Next returns the next batch of up to chunkSize rows, or io.EOF once the
// file is exhausted. Rows with an empty sku are dropped and do not count
// toward the batch size. Structural read errors abort the stream.
func (d *Decoder) Next() ([]Row, error) {
	if d.done {
		return nil, io.EOF
	}

	batch := make([]Row, 0, d.chunkSize)
	for len(batch) < d.chunkSize {
		record, err := d.r.Read()
		if err == io.EOF {
			d.done = true
			if len(batch) > 0 {
				return batch, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		row, ok := d.parseRow(record)
		if !ok {
			continue
		}
		batch = append(batch, row)
	}

	return batch, nil
}

func (d *Decoder) parseRow(record []string) (Row, bool) {
	sku := strings.TrimSpace(d.field(record, ColSku))
	if sku == "" {
		return Row{}, false
	}

	return Row{
		Sku:         sku,
		Name:        optionalString(d.field(record, ColName)),
		Description: optionalString(d.field(record, ColDescription)),
		Price:       optionalPrice(d.field(record, ColPrice)),
		Active:      optionalBool(d.field(record, ColActive)),
	}, true
}

func (d *Decoder) field(record []string, col string) string {
	idx, ok := d.cols[col]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalPrice(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	price, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &price
}

func optionalBool(raw string) *bool {
	token := strings.ToLower(strings.TrimSpace(raw))
	if truthyTokens[token] {
		v := true
		return &v
	}
	if falsyTokens[token] {
		v := false
		return &v
	}
	return nil
}

// CountRows counts data rows (header excluded) without retaining them.
// Unlike the decoder it uses strict field counting, so a structurally
// inconsistent file is rejected here before a job is ever created.
func CountRows(r io.Reader) (int, error) {
	cr := csv.NewReader(r)

	if _, err := cr.Read(); err == io.EOF {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	count := 0
	for {
		_, err := cr.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read csv record: %w", err)
		}
		count++
	}
}
