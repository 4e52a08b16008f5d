// Package importer bulk-loads catalog items from CSV and pushes each one to
// the commerce provider.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/money"
	catalogsvc "commerce-sync/internal/service/catalog"
)

const attrPrefix = "variant.attr."

type CatalogWriter interface {
	Create(ctx context.Context, merchant *domain.Merchant, spec domain.CatalogItemSpec) (*catalogsvc.View, error)
}

// Result counts what a run did. Rejected items are stored locally with their
// provider error but have no remote mirror.
type Result struct {
	Imported int
	Rejected []string
}

// CSVImporter reads catalog CSV files. A row with a key starts a new item;
// rows without a key add variants to the item above them.
//
// Columns: key, name, attributes (";"-separated), images (";"-separated),
// published, variant.price, variant.quantity and variant.attr.<name>.
type CSVImporter struct {
	reader   *csv.Reader
	writer   CatalogWriter
	merchant *domain.Merchant
	logger   *log.Logger
}

func NewCSVImporter(r io.Reader, writer CatalogWriter, merchant *domain.Merchant, logger *log.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CSVImporter{reader: csvr, writer: writer, merchant: merchant, logger: logger}
}

type pending struct {
	key  string
	line int
	spec domain.CatalogItemSpec
}

// Run parses every row and creates one catalog item per key.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	attrCols := attributeColumns(headers)

	var current *pending
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line++

		key := pick(record, index, "key")
		if key != "" {
			if current != nil {
				if err := i.save(ctx, current, &res); err != nil {
					return res, err
				}
			}
			current = &pending{key: key, line: line, spec: itemSpec(record, index)}
		}
		if current == nil {
			return res, fmt.Errorf("line %d: variant row before any item", line)
		}
		v, ok, err := variantSpec(record, index, attrCols)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			current.spec.Variants = append(current.spec.Variants, v)
		}
	}

	if current != nil {
		if err := i.save(ctx, current, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, p *pending, res *Result) error {
	if p.spec.Name == "" {
		return fmt.Errorf("line %d: item %q has no name", p.line, p.key)
	}
	view, err := i.writer.Create(ctx, i.merchant, p.spec)
	if err != nil {
		if errors.Is(err, domain.ErrRejected) {
			i.logger.Printf("importer: item key=%s rejected: %v", p.key, err)
			res.Rejected = append(res.Rejected, p.key)
			return nil
		}
		return fmt.Errorf("create item %q: %w", p.key, err)
	}
	i.logger.Printf("importer: item key=%s id=%s remote=%s variants=%d", p.key, view.Item.ID, view.Item.Remote.ID(), len(p.spec.Variants))
	res.Imported++
	return nil
}

func itemSpec(record []string, index map[string]int) domain.CatalogItemSpec {
	published, _ := strconv.ParseBool(pick(record, index, "published"))
	return domain.CatalogItemSpec{
		Name:       pick(record, index, "name"),
		Attributes: splitList(pick(record, index, "attributes")),
		Images:     splitList(pick(record, index, "images")),
		Published:  published,
	}
}

func variantSpec(record []string, index map[string]int, attrCols map[string]int) (domain.VariantSpec, bool, error) {
	priceStr := pick(record, index, "variant.price")
	if priceStr == "" {
		return domain.VariantSpec{}, false, nil
	}
	price, err := money.ParseMajor(priceStr)
	if err != nil {
		return domain.VariantSpec{}, false, err
	}
	v := domain.VariantSpec{Price: price}
	if q := pick(record, index, "variant.quantity"); q != "" {
		v.Quantity, err = strconv.Atoi(q)
		if err != nil {
			return domain.VariantSpec{}, false, fmt.Errorf("invalid quantity %q: %w", q, err)
		}
	}
	for name, pos := range attrCols {
		if pos >= len(record) {
			continue
		}
		if val := strings.TrimSpace(record[pos]); val != "" {
			if v.Attributes == nil {
				v.Attributes = map[string]string{}
			}
			v.Attributes[name] = val
		}
	}
	return v, true, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func attributeColumns(headers []string) map[string]int {
	cols := map[string]int{}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if name := strings.TrimPrefix(h, attrPrefix); name != h && name != "" {
			cols[name] = i
		}
	}
	return cols
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
