// Package export renders transactions and reports as files: CSV and XML
// downloads, text tables for the CLI and PNG charts.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"tracker/internal/core"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatXML Format = "xml"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml"
	}
	return "text/csv"
}

func (f Format) Filename() string {
	return "transactions." + string(f)
}

var csvHeader = []string{"id", "date", "type", "category", "amount", "notes"}

// Write renders txns in the given format, preserving their order.
func Write(w io.Writer, f Format, txns []core.Transaction) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, txns)
	case FormatXML:
		return WriteXML(w, txns)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func WriteCSV(w io.Writer, txns []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.String(),
			string(t.Type),
			t.Category,
			t.Amount.String(),
			t.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXML(w io.Writer, txns []core.Transaction) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("transactions")
	root.CreateAttr("count", strconv.Itoa(len(txns)))
	for _, t := range txns {
		el := root.CreateElement("transaction")
		el.CreateAttr("id", strconv.FormatInt(t.ID, 10))
		el.CreateAttr("type", string(t.Type))
		el.CreateElement("date").SetText(t.Date.String())
		el.CreateElement("category").SetText(t.Category)
		el.CreateElement("amount").SetText(t.Amount.String())
		if t.Notes != "" {
			el.CreateElement("notes").SetText(t.Notes)
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}
