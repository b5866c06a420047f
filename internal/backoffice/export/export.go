// Package export writes activity log rows as downloadable CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// TimestampLayout formats the first column.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is written first, even when there are no rows.
var Header = []string{"Timestamp", "User", "Action", "Details", "IP"}

// ParseFormat maps a request value to a Format. Unknown values mean CSV.
func ParseFormat(s string) Format {
	if Format(strings.ToLower(strings.TrimSpace(s))) == XLSX {
		return XLSX
	}
	return CSV
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is logs_<from>_to_<to>.<format>.
func Filename(from, to string, f Format) string {
	return fmt.Sprintf("logs_%s_to_%s.%s", from, to, f)
}

// Writer receives export rows one at a time. Close must be called to
// flush the file.
type Writer interface {
	Write(row *models.LogExportRow) error
	Close() error
}

// NewWriter writes the header row and returns a Writer for f.
func NewWriter(f Format, out io.Writer) (Writer, error) {
	if f == XLSX {
		return newXLSXWriter(out)
	}
	return newCSVWriter(out)
}

func record(row *models.LogExportRow) []string {
	return []string{
		row.CreatedAt.UTC().Format(TimestampLayout),
		row.ActorName(),
		row.Action,
		row.Details,
		row.IPAddress,
	}
}

type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(out io.Writer) (*csvWriter, error) {
	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	return &csvWriter{w: w}, nil
}

func (c *csvWriter) Write(row *models.LogExportRow) error {
	return c.w.Write(record(row))
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

const sheetName = "Logs"

type xlsxWriter struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	out    io.Writer
	row    int
}

func newXLSXWriter(out io.Writer) (*xlsxWriter, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return nil, err
	}
	x := &xlsxWriter{file: file, stream: stream, out: out}
	if err := x.writeRow(Header); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *xlsxWriter) writeRow(values []string) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return x.stream.SetRow(cell, cells)
}

func (x *xlsxWriter) Write(row *models.LogExportRow) error {
	return x.writeRow(record(row))
}

func (x *xlsxWriter) Close() error {
	defer x.file.Close()
	if err := x.stream.Flush(); err != nil {
		return err
	}
	return x.file.Write(x.out)
}
