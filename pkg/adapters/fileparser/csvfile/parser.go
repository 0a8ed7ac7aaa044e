// Package csvfile parses comma-separated files into records, converting cells
// that look like booleans or numbers into typed values.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser"
	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// ExtraColumn holds the cells of a row that has more fields than the header,
// joined with commas.
const ExtraColumn = models.ExtraColumn

// maxSafeInteger bounds the numbers that are converted; larger values (long
// account numbers, card numbers) stay strings so no digits are lost.
const maxSafeInteger = 1 << 53

var floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1024

func init() {
	fileparser.Register(fileparser.ParserRegistration{
		Info: fileparser.ParserInfo{
			Format:      "csv",
			DisplayName: "Comma-separated values",
			Extensions:  []string{".csv"},
		},
		Factory: func() fileparser.Parser { return NewParser() },
	})
}

// Parser reads CSV with a header row.
type Parser struct{}

// NewParser creates a CSV parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ fileparser.Parser = (*Parser)(nil)

// Parse reads all rows. Blank lines are skipped. Short rows get null for the
// missing columns; long rows keep their extra cells under ExtraColumn.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	header = append([]string(nil), header...)

	data := make(models.Dataset, 0)
	for row := 1; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		data = append(data, buildRecord(header, fields))
	}

	return data, nil
}

func buildRecord(header, fields []string) *models.Record {
	rec := models.NewRecord(len(header) + 1)
	for i, name := range header {
		if i < len(fields) {
			rec.Set(name, ConvertCell(fields[i]))
		} else {
			rec.Set(name, models.Null())
		}
	}
	if len(fields) > len(header) {
		rec.Set(ExtraColumn, models.StringValue(strings.Join(fields[len(header):], ",")))
	}
	return rec
}

// ConvertCell applies dynamic typing to one cell: "true"/"TRUE" and
// "false"/"FALSE" become booleans, decimal numbers within the safe integer
// range become numbers, the empty string becomes null, and everything else is
// kept as a string.
func ConvertCell(s string) models.Value {
	switch s {
	case "":
		return models.Null()
	case "true", "TRUE":
		return models.BoolValue(true)
	case "false", "FALSE":
		return models.BoolValue(false)
	}

	if floatPattern.MatchString(s) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && math.Abs(f) < maxSafeInteger {
			return models.NumberValue(f)
		}
	}
	return models.StringValue(s)
}
