// Package excel parses the first worksheet of an Office Open XML workbook.
package excel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser"
	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// emptyHeader names columns whose header cell is blank.
const emptyHeader = "__EMPTY"

func init() {
	fileparser.Register(fileparser.ParserRegistration{
		Info: fileparser.ParserInfo{
			Format:      "excel",
			DisplayName: "Excel workbook",
			Extensions:  []string{".xlsx", ".xlsm"},
		},
		Factory: func() fileparser.Parser { return NewParser() },
	})
}

// Parser reads the first sheet of a workbook. Cells are taken as their
// formatted text; blank cells become null and blank rows are skipped.
type Parser struct{}

// NewParser creates an Excel parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ fileparser.Parser = (*Parser)(nil)

func (p *Parser) Parse(ctx context.Context, r io.Reader) (models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found: %w", apperrors.ErrNoData)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := firstNonBlank(rows, 0)
	if start < 0 {
		return nil, apperrors.ErrNoData
	}
	header := headerNames(rows[start])

	data := make(models.Dataset, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		rec := models.NewRecord(len(header))
		for i, name := range header {
			if i < len(row) && row[i] != "" {
				rec.Set(name, models.StringValue(row[i]))
			} else {
				rec.Set(name, models.Null())
			}
		}
		data = append(data, rec)
	}
	return data, nil
}

// headerNames turns the header row into unique column names. Blank cells
// become "__EMPTY", "__EMPTY_1", ...; repeated names get "_1", "_2", ...
func headerNames(row []string) []string {
	names := make([]string, 0, len(row))
	seen := make(map[string]int, len(row))
	blanks := 0

	for _, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = emptyHeader
			if blanks > 0 {
				name += "_" + strconv.Itoa(blanks)
			}
			blanks++
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name += "_" + strconv.Itoa(n)
		}
		seen[name]++
		names = append(names, name)
	}

	// Trailing blank header cells are dropped.
	for len(names) > 0 && strings.HasPrefix(names[len(names)-1], emptyHeader) && strings.TrimSpace(row[len(names)-1]) == "" {
		names = names[:len(names)-1]
	}
	return names
}

func firstNonBlank(rows [][]string, from int) int {
	for i := from; i < len(rows); i++ {
		if !isBlank(rows[i]) {
			return i
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
