package fileparser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// ParserInfo describes a registered file parser.
type ParserInfo struct {
	Format      string   `json:"format"`       // "csv", "excel"
	DisplayName string   `json:"display_name"` // "Comma-separated values"
	Extensions  []string `json:"extensions"`   // ".csv"
}

// ParserRegistration contains info + factory for creating a parser.
type ParserRegistration struct {
	Info    ParserInfo
	Factory func() Parser
}

var (
	registryMu  sync.RWMutex
	registry    = make(map[string]ParserRegistration)
	byExtension = make(map[string]string)
)

// Register is called by each parser's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg ParserRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Format] = reg
	for _, ext := range reg.Info.Extensions {
		byExtension[normalizeExtension(ext)] = reg.Info.Format
	}
}

// RegisteredParsers returns info for all registered parsers, ordered by format.
func RegisteredParsers() []ParserInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ParserInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Format < result[j].Format })
	return result
}

// ForFile picks the parser for a file name by its extension.
// Returns apperrors.ErrUnsupportedFormat when no parser handles it.
func ForFile(fileName string) (Parser, ParserInfo, error) {
	ext := normalizeExtension(filepath.Ext(fileName))

	registryMu.RLock()
	defer registryMu.RUnlock()

	if format, ok := byExtension[ext]; ok {
		reg := registry[format]
		return reg.Factory(), reg.Info, nil
	}
	return nil, ParserInfo{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, ext)
}

// IsSupported checks if a file name has a registered extension.
func IsSupported(fileName string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := byExtension[normalizeExtension(filepath.Ext(fileName))]
	return ok
}

// ParseFile selects a parser for fileName and parses r with it.
func ParseFile(ctx context.Context, fileName string, r io.Reader) (models.Dataset, ParserInfo, error) {
	parser, info, err := ForFile(fileName)
	if err != nil {
		return nil, ParserInfo{}, err
	}
	data, err := parser.Parse(ctx, r)
	if err != nil {
		return nil, info, fmt.Errorf("failed to parse %s file: %w", info.Format, err)
	}
	return data, info, nil
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
