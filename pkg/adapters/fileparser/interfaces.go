package fileparser

import (
	"context"
	"io"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// Parser turns an uploaded file into an ordered list of records. The first
// row of the file is the header; every following row becomes one record keyed
// by header name.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (models.Dataset, error)
}
