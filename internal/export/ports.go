// Package export mirrors recorded transactions into an external
// spreadsheet for owners who keep their books in Google Sheets.
package export

import (
	"context"

	"vibeledger/internal/core"
)

// RowWriter appends one transaction as a spreadsheet row and returns a
// reference to where it landed.
type RowWriter interface {
	AppendRow(ctx context.Context, t core.Transaction) (string, error)
}
