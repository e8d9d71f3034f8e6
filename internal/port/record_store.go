package port

import "context"

// RecordStore is an append-only store of single-field text records.
type RecordStore interface {
	Append(ctx context.Context, text string) error
}
