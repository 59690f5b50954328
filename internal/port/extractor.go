package port

import "context"

// TextExtractor reads the plain text of a document. It never fails: missing,
// unreadable or empty documents yield "".
type TextExtractor interface {
	Extract(ctx context.Context, path string) string
}
