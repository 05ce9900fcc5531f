package extractor

import (
	"context"
	"io"
)

// Extractor is the interface for tanuki to read single files out of an ISO
// image. Implementations report a missing internal path with an error
// wrapping os.ErrNotExist so callers can probe for alternative layouts.
type Extractor interface {
	Open(ctx context.Context, image, internalPath string) (io.ReadCloser, error)
}
