package goiso

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kdomanski/iso9660"
	"go.uber.org/zap"

	"github.com/lovi-cloud/tanuki/extractor"
)

// GoISO reads ISO 9660 images in pure Go. It is the fallback used when no 7z
// binary is installed on the host.
type GoISO struct {
	logger *zap.Logger
}

// New is
func New(logger *zap.Logger) (extractor.Extractor, error) {
	return &GoISO{
		logger: logger,
	}, nil
}

// Open walks the image's directory tree down to internalPath.
func (g *GoISO) Open(ctx context.Context, image, internalPath string) (io.ReadCloser, error) {
	f, err := os.Open(image)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", image, err)
	}
	img, err := iso9660.OpenImage(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read image %s: %w", image, err)
	}
	cur, err := img.RootDir()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read root directory of %s: %w", image, err)
	}

	for _, part := range strings.Split(internalPath, "/") {
		if part == "" {
			continue
		}
		if !cur.IsDir() {
			f.Close()
			return nil, fmt.Errorf("%s not in %s: %w", internalPath, image, os.ErrNotExist)
		}
		children, err := cur.GetChildren()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read directory in %s: %w", image, err)
		}
		cur = nil
		for _, child := range children {
			if strings.EqualFold(child.Name(), part) {
				cur = child
				break
			}
		}
		if cur == nil {
			f.Close()
			return nil, fmt.Errorf("%s not in %s: %w", internalPath, image, os.ErrNotExist)
		}
	}
	if cur.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory in %s: %w", internalPath, image, os.ErrNotExist)
	}

	g.logger.Debug("extracting", zap.String("image", image), zap.String("path", internalPath))
	return &fileCloser{
		Reader: cur.Reader(),
		f:      f,
	}, nil
}

type fileCloser struct {
	io.Reader
	f *os.File
}

func (c *fileCloser) Close() error {
	return c.f.Close()
}
