package kernels

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lovi-cloud/tanuki/extractor"
)

// Output file names served to the boot loaders, regardless of what the
// source paths inside the ISO were called.
const (
	KernelName = "vmlinuz"
	InitrdName = "initrd"
)

// ErrUnsupportedLayout is returned when an ISO matches none of the known
// internal archive layouts.
var ErrUnsupportedLayout = errors.New("unsupported ISO layout")

// layout is one known internal archive layout. Initrds are candidate paths
// tried in order once the kernel path has matched.
type layout struct {
	kernel  string
	initrds []string
}

var layouts = []layout{
	{kernel: "casper/vmlinuz", initrds: []string{"casper/initrd", "casper/initrd.img"}},
	{kernel: "install.amd/vmlinuz", initrds: []string{"install.amd/initrd.gz"}},
	{kernel: "live/vmlinuz", initrds: []string{"live/initrd.img"}},
}

// Result describes one successful extraction.
type Result struct {
	KernelSHA256 string
	InitrdSHA256 string
}

// Extract locates the first known layout inside the ISO at isoPath and
// streams its kernel and initrd to outDir/vmlinuz and outDir/initrd,
// overwriting prior artifacts in place. The first layout whose kernel path
// exists wins; when none matches, the error wraps ErrUnsupportedLayout.
func Extract(ctx context.Context, ex extractor.Extractor, isoPath, outDir string, logger *zap.Logger) (*Result, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	for _, l := range layouts {
		kernel, err := ex.Open(ctx, isoPath, l.kernel)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, err
		}
		logger.Info("extracting kernel artifacts",
			zap.String("iso", filepath.Base(isoPath)),
			zap.String("layout", l.kernel))

		kernelSum, err := write(kernel, filepath.Join(outDir, KernelName))
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", l.kernel, err)
		}

		initrd, src, err := openInitrd(ctx, ex, isoPath, l.initrds)
		if err != nil {
			return nil, err
		}
		initrdSum, err := write(initrd, filepath.Join(outDir, InitrdName))
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", src, err)
		}

		return &Result{
			KernelSHA256: kernelSum,
			InitrdSHA256: initrdSum,
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", filepath.Base(isoPath), ErrUnsupportedLayout)
}

func openInitrd(ctx context.Context, ex extractor.Extractor, isoPath string, candidates []string) (io.ReadCloser, string, error) {
	for _, c := range candidates {
		r, err := ex.Open(ctx, isoPath, c)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, c, err
		}
		return r, c, nil
	}
	return nil, "", fmt.Errorf("%s has no initrd in %v: %w", filepath.Base(isoPath), candidates, ErrUnsupportedLayout)
}

// write streams r to path and returns the hex SHA-256 of the written bytes.
func write(r io.ReadCloser, path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		r.Close()
		return "", err
	}
	sum := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, sum), r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if ferr := f.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sum.Sum(nil)), nil
}

// Present reports whether both output files already exist under outDir.
func Present(outDir string) bool {
	for _, name := range []string{KernelName, InitrdName} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			return false
		}
	}
	return true
}
