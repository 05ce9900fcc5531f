package sevenzip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/lovi-cloud/tanuki/extractor"
)

// SevenZip extracts files from ISO images by invoking the 7z binary.
type SevenZip struct {
	bin    string
	logger *zap.Logger
}

// New is. It fails when no 7z binary is found on PATH.
func New(logger *zap.Logger) (extractor.Extractor, error) {
	bin, err := exec.LookPath("7z")
	if err != nil {
		return nil, fmt.Errorf("failed to find 7z binary: %w", err)
	}
	return &SevenZip{
		bin:    bin,
		logger: logger,
	}, nil
}

// Open streams internalPath out of image via `7z e -so`. Existence is probed
// first with `7z l -ba` because extraction to stdout exits zero even when the
// requested path does not exist in the archive.
func (s *SevenZip) Open(ctx context.Context, image, internalPath string) (io.ReadCloser, error) {
	ok, err := s.contains(ctx, image, internalPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s not in %s: %w", internalPath, image, os.ErrNotExist)
	}

	cmd := exec.CommandContext(ctx, s.bin, "e", "-so", image, internalPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe 7z stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start 7z: %w", err)
	}
	s.logger.Debug("extracting", zap.String("image", image), zap.String("path", internalPath))

	return &streamCloser{
		ReadCloser: stdout,
		cmd:        cmd,
		stderr:     &stderr,
	}, nil
}

func (s *SevenZip) contains(ctx context.Context, image, internalPath string) (bool, error) {
	out, err := exec.CommandContext(ctx, s.bin, "l", "-ba", image, internalPath).Output()
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", image, err)
	}
	return listingContains(out, internalPath), nil
}

// listingContains scans `7z l -ba` output for an exact path match. The path
// is the last column of each listing line; a bare suffix match would accept
// another member like extra-casper/vmlinuz when probing casper/vmlinuz.
func listingContains(out []byte, internalPath string) bool {
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[len(fields)-1] == internalPath {
			return true
		}
	}
	return false
}

// streamCloser waits for the 7z process when the stream is closed so a failed
// extraction surfaces as a Close error instead of a silent short read.
type streamCloser struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

func (c *streamCloser) Close() error {
	io.Copy(io.Discard, c.ReadCloser)
	c.ReadCloser.Close()
	if err := c.cmd.Wait(); err != nil {
		return fmt.Errorf("7z failed: %s: %w", strings.TrimSpace(c.stderr.String()), err)
	}
	return nil
}
