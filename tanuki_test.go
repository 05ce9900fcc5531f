package tanuki

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lovi-cloud/tanuki/config"
	"github.com/lovi-cloud/tanuki/iso"
	"github.com/lovi-cloud/tanuki/kernels"
	"github.com/lovi-cloud/tanuki/types"
)

// fakeDatastore keeps artifact records in memory.
type fakeDatastore struct {
	artifacts map[string]kernels.Artifact
	puts      int
}

func newFakeDatastore() *fakeDatastore {
	return &fakeDatastore{artifacts: map[string]kernels.Artifact{}}
}

func (f *fakeDatastore) GetArtifact(ctx context.Context, isoName string) (*kernels.Artifact, error) {
	a, ok := f.artifacts[isoName]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeDatastore) PutArtifact(ctx context.Context, artifact kernels.Artifact) error {
	f.artifacts[artifact.ISOName] = artifact
	f.puts++
	return nil
}

func (f *fakeDatastore) Close() error { return nil }

// fakeExtractor serves archive contents keyed by ISO file name.
type fakeExtractor struct {
	files map[string]map[string]string
	opens int
}

func (f *fakeExtractor) Open(ctx context.Context, image, internalPath string) (io.ReadCloser, error) {
	f.opens++
	content, ok := f.files[filepath.Base(image)][internalPath]
	if !ok {
		return nil, fmt.Errorf("%s not in %s: %w", internalPath, image, os.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func writeISO(t *testing.T, dir, name string) os.FileInfo {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("iso-bytes"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func writeArtifacts(t *testing.T, tftpRoot, base, kernel, initrd string) string {
	t.Helper()
	outDir := filepath.Join(tftpRoot, "kernels", base)
	require.NoError(t, os.MkdirAll(outDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, kernels.KernelName), []byte(kernel), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, kernels.InitrdName), []byte(initrd), 0644))
	return outDir
}

func TestEnsureArtifactsSkipsUnchanged(t *testing.T) {
	isoDir := t.TempDir()
	tftpRoot := t.TempDir()
	info := writeISO(t, isoDir, "debian.iso")
	outDir := writeArtifacts(t, tftpRoot, "debian", "sentinel-kernel", "sentinel-initrd")

	ds := newFakeDatastore()
	ds.artifacts["debian.iso"] = kernels.Artifact{
		ISOName:        "debian.iso",
		BaseName:       "debian",
		SourceSize:     info.Size(),
		SourceModified: info.ModTime(),
	}
	ex := &fakeExtractor{}

	e := iso.Entry{Name: "debian.iso", Base: "debian", Flavor: types.FlavorGeneric}
	err := ensureArtifacts(context.Background(), ds, ex, e, isoDir, tftpRoot, uuid.NewV4(), zap.NewNop())
	require.NoError(t, err)

	// the extractor is never consulted and the artifacts stay untouched
	assert.Equal(t, 0, ex.opens)
	assert.Equal(t, 0, ds.puts)
	b, err := os.ReadFile(filepath.Join(outDir, kernels.KernelName))
	require.NoError(t, err)
	assert.Equal(t, "sentinel-kernel", string(b))
}

func TestEnsureArtifactsExtractsWhenSourceChanged(t *testing.T) {
	isoDir := t.TempDir()
	tftpRoot := t.TempDir()
	info := writeISO(t, isoDir, "debian.iso")
	outDir := writeArtifacts(t, tftpRoot, "debian", "stale-kernel", "stale-initrd")

	ds := newFakeDatastore()
	ds.artifacts["debian.iso"] = kernels.Artifact{
		ISOName:        "debian.iso",
		BaseName:       "debian",
		SourceSize:     info.Size() + 1,
		SourceModified: info.ModTime(),
	}
	ex := &fakeExtractor{files: map[string]map[string]string{
		"debian.iso": {
			"live/vmlinuz":    "fresh-kernel",
			"live/initrd.img": "fresh-initrd",
		},
	}}

	e := iso.Entry{Name: "debian.iso", Base: "debian", Flavor: types.FlavorGeneric}
	err := ensureArtifacts(context.Background(), ds, ex, e, isoDir, tftpRoot, uuid.NewV4(), zap.NewNop())
	require.NoError(t, err)

	assert.Greater(t, ex.opens, 0)
	assert.Equal(t, 1, ds.puts)
	b, err := os.ReadFile(filepath.Join(outDir, kernels.KernelName))
	require.NoError(t, err)
	assert.Equal(t, "fresh-kernel", string(b))
}

func TestEnsureArtifactsReextractsWhenArtifactsMissing(t *testing.T) {
	// a matching record alone is not enough; both output files must exist
	isoDir := t.TempDir()
	tftpRoot := t.TempDir()
	info := writeISO(t, isoDir, "debian.iso")

	ds := newFakeDatastore()
	ds.artifacts["debian.iso"] = kernels.Artifact{
		ISOName:        "debian.iso",
		BaseName:       "debian",
		SourceSize:     info.Size(),
		SourceModified: info.ModTime(),
	}
	ex := &fakeExtractor{files: map[string]map[string]string{
		"debian.iso": {
			"live/vmlinuz":    "fresh-kernel",
			"live/initrd.img": "fresh-initrd",
		},
	}}

	e := iso.Entry{Name: "debian.iso", Base: "debian", Flavor: types.FlavorGeneric}
	err := ensureArtifacts(context.Background(), ds, ex, e, isoDir, tftpRoot, uuid.NewV4(), zap.NewNop())
	require.NoError(t, err)
	assert.Greater(t, ex.opens, 0)
	assert.True(t, kernels.Present(filepath.Join(tftpRoot, "kernels", "debian")))
}

func TestGenerateExcludesFailedISO(t *testing.T) {
	isoDir := t.TempDir()
	tftpRoot := t.TempDir()
	writeISO(t, isoDir, "bad.iso")
	writeISO(t, isoDir, "good.iso")

	entries := []iso.Entry{
		{Name: "bad.iso", Base: "bad", Flavor: types.FlavorGeneric},
		{Name: "good.iso", Base: "good", Flavor: types.FlavorGeneric},
	}
	ex := &fakeExtractor{files: map[string]map[string]string{
		"good.iso": {
			"casper/vmlinuz": "kernel-bytes",
			"casper/initrd":  "initrd-bytes",
		},
	}}
	cfg := &config.Config{HostAddr: "192.0.2.10", HTTPPort: 80}

	err := generate(context.Background(), newFakeDatastore(), ex, entries, cfg, isoDir, tftpRoot, uuid.NewV4(), zap.NewNop())

	// the aggregated failure is reported after the menus are written
	require.Error(t, err)
	assert.ErrorIs(t, err, kernels.ErrUnsupportedLayout)
	assert.Contains(t, err.Error(), "bad.iso")

	grubOut, rerr := os.ReadFile(filepath.Join(tftpRoot, grubConfigPath))
	require.NoError(t, rerr)
	pxeOut, rerr := os.ReadFile(filepath.Join(tftpRoot, pxelinuxConfigPath))
	require.NoError(t, rerr)

	// the failed ISO is absent from both documents, the healthy one remains
	assert.Contains(t, string(grubOut), "kernels/good/vmlinuz")
	assert.NotContains(t, string(grubOut), "kernels/bad/")
	assert.Contains(t, string(pxeOut), "LABEL good")
	assert.NotContains(t, string(pxeOut), "LABEL bad")
}

func TestGenerateAllHealthy(t *testing.T) {
	isoDir := t.TempDir()
	tftpRoot := t.TempDir()
	writeISO(t, isoDir, "good.iso")

	entries := []iso.Entry{{Name: "good.iso", Base: "good", Flavor: types.FlavorGeneric}}
	ex := &fakeExtractor{files: map[string]map[string]string{
		"good.iso": {
			"casper/vmlinuz": "kernel-bytes",
			"casper/initrd":  "initrd-bytes",
		},
	}}
	cfg := &config.Config{HostAddr: "192.0.2.10", HTTPPort: 80}

	ds := newFakeDatastore()
	err := generate(context.Background(), ds, ex, entries, cfg, isoDir, tftpRoot, uuid.NewV4(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.puts)
	assert.True(t, kernels.Present(filepath.Join(tftpRoot, "kernels", "good")))
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"tanuki", "-no-such-flag"}

	err := Run(context.Background())
	assert.Error(t, err)
}
