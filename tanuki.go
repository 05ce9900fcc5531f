package tanuki

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lovi-cloud/tanuki/config"
	"github.com/lovi-cloud/tanuki/datastore"
	"github.com/lovi-cloud/tanuki/datastore/sqlite"
	"github.com/lovi-cloud/tanuki/extractor"
	"github.com/lovi-cloud/tanuki/extractor/goiso"
	"github.com/lovi-cloud/tanuki/extractor/sevenzip"
	"github.com/lovi-cloud/tanuki/iso"
	"github.com/lovi-cloud/tanuki/kernels"
	"github.com/lovi-cloud/tanuki/menu"
	"github.com/lovi-cloud/tanuki/menu/grub"
	"github.com/lovi-cloud/tanuki/menu/pxelinux"
	"github.com/lovi-cloud/tanuki/provision"
	"github.com/lovi-cloud/tanuki/provision/docker"
	"github.com/lovi-cloud/tanuki/provision/host"
)

// Menu document paths relative to the TFTP root.
const (
	grubConfigPath     = "grub/grub.cfg"
	pxelinuxConfigPath = "pxelinux.cfg/default"
)

// Run the tanuki
func Run(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}

	var (
		isoDir        string
		tftpRoot      string
		dsn           string
		rulesPath     string
		skipProvision bool
	)
	flags := flag.NewFlagSet(fmt.Sprintf("tanuki (v%s rev:%s)", version, revision), flag.ContinueOnError)
	flags.StringVar(&isoDir, "iso-dir", "./images", "directory containing ISO images")
	flags.StringVar(&tftpRoot, "tftp-root", "./tftp", "TFTP root directory")
	flags.StringVar(&dsn, "dsn", "file:tanuki.db?cache=shared", "sqlite3 dsn")
	flags.StringVar(&rulesPath, "rules", "", "classifier rule file (yaml), built-in rules when empty")
	flags.BoolVar(&skipProvision, "skip-provision", false, "skip bootloader provisioning")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rules := iso.DefaultRules()
	if rulesPath != "" {
		rules, err = iso.LoadRules(rulesPath)
		if err != nil {
			return err
		}
	}
	classifier := iso.NewClassifier(rules)

	ds, err := sqlite.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer ds.Close()

	// Menus reference bootloader files, so provisioning failures abort
	// before any menu is written.
	if !skipProvision {
		if err := provisionBootloaders(ctx, tftpRoot, logger); err != nil {
			return err
		}
	}

	entries, err := iso.Scan(isoDir, classifier)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logger.Warn("no ISO files found, generating empty menus", zap.String("dir", isoDir))
	}

	ex, err := newExtractor(logger)
	if err != nil {
		return err
	}

	runID := uuid.NewV4()
	logger.Info("starting menu generation",
		zap.String("run_id", runID.String()),
		zap.Int("isos", len(entries)),
		zap.String("base_url", cfg.BaseURL()))

	return generate(ctx, ds, ex, entries, cfg, isoDir, tftpRoot, runID, logger)
}

// generate processes one ISO at a time in sorted order. A failed extraction
// excludes the entry from both menus; remaining ISOs are still processed and
// the aggregated failures are reported after the outputs are written.
func generate(ctx context.Context, ds datastore.Datastore, ex extractor.Extractor, entries []iso.Entry, cfg *config.Config, isoDir, tftpRoot string, runID uuid.UUID, logger *zap.Logger) error {
	var failures error
	booted := make([]iso.Entry, 0, len(entries))
	for _, e := range entries {
		if err := ensureArtifacts(ctx, ds, ex, e, isoDir, tftpRoot, runID, logger); err != nil {
			logger.Error("skipping ISO", zap.String("iso", e.Name), zap.Error(err))
			failures = multierror.Append(failures, fmt.Errorf("%s: %w", e.Name, err))
			continue
		}
		booted = append(booted, e)
	}

	m := menu.Build(booted, cfg.BaseURL(), cfg.DefaultISO)
	if err := writeMenus(m, tftpRoot, logger); err != nil {
		return err
	}

	if failures != nil {
		return fmt.Errorf("completed with extraction failures: %w", failures)
	}
	return nil
}

func ensureArtifacts(ctx context.Context, ds datastore.Datastore, ex extractor.Extractor, e iso.Entry, isoDir, tftpRoot string, runID uuid.UUID, logger *zap.Logger) error {
	isoPath := filepath.Join(isoDir, e.Name)
	info, err := os.Stat(isoPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", isoPath, err)
	}
	outDir := filepath.Join(tftpRoot, "kernels", e.Base)

	prev, err := ds.GetArtifact(ctx, e.Name)
	if err != nil {
		return err
	}
	if prev != nil && prev.Unchanged(info.Size(), info.ModTime()) && kernels.Present(outDir) {
		logger.Info("source unchanged, skipping extraction", zap.String("iso", e.Name))
		return nil
	}

	result, err := kernels.Extract(ctx, ex, isoPath, outDir, logger)
	if err != nil {
		return err
	}

	return ds.PutArtifact(ctx, kernels.Artifact{
		ISOName:        e.Name,
		BaseName:       e.Base,
		Flavor:         e.Flavor,
		SourceSize:     info.Size(),
		SourceModified: info.ModTime(),
		KernelSHA256:   result.KernelSHA256,
		InitrdSHA256:   result.InitrdSHA256,
		ExtractedAt:    time.Now().UTC(),
		RunID:          runID,
	})
}

func provisionBootloaders(ctx context.Context, tftpRoot string, logger *zap.Logger) error {
	provisioners := make([]provision.Provisioner, 0, 2)
	h, err := host.New(logger)
	if err != nil {
		return err
	}
	provisioners = append(provisioners, h)
	if d, err := docker.New(logger); err != nil {
		logger.Warn("docker unavailable, container fallback disabled", zap.Error(err))
	} else {
		provisioners = append(provisioners, d)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, family := range []provision.Family{provision.FamilyBIOS, provision.FamilyUEFI} {
		family := family
		eg.Go(func() error {
			return provision.Ensure(ctx, family, tftpRoot, logger, provisioners...)
		})
	}
	return eg.Wait()
}

func newExtractor(logger *zap.Logger) (extractor.Extractor, error) {
	ex, err := sevenzip.New(logger)
	if err == nil {
		return ex, nil
	}
	logger.Warn("7z not found, using built-in ISO reader", zap.Error(err))
	return goiso.New(logger)
}

func writeMenus(m *menu.Menu, tftpRoot string, logger *zap.Logger) error {
	grubRenderer, err := grub.New()
	if err != nil {
		return err
	}
	pxeRenderer, err := pxelinux.New()
	if err != nil {
		return err
	}

	documents := []struct {
		renderer menu.Renderer
		path     string
	}{
		{renderer: grubRenderer, path: grubConfigPath},
		{renderer: pxeRenderer, path: pxelinuxConfigPath},
	}
	for _, doc := range documents {
		b, err := doc.renderer.Render(m)
		if err != nil {
			return err
		}
		path := filepath.Join(tftpRoot, doc.path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, b, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("wrote menu", zap.String("path", path), zap.Int("items", len(m.Items)))
	}
	return nil
}
