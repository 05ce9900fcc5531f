package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lovi-cloud/tanuki/provision"
)

// Host copies bootloader binaries already installed on this machine into the
// TFTP root. It is preferred over the container fallback because it needs no
// network access.
type Host struct {
	logger *zap.Logger
}

// New is
func New(logger *zap.Logger) (provision.Provisioner, error) {
	return &Host{
		logger: logger,
	}, nil
}

// Well-known install locations of the syslinux and GRUB netboot files on
// Debian/Ubuntu and Fedora family hosts.
var sources = map[provision.Family]map[string][]string{
	provision.FamilyBIOS: {
		"pxelinux.0": {
			"/usr/lib/PXELINUX/pxelinux.0",
			"/usr/share/syslinux/pxelinux.0",
		},
		"ldlinux.c32": {
			"/usr/lib/syslinux/modules/bios/ldlinux.c32",
			"/usr/share/syslinux/ldlinux.c32",
		},
		"menu.c32": {
			"/usr/lib/syslinux/modules/bios/menu.c32",
			"/usr/share/syslinux/menu.c32",
		},
		"libutil.c32": {
			"/usr/lib/syslinux/modules/bios/libutil.c32",
			"/usr/share/syslinux/libutil.c32",
		},
	},
	provision.FamilyUEFI: {
		"bootx64.efi": {
			"/usr/lib/grub/x86_64-efi-signed/grubnetx64.efi.signed",
			"/usr/lib/grub/x86_64-efi/monolithic/grubnetx64.efi",
		},
	},
}

// Provision is
func (h *Host) Provision(ctx context.Context, family provision.Family, tftpRoot string) error {
	files, ok := sources[family]
	if !ok {
		return fmt.Errorf("unknown bootloader family %s", family)
	}
	for _, target := range provision.Targets[family] {
		src, err := firstExisting(files[target])
		if err != nil {
			return fmt.Errorf("failed to find %s on host: %w", target, err)
		}
		if err := copyFile(src, filepath.Join(tftpRoot, target)); err != nil {
			return err
		}
		h.logger.Info("installed bootloader file",
			zap.String("family", string(family)),
			zap.String("src", src),
			zap.String("target", target))
	}
	return nil
}

func firstExisting(candidates []string) (string, error) {
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("none of %v exists: %w", candidates, os.ErrNotExist)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}
