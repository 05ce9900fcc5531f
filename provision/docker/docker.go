package docker

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lovi-cloud/tanuki/provision"
)

const image = "debian:stable-slim"

// Docker installs bootloader binaries via a throwaway container when the
// host has none of them. The container mounts the TFTP root and copies the
// freshly installed files into it.
type Docker struct {
	bin    string
	logger *zap.Logger
}

// New is. It fails when no docker binary is found on PATH.
func New(logger *zap.Logger) (provision.Provisioner, error) {
	bin, err := exec.LookPath("docker")
	if err != nil {
		return nil, fmt.Errorf("failed to find docker binary: %w", err)
	}
	return &Docker{
		bin:    bin,
		logger: logger,
	}, nil
}

var scripts = map[provision.Family]string{
	provision.FamilyBIOS: `apt-get update -qq && apt-get install -yqq pxelinux syslinux-common >/dev/null && ` +
		`cp /usr/lib/PXELINUX/pxelinux.0 /usr/lib/syslinux/modules/bios/ldlinux.c32 /usr/lib/syslinux/modules/bios/menu.c32 /usr/lib/syslinux/modules/bios/libutil.c32 /out/`,
	provision.FamilyUEFI: `apt-get update -qq && apt-get install -yqq grub-efi-amd64-signed >/dev/null && ` +
		`cp /usr/lib/grub/x86_64-efi-signed/grubnetx64.efi.signed /out/bootx64.efi`,
}

// Provision is
func (d *Docker) Provision(ctx context.Context, family provision.Family, tftpRoot string) error {
	script, ok := scripts[family]
	if !ok {
		return fmt.Errorf("unknown bootloader family %s", family)
	}
	abs, err := filepath.Abs(tftpRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", tftpRoot, err)
	}

	d.logger.Info("installing bootloader via container",
		zap.String("family", string(family)),
		zap.String("image", image))
	cmd := exec.CommandContext(ctx, d.bin, "run", "--rm",
		"-v", fmt.Sprintf("%s:/out", abs),
		image, "sh", "-c", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("container install failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}
