package provision

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Family selects which firmware's bootloader files to install.
type Family string

// Supported firmware families.
const (
	FamilyBIOS Family = "bios"
	FamilyUEFI Family = "uefi"
)

// Targets lists the file names each family needs inside the TFTP root.
// Menus reference these files, so provisioning must succeed before menu
// generation.
var Targets = map[Family][]string{
	FamilyBIOS: {"pxelinux.0", "ldlinux.c32", "menu.c32", "libutil.c32"},
	FamilyUEFI: {"bootx64.efi"},
}

// Provisioner is the interface for tanuki to install bootloader binaries
// into the TFTP root.
type Provisioner interface {
	Provision(ctx context.Context, family Family, tftpRoot string) error
}

// Ensure tries each provisioner in order and returns once one succeeds.
// Failures of earlier provisioners are downgraded to warnings; when all
// fail, the aggregated error is returned.
func Ensure(ctx context.Context, family Family, tftpRoot string, logger *zap.Logger, provisioners ...Provisioner) error {
	var errs error
	for _, p := range provisioners {
		err := p.Provision(ctx, family, tftpRoot)
		if err == nil {
			return nil
		}
		logger.Warn("provisioner failed, trying next",
			zap.String("family", string(family)),
			zap.Error(err))
		errs = multierror.Append(errs, err)
	}
	return fmt.Errorf("failed to provision %s bootloader: %w", family, errs)
}
