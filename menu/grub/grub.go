package grub

import (
	"bytes"
	"fmt"

	"github.com/lovi-cloud/tanuki/menu"
)

// GRUB renders the UEFI menu document (grub.cfg).
type GRUB struct{}

// New is
func New() (menu.Renderer, error) {
	return &GRUB{}, nil
}

// Render writes the fixed header, one menuentry block per item, the
// reboot/poweroff entries and the trailing default directive. Image entries
// come first so the default index addresses them directly.
func (g *GRUB) Render(m *menu.Menu) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return nil, fmt.Errorf("failed to render grub config: %w", err)
	}
	return buf.Bytes(), nil
}
