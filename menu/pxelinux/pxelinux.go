package pxelinux

import (
	"bytes"
	"fmt"

	"github.com/lovi-cloud/tanuki/menu"
)

// PXELINUX renders the BIOS menu document (pxelinux.cfg/default).
type PXELINUX struct{}

// New is
func New() (menu.Renderer, error) {
	return &PXELINUX{}, nil
}

// Render writes the fixed header and one LABEL block per item. PXELINUX has
// no index directive, so the default is marked with MENU DEFAULT inside the
// matching label block; with no match the first label wins.
func (p *PXELINUX) Render(m *menu.Menu) ([]byte, error) {
	view := document{Items: make([]item, 0, len(m.Items))}
	for i, it := range m.Items {
		view.Items = append(view.Items, item{
			Item:    it,
			Default: m.DefaultLabel != "" && i == m.DefaultIndex,
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render pxelinux config: %w", err)
	}
	return buf.Bytes(), nil
}

type document struct {
	Items []item
}

type item struct {
	menu.Item
	Default bool
}
