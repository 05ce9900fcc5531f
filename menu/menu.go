package menu

import (
	"fmt"
	"path"

	"github.com/lovi-cloud/tanuki/iso"
	"github.com/lovi-cloud/tanuki/kernels"
	"github.com/lovi-cloud/tanuki/types"
)

// Renderer is the interface for tanuki to render a Menu into one loader's
// configuration syntax.
type Renderer interface {
	Render(m *Menu) ([]byte, error)
}

// Item is one selectable menu entry.
type Item struct {
	// Label is the PXELINUX label token; unique per menu.
	Label string
	// Title is the human-readable menu text.
	Title string
	// Kernel and Initrd are TFTP-root-relative paths.
	Kernel string
	Initrd string
	// Append is the kernel command line.
	Append string
}

// Menu is the ordered item list rendered for both loaders. DefaultIndex is
// the zero-based index of the default item. DefaultLabel is set only when a
// discovered ISO matched the configured default name; when empty the loaders
// fall back to the first entry.
type Menu struct {
	Items        []Item
	DefaultIndex int
	DefaultLabel string
}

// Build expands classified entries into menu items. Autoinstall-capable
// server images produce two items (autoinstall first, then manual); all
// other flavors produce one. The default is resolved by exact file-name
// match against defaultISO, checked on the entry's first item.
func Build(entries []iso.Entry, baseURL, defaultISO string) *Menu {
	m := &Menu{}
	for _, e := range entries {
		first := len(m.Items)
		m.Items = append(m.Items, itemsFor(e, baseURL)...)
		if defaultISO != "" && e.Name == defaultISO {
			m.DefaultIndex = first
			m.DefaultLabel = m.Items[first].Label
		}
	}
	return m
}

func itemsFor(e iso.Entry, baseURL string) []Item {
	kernel := path.Join("kernels", e.Base, kernels.KernelName)
	initrd := path.Join("kernels", e.Base, kernels.InitrdName)
	isoURL := fmt.Sprintf("%s/images/%s", baseURL, e.Name)

	switch e.Flavor {
	case types.FlavorUbuntuServer:
		return []Item{
			{
				Label:  e.Base,
				Title:  fmt.Sprintf("%s (autoinstall)", e.Base),
				Kernel: kernel,
				Initrd: initrd,
				Append: fmt.Sprintf("ip=dhcp url=%s autoinstall ds=nocloud-net;s=%s/nocloud/", isoURL, baseURL),
			},
			{
				Label:  e.Base + "-manual",
				Title:  fmt.Sprintf("%s (manual install)", e.Base),
				Kernel: kernel,
				Initrd: initrd,
				Append: fmt.Sprintf("ip=dhcp url=%s", isoURL),
			},
		}
	case types.FlavorUbuntuDesktop:
		return []Item{{
			Label:  e.Base,
			Title:  fmt.Sprintf("%s (live)", e.Base),
			Kernel: kernel,
			Initrd: initrd,
			Append: fmt.Sprintf("boot=casper ip=dhcp url=%s", isoURL),
		}}
	case types.FlavorKaliInstaller:
		return []Item{{
			Label:  e.Base,
			Title:  fmt.Sprintf("%s (installer)", e.Base),
			Kernel: kernel,
			Initrd: initrd,
			Append: "auto=true priority=critical interface=auto",
		}}
	default:
		return []Item{{
			Label:  e.Base,
			Title:  e.Base,
			Kernel: kernel,
			Initrd: initrd,
			Append: "ip=dhcp",
		}}
	}
}
