package grub

import (
	"strings"
	"text/template"
)

// escape protects semicolons in kernel command lines (the NoCloud seed
// parameter contains one) from being parsed as GRUB command separators.
func escape(s string) string {
	return strings.ReplaceAll(s, ";", "\\;")
}

var tmpl = template.Must(template.New("grub.cfg").Funcs(template.FuncMap{
	"escape": escape,
}).Parse(`set timeout=30

if loadfont /grub/fonts/unicode.pf2 ; then
  set gfxmode=auto
  insmod all_video
  insmod gfxterm
  terminal_output gfxterm
fi
{{ range .Items }}
menuentry "{{ .Title }}" {
	linux /{{ .Kernel }} {{ escape .Append }}
	initrd /{{ .Initrd }}
}
{{ end }}
menuentry "Reboot" {
	reboot
}

menuentry "Power off" {
	halt
}

set default={{ .DefaultIndex }}
`))
