package pxelinux

import "text/template"

var tmpl = template.Must(template.New("pxelinux.cfg").Parse(`DEFAULT menu.c32
PROMPT 0
TIMEOUT 300
MENU TITLE Network Boot
{{ range .Items }}
LABEL {{ .Label }}
  MENU LABEL {{ .Title }}{{ if .Default }}
  MENU DEFAULT{{ end }}
  KERNEL {{ .Kernel }}
  INITRD {{ .Initrd }}
  APPEND {{ .Append }}
{{ end }}`))
