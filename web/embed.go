package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var content embed.FS

// TemplatesFS returns the templates file system.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic("templates sub-filesystem: " + err.Error())
	}
	return sub
}
