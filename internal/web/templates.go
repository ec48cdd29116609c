// Package web embeds the HTML templates and static assets of the table pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Funcs are the helpers available to every template. deref renders nil pointers as
// empty strings.
var Funcs = template.FuncMap{
	"deref": func(v any) any {
		switch p := v.(type) {
		case *string:
			if p != nil {
				return *p
			}
		case *int64:
			if p != nil {
				return *p
			}
		case *int:
			if p != nil {
				return *p
			}
		case *float64:
			if p != nil {
				return *p
			}
		default:
			return v
		}
		return ""
	},
}

// Templates parses every embedded template, naming each by its path below
// templates/ (for example "tablespro/page.html").
func Templates() (*template.Template, error) {
	root := template.New("").Funcs(Funcs)
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".html") {
			return err
		}
		body, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, "templates/")
		if _, err := root.New(name).Parse(string(body)); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// Static serves the embedded assets.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
