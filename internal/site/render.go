package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/suncoastbuild/sitegen/internal/model"
)

const (
	baseLayout  = "base.html"
	partialsDir = "partials"
)

//go:embed layouts
var embeddedLayouts embed.FS

// EmbeddedLayouts returns the layouts compiled into the binary.
func EmbeddedLayouts() fs.FS {
	sub, err := fs.Sub(embeddedLayouts, "layouts")
	if err != nil {
		panic(err)
	}
	return sub
}

// LayoutsFS returns dir when it exists on disk and the embedded layouts otherwise.
func LayoutsFS(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	return EmbeddedLayouts()
}

// SiteMeta is the site-wide part of the template data.
type SiteMeta struct {
	Title   string
	BaseURL string
}

// TemplateData is passed to every layout.
type TemplateData struct {
	Site     SiteMeta
	Business model.BusinessProfile
	Page     model.Page
}

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// Renderer holds one template set per page layout. Each set is base.html
// plus every partial plus the layout, so layouts can all define "content".
type Renderer struct {
	sets map[string]*template.Template
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	var partials, layouts []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		switch {
		case p == baseLayout:
		case strings.HasPrefix(p, partialsDir+"/"):
			partials = append(partials, p)
		default:
			layouts = append(layouts, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files: %w", err)
	}
	sort.Strings(partials)
	sort.Strings(layouts)

	root, err := template.New(baseLayout).Funcs(funcs).ParseFS(fsys, append([]string{baseLayout}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", baseLayout, err)
	}
	r := &Renderer{sets: make(map[string]*template.Template, len(layouts))}
	for _, l := range layouts {
		set, err := root.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base templates for %s: %w", l, err)
		}
		if _, err := set.ParseFS(fsys, l); err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", l, err)
		}
		r.sets[path.Base(l)] = set
	}
	return r, nil
}

// Has reports whether layout was parsed.
func (r *Renderer) Has(layout string) bool {
	_, ok := r.sets[layout]
	return ok
}

// Render executes the page's layout into w.
func (r *Renderer) Render(w io.Writer, data TemplateData) error {
	set, ok := r.sets[data.Page.Layout]
	if !ok {
		return fmt.Errorf("layout '%s' for page '%s' not found", data.Page.Layout, data.Page.Route)
	}
	if err := set.ExecuteTemplate(w, baseLayout, data); err != nil {
		return fmt.Errorf("failed to execute layout '%s' for page '%s': %w", data.Page.Layout, data.Page.Route, err)
	}
	return nil
}
