// Package validate checks a built site: every root-relative anchor must
// resolve to a generated route and every JSON-LD block must be valid JSON.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidSite is wrapped by the error Dir returns when problems are found.
var ErrInvalidSite = errors.New("site validation failed")

// RouteSet reports whether a route exists.
type RouteSet interface {
	Has(route string) bool
}

// Problem is one finding on one page.
type Problem struct {
	File   string
	Detail string
}

func (p Problem) String() string { return p.File + ": " + p.Detail }

// Report summarizes a validation run.
type Report struct {
	Files    int
	Links    int
	JSONLD   int
	Problems []Problem
}

// Err returns nil when the report has no problems.
func (r Report) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	lines := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		lines = append(lines, p.String())
	}
	return fmt.Errorf("%w: %d problem(s):\n  %s", ErrInvalidSite, len(r.Problems), strings.Join(lines, "\n  "))
}

// Dir validates every .html file below dir.
func Dir(dir string, routes RouteSet) (Report, error) {
	var rep Report
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}
		rel, _ := filepath.Rel(dir, p)
		rep.Files++
		checkDocument(&rep, filepath.ToSlash(rel), doc, routes)
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("error walking %s: %w", dir, err)
	}
	sort.SliceStable(rep.Problems, func(i, j int) bool { return rep.Problems[i].File < rep.Problems[j].File })
	return rep, nil
}

func checkDocument(rep *Report, file string, doc *goquery.Document, routes RouteSet) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		route, ok := internalRoute(href)
		if !ok {
			return
		}
		rep.Links++
		if path.Ext(route) != "" {
			return
		}
		if !strings.HasSuffix(route, "/") {
			rep.Problems = append(rep.Problems, Problem{File: file, Detail: fmt.Sprintf("href %q lacks a trailing slash", href)})
			return
		}
		if !routes.Has(route) {
			rep.Problems = append(rep.Problems, Problem{File: file, Detail: fmt.Sprintf("href %q has no route", href)})
		}
	})
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		rep.JSONLD++
		if !json.Valid([]byte(s.Text())) {
			rep.Problems = append(rep.Problems, Problem{File: file, Detail: fmt.Sprintf("JSON-LD block %d is not valid JSON", i+1)})
		}
	})
}

// internalRoute strips query and fragment from a root-relative href.
func internalRoute(href string) (string, bool) {
	if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return "", false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return href, true
}
