package site

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/schema"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// WriteSitemap writes a sitemap of every page, sorted by route.
func WriteSitemap(w io.Writer, baseURL string, pages []model.Page) error {
	set := urlSet{XMLNS: sitemapNS}
	for _, p := range pages {
		set.URLs = append(set.URLs, sitemapURL{Loc: schema.JoinURL(baseURL, p.Route), LastMod: p.LastModified})
	}
	sort.Slice(set.URLs, func(i, j int) bool { return set.URLs[i].Loc < set.URLs[j].Loc })

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRobots writes a robots.txt allowing everything and pointing at the sitemap.
func WriteRobots(w io.Writer, baseURL string) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s\n", schema.JoinURL(baseURL, "/sitemap.xml"))
	return err
}
