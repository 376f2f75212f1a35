package site

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suncoastbuild/sitegen/internal/config"
	"github.com/suncoastbuild/sitegen/internal/linkgraph"
	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/sitedata/sitedatatest"
)

const guideSource = `---
title: Building in Flood Zones
description: Elevation, foundations and permits for coastal lots.
datePublished: "2024-02-10"
services: [custom-homes, pool-building]
faqs:
  - question: What is a V zone?
    answer: A coastal high-hazard area subject to wave action.
---
## Base flood elevation

Check the FIRM panel first.
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "site.yaml")
	require.NoError(t, os.WriteFile(data, sitedatatest.Raw, 0o644))
	contentDir := filepath.Join(root, "content", "guides")
	require.NoError(t, os.MkdirAll(contentDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "flood-zones.md"), []byte(guideSource), 0o644))
	staticDir := filepath.Join(root, "static", "assets")
	require.NoError(t, os.MkdirAll(staticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "site.css"), []byte("body{}"), 0o644))

	return config.Config{
		SiteTitle:  "Suncoast Builders",
		BaseURL:    "https://www.suncoastbuilders.example/",
		OutputDir:  filepath.Join(root, "public"),
		DataFile:   data,
		ContentDir: filepath.Join(root, "content"),
		LayoutsDir: filepath.Join(root, "layouts"),
		StaticDir:  filepath.Join(root, "static"),
		Render:     config.RenderConfig{Workers: 4},
	}
}

func pageByRoute(t *testing.T, pages []model.Page, route string) model.Page {
	t.Helper()
	for _, p := range pages {
		if p.Route == route {
			return p
		}
	}
	t.Fatalf("no page for %s", route)
	return model.Page{}
}

func jsonLDTypes(t *testing.T, p model.Page) []string {
	t.Helper()
	var types []string
	for _, s := range p.JSONLD {
		body := strings.TrimSuffix(strings.TrimPrefix(string(s), `<script type="application/ld+json">`), "</script>")
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &m))
		types = append(types, m["@type"].(string))
	}
	return types
}

func TestPlanAssemblesEveryRoute(t *testing.T) {
	cfg := testConfig(t)
	pages, graph, err := Plan(cfg, zap.NewNop())
	require.NoError(t, err)

	routes := make([]string, 0, len(pages))
	for _, p := range pages {
		routes = append(routes, p.Route)
	}
	assert.ElementsMatch(t, graph.Routes(), routes, "every route has exactly one page")
	assert.Equal(t, "/", routes[0])
	assert.Equal(t, "/contact/", routes[len(routes)-1])
}

const collidingTables = `
business:
  name: Acme Builders
  phoneRaw: "+18135550100"
  serviceArea: Tampa Bay
services:
  - {name: Roofing, slug: roofing, description: Roof systems.}
  - {name: Roofing Tampa, slug: roofing-tampa, description: A second roofing hub.}
locations:
  - {name: Tampa, slug: tampa, county: Hillsborough, priority: 1}
coverage:
  - {service: roofing, cities: [tampa]}
`

func TestBuildRejectsCollidingRoutes(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.DataFile, []byte(collidingTables), 0o644))

	_, _, err := Plan(cfg, zap.NewNop())
	require.ErrorIs(t, err, linkgraph.ErrDuplicateRoute)
	assert.Contains(t, err.Error(), "/roofing-tampa/")

	_, err = Build(context.Background(), cfg, zap.NewNop())
	require.ErrorIs(t, err, linkgraph.ErrDuplicateRoute)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "roofing-tampa", "index.html"))
}

func TestCityPage(t *testing.T) {
	pages, _, err := Plan(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	p := pageByRoute(t, pages, "/multi-family-construction-ruskin/")

	assert.Equal(t, "Multi-Family Construction in Ruskin, FL | Suncoast Builders", p.Title)
	assert.Equal(t, "page.html", p.Layout)
	assert.Equal(t, []string{"HomeAndConstructionBusiness", "BreadcrumbList", "Service", "FAQPage"}, jsonLDTypes(t, p))
	require.Len(t, p.Breadcrumbs, 4)
	assert.Equal(t, "/", p.Breadcrumbs[0].Href)
	assert.Equal(t, p.Route, p.Breadcrumbs[3].Href)
	require.Len(t, p.FAQs, 3)

	var titles []string
	for _, b := range p.LinkBlocks {
		titles = append(titles, b.Title)
		for _, l := range b.Links {
			assert.NotEqual(t, p.Route, l.Href, "block %q self-links", b.Title)
		}
	}
	assert.Equal(t, []string{"More Services in Ruskin", "Nearby Service Areas", "Next Steps"}, titles)
}

func TestPagesWithoutFAQsOmitFAQSchema(t *testing.T) {
	pages, _, err := Plan(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	p := pageByRoute(t, pages, "/disaster-recovery-tampa/")
	assert.Empty(t, p.FAQs)
	assert.NotContains(t, jsonLDTypes(t, p), "FAQPage")
}

func TestGuidePage(t *testing.T) {
	pages, _, err := Plan(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	p := pageByRoute(t, pages, "/guides/flood-zones/")
	assert.Equal(t, "guide.html", p.Layout)
	assert.Contains(t, jsonLDTypes(t, p), "Article")
	assert.Equal(t, "2024-02-10", p.LastModified)
	require.Len(t, p.LinkBlocks, 1)
	assert.Equal(t, []model.Link{{Href: "/custom-homes/", Label: "Custom Homes"}}, p.LinkBlocks[0].Links,
		"unknown services are dropped from guide links")

	hub := pageByRoute(t, pages, "/custom-homes/")
	var found bool
	for _, b := range hub.LinkBlocks {
		if b.Title == "Custom Homes Guides" {
			found = true
			assert.Equal(t, "/guides/flood-zones/", b.Links[0].Href)
		}
	}
	assert.True(t, found)
}

func TestLocationWithoutServicesRendersNoEmptyBlock(t *testing.T) {
	pages, _, err := Plan(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	p := pageByRoute(t, pages, linkgraph.LocationRoute("clearwater"))
	require.Len(t, p.LinkBlocks, 1)
	assert.Len(t, p.LinkBlocks[0].Links, 2)
}

func TestBuildWritesValidSite(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(res.Pages), res.Report.Files)
	assert.Empty(t, res.Report.Problems)

	for _, name := range []string{"index.html", "sitemap.xml", "robots.txt", "assets/site.css", "multi-family-construction-ruskin/index.html"} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}

	f, err := os.Open(filepath.Join(cfg.OutputDir, "multi-family-construction-ruskin", "index.html"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)

	assert.Equal(t, 4, doc.Find(`script[type="application/ld+json"]`).Length())
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://www.suncoastbuilders.example/multi-family-construction-ruskin/", canonical)
	assert.Equal(t, 3, doc.Find("section.faq details").Length())
	assert.Equal(t, "Ruskin", doc.Find(`nav.breadcrumb [aria-current="page"]`).Text())

	sitemap, err := os.ReadFile(filepath.Join(cfg.OutputDir, "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(sitemap), "<loc>https://www.suncoastbuilders.example/custom-homes-sarasota/</loc>")
	assert.Contains(t, string(sitemap), "<lastmod>2024-02-10</lastmod>")
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	_, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	first := snapshot(t, cfg.OutputDir)

	cfg.Render.Workers = 1
	_, err = Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	second := snapshot(t, cfg.OutputDir)

	require.Equal(t, len(first), len(second))
	for name, b := range first {
		assert.True(t, bytes.Equal(b, second[name]), "%s differs between builds", name)
	}
}

func TestBuildHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, testConfig(t), zap.NewNop())
	require.ErrorIs(t, err, context.Canceled)
}

func TestCustomLayoutsOverrideEmbedded(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.LayoutsDir, 0o755))
	embedded := EmbeddedLayouts()
	require.NoError(t, fs.WalkDir(embedded, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(embedded, p)
		if err != nil {
			return err
		}
		if p == "contact.html" {
			b = []byte(`{{define "content"}}<h1 id="custom">{{.Page.Heading}}</h1>{{end}}`)
		}
		dst := filepath.Join(cfg.LayoutsDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, b, 0o644)
	}))

	_, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, "contact", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `<h1 id="custom">Request a Bid</h1>`)
}

func snapshot(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	out := map[string][]byte{}
	require.NoError(t, filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		out[rel] = b
		return nil
	}))
	return out
}
