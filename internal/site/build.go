package site

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suncoastbuild/sitegen/internal/config"
	"github.com/suncoastbuild/sitegen/internal/content"
	"github.com/suncoastbuild/sitegen/internal/linkgraph"
	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/sitedata"
	"github.com/suncoastbuild/sitegen/internal/validate"
)

// Result describes a finished build.
type Result struct {
	Pages    []model.Page
	Graph    *linkgraph.Graph
	Report   validate.Report
	Duration time.Duration
}

// Plan loads the inputs and assembles every page without writing anything.
func Plan(cfg config.Config, logger *zap.Logger) ([]model.Page, *linkgraph.Graph, error) {
	tables, err := sitedata.Load(cfg.DataFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("loaded site tables",
		zap.String("file", cfg.DataFile),
		zap.Int("services", len(tables.Services)),
		zap.Int("locations", len(tables.Locations)))

	guides, err := content.NewLoader(logger).LoadDir(cfg.ContentDir)
	if err != nil {
		return nil, nil, err
	}
	slugs := make([]string, 0, len(guides))
	for _, g := range guides {
		slugs = append(slugs, g.Article.Slug)
	}

	graph, err := linkgraph.New(tables, linkgraph.Options{Cap: cfg.LinkCap(), Guides: slugs})
	if err != nil {
		return nil, nil, err
	}
	pages, err := NewAssembler(graph, guides, cfg.BaseURL, cfg.SiteTitle).Pages()
	if err != nil {
		return nil, nil, err
	}
	if err := checkLinks(graph, pages); err != nil {
		return nil, nil, err
	}
	return pages, graph, nil
}

// checkLinks asserts every href a page carries is a route the build will emit.
func checkLinks(graph *linkgraph.Graph, pages []model.Page) error {
	var all []model.Link
	for _, p := range pages {
		if !graph.Has(p.Route) {
			return fmt.Errorf("page %s is not in the route table", p.Route)
		}
		for _, b := range p.LinkBlocks {
			all = append(all, b.Links...)
		}
		for _, c := range p.Breadcrumbs {
			all = append(all, model.Link{Href: c.Href, Label: c.Name})
		}
	}
	return graph.Validate(all)
}

// Build renders the site into cfg.OutputDir and validates the output.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Result, error) {
	start := time.Now()
	logger.Info("starting build",
		zap.String("outputDir", cfg.OutputDir),
		zap.String("baseURL", cfg.BaseURL),
		zap.String("siteTitle", cfg.SiteTitle))

	pages, graph, err := Plan(cfg, logger)
	if err != nil {
		return nil, err
	}
	renderer, err := NewRenderer(LayoutsFS(cfg.LayoutsDir))
	if err != nil {
		return nil, err
	}

	outputDir := cfg.OutputDir
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if _, err := os.Stat(cfg.StaticDir); err == nil {
		if err := copyDirContents(cfg.StaticDir, outputDir); err != nil {
			return nil, fmt.Errorf("failed to copy static assets: %w", err)
		}
		logger.Debug("copied static assets", zap.String("from", cfg.StaticDir))
	} else {
		logger.Info("static assets directory not found, skipping copy", zap.String("dir", cfg.StaticDir))
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = graph.Tables().Business.URL
	}
	meta := SiteMeta{Title: cfg.SiteTitle, BaseURL: strings.TrimRight(baseURL, "/")}
	business := graph.Tables().Business

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers())
	for _, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writePage(renderer, outputDir, TemplateData{Site: meta, Business: business, Page: p})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := writeFile(filepath.Join(outputDir, "sitemap.xml"), func(w *bufio.Writer) error {
		return WriteSitemap(w, baseURL, pages)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(outputDir, "robots.txt"), func(w *bufio.Writer) error {
		return WriteRobots(w, baseURL)
	}); err != nil {
		return nil, err
	}

	rep, err := validate.Dir(outputDir, graph)
	if err != nil {
		return nil, err
	}
	if err := rep.Err(); err != nil {
		return nil, err
	}

	res := &Result{Pages: pages, Graph: graph, Report: rep, Duration: time.Since(start)}
	logger.Info("build completed",
		zap.Int("pages", len(pages)),
		zap.Int("links", rep.Links),
		zap.Int("jsonld", rep.JSONLD),
		zap.Duration("took", res.Duration))
	return res, nil
}

func writePage(r *Renderer, outputDir string, data TemplateData) error {
	outputPath := filepath.Join(outputDir, filepath.FromSlash(data.Page.Route), "index.html")
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for page '%s': %w", data.Page.Route, err)
	}
	return writeFile(outputPath, func(w *bufio.Writer) error {
		return r.Render(w, data)
	})
}

func writeFile(name string, fill func(w *bufio.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", name, err)
	}
	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write '%s': %w", name, err)
	}
	return f.Close()
}
