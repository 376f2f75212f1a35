// Package content converts Markdown guide pages into model.Guide values.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/sitedata"
)

type guideFrontMatter struct {
	Title         string          `yaml:"title"`
	Description   string          `yaml:"description"`
	Slug          string          `yaml:"slug"`
	DatePublished string          `yaml:"datePublished"`
	DateModified  string          `yaml:"dateModified"`
	Services      []string        `yaml:"services"`
	FAQs          []model.FAQItem `yaml:"faqs"`
}

// Loader converts guides.
type Loader struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
		policy: bluemonday.UGCPolicy(),
		logger: logger,
	}
}

// LoadDir reads every .md file below dir. A missing dir yields no guides.
// Guides are ordered newest first, then by slug.
func (l *Loader) LoadDir(dir string) ([]model.Guide, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		l.logger.Info("content directory not found, skipping guides", zap.String("dir", dir))
		return nil, nil
	}
	var guides []model.Guide
	seen := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file '%s': %w", path, err)
		}
		g, err := l.Parse(path, raw)
		if err != nil {
			return err
		}
		if prev, dup := seen[g.Article.Slug]; dup {
			return fmt.Errorf("guide slug %q used by both '%s' and '%s'", g.Article.Slug, prev, path)
		}
		seen[g.Article.Slug] = path
		l.logger.Debug("loaded guide", zap.String("path", path), zap.String("slug", g.Article.Slug))
		guides = append(guides, g)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during content collection walk: %w", err)
	}
	sort.SliceStable(guides, func(i, j int) bool {
		a, b := guides[i].Article, guides[j].Article
		if a.DatePublished != b.DatePublished {
			return a.DatePublished > b.DatePublished
		}
		return a.Slug < b.Slug
	})
	return guides, nil
}

// Parse converts one guide source. path is used for the default slug and title.
func (l *Loader) Parse(path string, raw []byte) (model.Guide, error) {
	var fm guideFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return model.Guide{}, fmt.Errorf("failed to parse frontmatter for '%s': %w", path, err)
	}

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return model.Guide{}, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.NewReplacer("-", " ", "_", " ").Replace(base)
	slug := strings.Trim(strings.TrimSpace(fm.Slug), "/")
	if slug == "" {
		slug = strings.Join(strings.Fields(strings.ToLower(words)), "-")
	}
	if !sitedata.ValidSlug(slug) {
		return model.Guide{}, fmt.Errorf("guide '%s': invalid slug %q", path, slug)
	}
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = cases.Title(language.English).String(words)
	}
	modified := fm.DateModified
	if modified == "" {
		modified = fm.DatePublished
	}
	for i, f := range fm.FAQs {
		if !sitedata.IsPlainText(f.Question) || !sitedata.IsPlainText(f.Answer) {
			return model.Guide{}, fmt.Errorf("guide '%s' faq %d: markup is not allowed in FAQ text", path, i)
		}
	}

	return model.Guide{
		Article: model.ArticleMetadata{
			Headline:      title,
			Description:   strings.TrimSpace(fm.Description),
			DatePublished: fm.DatePublished,
			DateModified:  modified,
			Slug:          slug,
		},
		Title:       title,
		SourcePath:  path,
		ContentHTML: template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
		Services:    fm.Services,
		FAQs:        fm.FAQs,
	}, nil
}
