// Package sitedata loads the static lookup tables that every page reads:
// the business profile, the service and location lists, the service ×
// location coverage matrix and the FAQ database.
package sitedata

import (
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v2"

	"github.com/suncoastbuild/sitegen/internal/model"
)

// ErrInvalidTables is wrapped by every validation failure.
var ErrInvalidTables = errors.New("invalid site tables")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Coverage lists the cities a service has dedicated pages for, in display order.
type Coverage struct {
	Service string   `yaml:"service"`
	Cities  []string `yaml:"cities"`
}

// FAQSet is a group of FAQs for a service, optionally narrowed to one city.
// "{city}" in question or answer text is replaced with the page's city name.
type FAQSet struct {
	Service string          `yaml:"service"`
	City    string          `yaml:"city"`
	Items   []model.FAQItem `yaml:"items"`
}

// Tables is the single source of truth for which services and cities exist.
type Tables struct {
	Business  model.BusinessProfile `yaml:"business"`
	Services  []model.ServiceEntry  `yaml:"services"`
	Locations []model.LocationEntry `yaml:"locations"`
	Coverage  []Coverage            `yaml:"coverage"`
	FAQs      []FAQSet              `yaml:"faqs"`

	serviceIdx  map[string]int
	locationIdx map[string]int
	coverageIdx map[string][]string
}

// Load reads and validates the tables file at filename.
func Load(filename string) (*Tables, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading tables file %s: %w", filename, err)
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("error loading tables file %s: %w", filename, err)
	}
	return t, nil
}

// Parse decodes YAML tables and validates them.
func Parse(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.UnmarshalStrict(raw, &t); err != nil {
		return nil, fmt.Errorf("error unmarshalling tables: %w", err)
	}
	return New(t)
}

// New validates and indexes tables assembled in code.
func New(t Tables) (*Tables, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.index()
	return &t, nil
}

func (t *Tables) index() {
	t.serviceIdx = make(map[string]int, len(t.Services))
	for i, s := range t.Services {
		t.serviceIdx[s.Slug] = i
	}
	t.locationIdx = make(map[string]int, len(t.Locations))
	for i, l := range t.Locations {
		t.locationIdx[l.Slug] = i
	}
	t.coverageIdx = make(map[string][]string, len(t.Coverage))
	for _, c := range t.Coverage {
		t.coverageIdx[c.Service] = append(t.coverageIdx[c.Service], c.Cities...)
	}
}

// Validate checks slugs, references and FAQ text. All problems are reported together.
func (t *Tables) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	b := t.Business
	if strings.TrimSpace(b.Name) == "" {
		add("business.name is required")
	}
	if strings.TrimSpace(b.PhoneRaw) == "" {
		add("business.phoneRaw is required")
	}
	if strings.TrimSpace(b.ServiceArea) == "" {
		add("business.serviceArea is required")
	}

	services := map[string]bool{}
	for i, s := range t.Services {
		switch {
		case !ValidSlug(s.Slug):
			add("services[%d]: invalid slug %q", i, s.Slug)
		case services[s.Slug]:
			add("services[%d]: duplicate slug %q", i, s.Slug)
		}
		services[s.Slug] = true
		if strings.TrimSpace(s.Name) == "" {
			add("services[%d]: name is required", i)
		}
		if s.MinPrice != "" && !isWholeDollars(s.MinPrice) {
			add("services[%d]: minPrice %q is not a whole-dollar amount", i, s.MinPrice)
		}
	}

	locations := map[string]bool{}
	for i, l := range t.Locations {
		switch {
		case !ValidSlug(l.Slug):
			add("locations[%d]: invalid slug %q", i, l.Slug)
		case locations[l.Slug]:
			add("locations[%d]: duplicate slug %q", i, l.Slug)
		}
		locations[l.Slug] = true
		if strings.TrimSpace(l.Name) == "" {
			add("locations[%d]: name is required", i)
		}
	}

	for i, c := range t.Coverage {
		if !services[c.Service] {
			add("coverage[%d]: unknown service %q", i, c.Service)
		}
		seen := map[string]bool{}
		for _, city := range c.Cities {
			if !locations[city] {
				add("coverage[%d]: unknown location %q", i, city)
			}
			if seen[city] {
				add("coverage[%d]: duplicate location %q", i, city)
			}
			seen[city] = true
		}
	}

	for i, set := range t.FAQs {
		if set.Service != "" && !services[set.Service] {
			add("faqs[%d]: unknown service %q", i, set.Service)
		}
		if set.City != "" && !locations[set.City] {
			add("faqs[%d]: unknown location %q", i, set.City)
		}
		for j, item := range set.Items {
			if strings.TrimSpace(item.Question) == "" || strings.TrimSpace(item.Answer) == "" {
				add("faqs[%d].items[%d]: question and answer are required", i, j)
				continue
			}
			if !IsPlainText(item.Question) || !IsPlainText(item.Answer) {
				add("faqs[%d].items[%d]: markup is not allowed in FAQ text", i, j)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %d problem(s): %s", ErrInvalidTables, len(problems), strings.Join(problems, "; "))
	}
	return nil
}

// ValidSlug reports whether s is usable as a URL path segment:
// lowercase letters and digits in dash-separated runs.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

var strict = bluemonday.StrictPolicy()

// IsPlainText reports whether s survives tag stripping unchanged.
func IsPlainText(s string) bool {
	return html.UnescapeString(strict.Sanitize(s)) == s
}

func isWholeDollars(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Service looks a service up by slug.
func (t *Tables) Service(slug string) (model.ServiceEntry, bool) {
	i, ok := t.serviceIdx[slug]
	if !ok {
		return model.ServiceEntry{}, false
	}
	return t.Services[i], true
}

// Location looks a location up by slug, falling back to a case-insensitive name match.
func (t *Tables) Location(ref string) (model.LocationEntry, bool) {
	if i, ok := t.locationIdx[ref]; ok {
		return t.Locations[i], true
	}
	for _, l := range t.Locations {
		if strings.EqualFold(l.Name, strings.TrimSpace(ref)) {
			return l, true
		}
	}
	return model.LocationEntry{}, false
}

// CitiesFor returns the locations covered by service, in coverage order.
func (t *Tables) CitiesFor(service string) []model.LocationEntry {
	slugs := t.coverageIdx[service]
	out := make([]model.LocationEntry, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, t.Locations[t.locationIdx[s]])
	}
	return out
}

// ServicesIn returns the services covering city, in service declaration order.
func (t *Tables) ServicesIn(city string) []model.ServiceEntry {
	var out []model.ServiceEntry
	for _, s := range t.Services {
		if t.Covers(s.Slug, city) {
			out = append(out, s)
		}
	}
	return out
}

// Covers reports whether service has a dedicated page for city.
func (t *Tables) Covers(service, city string) bool {
	for _, c := range t.coverageIdx[service] {
		if c == city {
			return true
		}
	}
	return false
}

// FAQsFor collects the FAQs for a service page. City-specific sets follow
// the service-wide ones; an empty city selects only service-wide sets.
func (t *Tables) FAQsFor(service string, city model.LocationEntry) []model.FAQItem {
	name := city.Name
	if name == "" {
		name = t.Business.ServiceArea
	}
	var out []model.FAQItem
	for _, set := range t.FAQs {
		if set.Service != service || set.City != "" {
			continue
		}
		out = appendExpanded(out, set.Items, name)
	}
	if city.Slug == "" {
		return out
	}
	for _, set := range t.FAQs {
		if set.Service != service || set.City != city.Slug {
			continue
		}
		out = appendExpanded(out, set.Items, name)
	}
	return out
}

// GeneralFAQs returns the FAQ sets bound to no service.
func (t *Tables) GeneralFAQs() []model.FAQItem {
	var out []model.FAQItem
	for _, set := range t.FAQs {
		if set.Service == "" && set.City == "" {
			out = appendExpanded(out, set.Items, t.Business.ServiceArea)
		}
	}
	return out
}

func appendExpanded(dst, items []model.FAQItem, city string) []model.FAQItem {
	for _, it := range items {
		if city != "" {
			it.Question = strings.ReplaceAll(it.Question, "{city}", city)
			it.Answer = strings.ReplaceAll(it.Answer, "{city}", city)
		}
		dst = append(dst, it)
	}
	return dst
}
