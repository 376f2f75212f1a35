// Package linkgraph computes the internal links between landing pages.
//
// Every service has a hub page at /<service>/ and one page per covered city
// at /<service>-<city>/. The coverage matrix in sitedata is the only input,
// so a city dropped from the tables disappears from every link block.
package linkgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/suncoastbuild/sitegen/internal/config"
	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/sitedata"
)

// Fixed routes that exist independently of the tables.
const (
	HomeRoute      = "/"
	ServicesRoute  = "/services/"
	LocationsRoute = "/locations/"
	GuidesRoute    = "/guides/"
	ContactRoute   = "/contact/"
)

// ErrDuplicateRoute is returned by New when two pages would share one URL.
var ErrDuplicateRoute = errors.New("duplicate route")

// ServiceRoute is the hub page for a service.
func ServiceRoute(service string) string { return "/" + service + "/" }

// CityRoute is the page for a service in one city.
func CityRoute(service, city string) string { return "/" + service + "-" + city + "/" }

// LocationRoute is the hub page for a city.
func LocationRoute(city string) string { return "/locations/" + city + "/" }

// GuideRoute is the page for a guide.
func GuideRoute(slug string) string { return "/guides/" + slug + "/" }

type Options struct {
	// Cap bounds RelatedServices and NearbyLocations. Zero means config.DefaultLinkCap.
	Cap int
	// Guides are guide slugs with pages of their own.
	Guides []string
}

// Graph is immutable after New and safe for concurrent reads.
type Graph struct {
	tables *sitedata.Tables
	cap    int
	routes map[string]struct{}
}

// New builds the route set. Every route must belong to exactly one page:
// a service slug that spells a covered service-city pair or a fixed page
// fails with ErrDuplicateRoute.
func New(t *sitedata.Tables, opts Options) (*Graph, error) {
	g := &Graph{tables: t, cap: opts.Cap, routes: map[string]struct{}{}}
	if g.cap <= 0 {
		g.cap = config.DefaultLinkCap
	}

	owners := map[string]string{}
	var dups []string
	add := func(route, owner string) {
		if prev, ok := owners[route]; ok {
			dups = append(dups, fmt.Sprintf("%s (%s and %s)", route, prev, owner))
			return
		}
		owners[route] = owner
		g.routes[route] = struct{}{}
	}

	for _, r := range []string{HomeRoute, ServicesRoute, LocationsRoute, GuidesRoute, ContactRoute} {
		add(r, "fixed page")
	}
	for _, s := range t.Services {
		add(ServiceRoute(s.Slug), "service "+s.Slug)
	}
	for _, s := range t.Services {
		for _, c := range t.CitiesFor(s.Slug) {
			add(CityRoute(s.Slug, c.Slug), "service "+s.Slug+" in "+c.Slug)
		}
	}
	for _, l := range t.Locations {
		add(LocationRoute(l.Slug), "location "+l.Slug)
	}
	for _, slug := range opts.Guides {
		add(GuideRoute(slug), "guide "+slug)
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, strings.Join(dups, "; "))
	}
	return g, nil
}

// Cap returns the effective list bound.
func (g *Graph) Cap() int { return g.cap }

// Tables returns the tables the graph was built from.
func (g *Graph) Tables() *sitedata.Tables { return g.tables }

// Has reports whether href is a generated route.
func (g *Graph) Has(href string) bool {
	_, ok := g.routes[href]
	return ok
}

// Routes returns every route in sorted order.
func (g *Graph) Routes() []string {
	out := make([]string, 0, len(g.routes))
	for r := range g.routes {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// InternalLinks wraps an explicit link list. No filtering is applied.
func InternalLinks(title string, links []model.Link) model.LinkBlock {
	return model.LinkBlock{Title: title, Links: links}
}

// RelatedServices lists the other services offered in city, in service
// declaration order. An empty city lists service hubs sitewide. An unknown
// city yields nil.
func (g *Graph) RelatedServices(city, currentService string) []model.Link {
	var links []model.Link
	if strings.TrimSpace(city) == "" {
		for _, s := range g.tables.Services {
			if s.Slug == currentService {
				continue
			}
			links = append(links, model.Link{Href: ServiceRoute(s.Slug), Label: s.Name})
		}
		return g.Bound(links)
	}
	loc, ok := g.tables.Location(city)
	if !ok {
		return nil
	}
	for _, s := range g.tables.ServicesIn(loc.Slug) {
		if s.Slug == currentService {
			continue
		}
		links = append(links, model.Link{Href: CityRoute(s.Slug, loc.Slug), Label: s.Name})
	}
	return g.Bound(links)
}

// NearbyLocations lists the other cities where service is offered, ordered
// by location priority with coverage order breaking ties.
func (g *Graph) NearbyLocations(currentCity, service, serviceName string) []model.Link {
	current := currentCity
	if loc, ok := g.tables.Location(currentCity); ok {
		current = loc.Slug
	}
	var cities []model.LocationEntry
	for _, c := range g.tables.CitiesFor(service) {
		if c.Slug != current {
			cities = append(cities, c)
		}
	}
	sort.SliceStable(cities, func(i, j int) bool { return cities[i].Priority < cities[j].Priority })
	return g.Bound(g.cityLinks(service, serviceName, cities))
}

// ServiceAreaLinks lists every city where service is offered, in coverage order.
func (g *Graph) ServiceAreaLinks(service, serviceName string) []model.Link {
	return g.cityLinks(service, serviceName, g.tables.CitiesFor(service))
}

func (g *Graph) cityLinks(service, serviceName string, cities []model.LocationEntry) []model.Link {
	if len(cities) == 0 {
		return nil
	}
	if strings.TrimSpace(serviceName) == "" {
		if s, ok := g.tables.Service(service); ok {
			serviceName = s.Name
		}
	}
	links := make([]model.Link, 0, len(cities))
	for _, c := range cities {
		links = append(links, model.Link{
			Href:  CityRoute(service, c.Slug),
			Label: fmt.Sprintf("%s in %s", serviceName, c.Name),
		})
	}
	return links
}

// Bound truncates links to the graph's cap. A truncated result has no spare capacity.
func (g *Graph) Bound(links []model.Link) []model.Link {
	if len(links) > g.cap {
		return links[:g.cap:g.cap]
	}
	return links
}

// Validate returns an error naming every href that is not a generated route.
func (g *Graph) Validate(links []model.Link) error {
	var dead []string
	for _, l := range links {
		if !g.Has(l.Href) {
			dead = append(dead, l.Href)
		}
	}
	if len(dead) > 0 {
		return fmt.Errorf("%d link(s) to missing routes: %s", len(dead), strings.Join(dead, ", "))
	}
	return nil
}
