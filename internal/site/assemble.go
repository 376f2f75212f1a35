// Package site turns the static tables and guides into rendered pages.
package site

import (
	"fmt"
	"strings"

	"github.com/suncoastbuild/sitegen/internal/linkgraph"
	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/schema"
	"github.com/suncoastbuild/sitegen/internal/sitedata"
)

// Page kinds. Each maps to a layout of the same name unless noted in layoutFor.
const (
	KindHome      = "home"
	KindServices  = "services"
	KindService   = "service"
	KindCity      = "city"
	KindLocations = "locations"
	KindLocation  = "location"
	KindGuides    = "guides"
	KindGuide     = "guide"
	KindContact   = "contact"
)

func layoutFor(kind string) string {
	switch kind {
	case KindHome, KindGuide, KindContact:
		return kind + ".html"
	default:
		return "page.html"
	}
}

// Assembler builds one model.Page per route. It only reads its inputs.
type Assembler struct {
	tables    *sitedata.Tables
	graph     *linkgraph.Graph
	guides    []model.Guide
	baseURL   string
	siteTitle string
}

func NewAssembler(graph *linkgraph.Graph, guides []model.Guide, baseURL, siteTitle string) *Assembler {
	if baseURL == "" {
		baseURL = graph.Tables().Business.URL
	}
	if siteTitle == "" {
		siteTitle = graph.Tables().Business.Name
	}
	return &Assembler{
		tables:    graph.Tables(),
		graph:     graph,
		guides:    guides,
		baseURL:   baseURL,
		siteTitle: siteTitle,
	}
}

// Pages returns every page in a stable order.
func (a *Assembler) Pages() ([]model.Page, error) {
	var pages []model.Page
	add := func(p model.Page, err error) error {
		if err != nil {
			return err
		}
		pages = append(pages, p)
		return nil
	}

	if err := add(a.home()); err != nil {
		return nil, err
	}
	if err := add(a.services()); err != nil {
		return nil, err
	}
	for _, svc := range a.tables.Services {
		if err := add(a.service(svc)); err != nil {
			return nil, err
		}
		for _, city := range a.tables.CitiesFor(svc.Slug) {
			if err := add(a.city(svc, city)); err != nil {
				return nil, err
			}
		}
	}
	if err := add(a.locations()); err != nil {
		return nil, err
	}
	for _, loc := range a.tables.Locations {
		if err := add(a.location(loc)); err != nil {
			return nil, err
		}
	}
	if err := add(a.guideIndex()); err != nil {
		return nil, err
	}
	for _, g := range a.guides {
		if err := add(a.guide(g)); err != nil {
			return nil, err
		}
	}
	if err := add(a.contact()); err != nil {
		return nil, err
	}
	return pages, nil
}

var (
	homeCrumb      = model.BreadcrumbItem{Name: "Home", Href: linkgraph.HomeRoute}
	servicesCrumb  = model.BreadcrumbItem{Name: "Services", Href: linkgraph.ServicesRoute}
	locationsCrumb = model.BreadcrumbItem{Name: "Locations", Href: linkgraph.LocationsRoute}
	guidesCrumb    = model.BreadcrumbItem{Name: "Guides", Href: linkgraph.GuidesRoute}
)

// finish fills the fields every page shares and renders its JSON-LD blocks.
// The LocalBusiness and BreadcrumbList nodes are always first.
func (a *Assembler) finish(p model.Page, lb schema.LocalBusinessOptions, extra ...schema.Object) (model.Page, error) {
	if p.Layout == "" {
		p.Layout = layoutFor(p.Kind)
	}
	if p.Heading == "" {
		p.Heading = p.Title
	}
	p.Title = p.Title + " | " + a.siteTitle

	objs := []schema.Object{schema.LocalBusiness(a.tables.Business, lb)}
	if len(p.Breadcrumbs) > 0 {
		bc, err := schema.Breadcrumb(a.baseURL, p.Breadcrumbs)
		if err != nil {
			return model.Page{}, fmt.Errorf("page %s: %w", p.Route, err)
		}
		objs = append(objs, bc)
	}
	objs = append(objs, extra...)
	objs = append(objs, schema.FAQ(p.FAQs))

	for _, o := range objs {
		s, err := schema.Script(o)
		if err != nil {
			return model.Page{}, fmt.Errorf("page %s: %w", p.Route, err)
		}
		if s != "" {
			p.JSONLD = append(p.JSONLD, s)
		}
	}

	var blocks []model.LinkBlock
	for _, b := range p.LinkBlocks {
		if len(b.Links) > 0 {
			blocks = append(blocks, b)
		}
	}
	p.LinkBlocks = blocks
	return p, nil
}

func (a *Assembler) serviceHubLinks() []model.Link {
	links := make([]model.Link, 0, len(a.tables.Services))
	for _, s := range a.tables.Services {
		links = append(links, model.Link{Href: linkgraph.ServiceRoute(s.Slug), Label: s.Name})
	}
	return links
}

func (a *Assembler) locationHubLinks() []model.Link {
	links := make([]model.Link, 0, len(a.tables.Locations))
	for _, l := range a.tables.Locations {
		links = append(links, model.Link{Href: linkgraph.LocationRoute(l.Slug), Label: l.Name})
	}
	return links
}

func (a *Assembler) guideLinks(filter func(model.Guide) bool) []model.Link {
	var links []model.Link
	for _, g := range a.guides {
		if filter == nil || filter(g) {
			links = append(links, model.Link{Href: linkgraph.GuideRoute(g.Article.Slug), Label: g.Title})
		}
	}
	return links
}

func guidesFor(service string) func(model.Guide) bool {
	return func(g model.Guide) bool {
		for _, s := range g.Services {
			if s == service {
				return true
			}
		}
		return false
	}
}

func (a *Assembler) home() (model.Page, error) {
	b := a.tables.Business
	p := model.Page{
		Route: linkgraph.HomeRoute,
		Kind:  KindHome,
		Title: fmt.Sprintf("%s Contractor", b.ServiceArea),
		Heading: fmt.Sprintf("%s: building across %s for %d years",
			b.Name, b.ServiceArea, b.YearsInBusiness),
		Description: fmt.Sprintf("%s is a licensed Florida general contractor serving %s. %d+ projects completed.",
			b.Name, b.ServiceArea, b.ProjectCount),
		FAQs: a.tables.GeneralFAQs(),
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("Our Services", a.serviceHubLinks()),
			linkgraph.InternalLinks("Areas We Serve", a.locationHubLinks()),
			linkgraph.InternalLinks("Latest Guides", a.graph.Bound(a.guideLinks(nil))),
		},
	}
	return a.finish(p, schema.LocalBusinessOptions{},
		schema.Organization(b),
		schema.WebSite(a.siteTitle, schema.JoinURL(a.baseURL, "/")))
}

func (a *Assembler) services() (model.Page, error) {
	p := model.Page{
		Route:       linkgraph.ServicesRoute,
		Kind:        KindServices,
		Title:       "Construction Services",
		Description: fmt.Sprintf("Construction services offered by %s across %s.", a.tables.Business.Name, a.tables.Business.ServiceArea),
		Breadcrumbs: []model.BreadcrumbItem{homeCrumb, servicesCrumb},
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("All Services", a.serviceHubLinks()),
		},
	}
	return a.finish(p, schema.LocalBusinessOptions{})
}

func (a *Assembler) service(svc model.ServiceEntry) (model.Page, error) {
	p := model.Page{
		Route:       linkgraph.ServiceRoute(svc.Slug),
		Kind:        KindService,
		Title:       fmt.Sprintf("%s in %s", svc.Name, a.tables.Business.ServiceArea),
		Heading:     svc.Name,
		Description: svc.Description,
		Breadcrumbs: []model.BreadcrumbItem{homeCrumb, servicesCrumb, {Name: svc.Name, Href: linkgraph.ServiceRoute(svc.Slug)}},
		FAQs:        a.tables.FAQsFor(svc.Slug, model.LocationEntry{}),
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks(svc.Name+" Service Areas", a.graph.ServiceAreaLinks(svc.Slug, svc.Name)),
			linkgraph.InternalLinks("Related Services", a.graph.RelatedServices("", svc.Slug)),
			linkgraph.InternalLinks(svc.Name+" Guides", a.guideLinks(guidesFor(svc.Slug))),
		},
	}
	obj, err := schema.Service(a.tables.Business, model.ServiceDescriptor{
		Name:        svc.Name,
		Description: svc.Description,
		MinPrice:    svc.MinPrice,
	})
	if err != nil {
		return model.Page{}, fmt.Errorf("page %s: %w", p.Route, err)
	}
	return a.finish(p, schema.LocalBusinessOptions{ServiceName: svc.Name}, obj)
}

func (a *Assembler) city(svc model.ServiceEntry, loc model.LocationEntry) (model.Page, error) {
	route := linkgraph.CityRoute(svc.Slug, loc.Slug)
	desc := fmt.Sprintf("%s %s serves %s and %s County.", svc.Description, a.tables.Business.Name, loc.Name, loc.County)
	p := model.Page{
		Route:       route,
		Kind:        KindCity,
		Title:       fmt.Sprintf("%s in %s, FL", svc.Name, loc.Name),
		Description: desc,
		Breadcrumbs: []model.BreadcrumbItem{
			homeCrumb,
			servicesCrumb,
			{Name: svc.Name, Href: linkgraph.ServiceRoute(svc.Slug)},
			{Name: loc.Name, Href: route},
		},
		FAQs: a.tables.FAQsFor(svc.Slug, loc),
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("More Services in "+loc.Name, a.graph.RelatedServices(loc.Slug, svc.Slug)),
			linkgraph.InternalLinks("Nearby Service Areas", a.graph.NearbyLocations(loc.Slug, svc.Slug, svc.Name)),
			linkgraph.InternalLinks("Next Steps", []model.Link{
				{Href: linkgraph.ServiceRoute(svc.Slug), Label: "All " + svc.Name + " Areas"},
				{Href: linkgraph.LocationRoute(loc.Slug), Label: "Building in " + loc.Name},
				{Href: linkgraph.ContactRoute, Label: "Request a Bid"},
			}),
		},
	}
	obj, err := schema.Service(a.tables.Business, model.ServiceDescriptor{
		Name:        svc.Name,
		Description: p.Description,
		MinPrice:    svc.MinPrice,
		City:        loc.Name,
	})
	if err != nil {
		return model.Page{}, fmt.Errorf("page %s: %w", route, err)
	}
	return a.finish(p, schema.LocalBusinessOptions{ServiceName: svc.Name, City: loc.Name}, obj)
}

func (a *Assembler) locations() (model.Page, error) {
	p := model.Page{
		Route:       linkgraph.LocationsRoute,
		Kind:        KindLocations,
		Title:       "Service Areas",
		Description: fmt.Sprintf("Cities across %s served by %s.", a.tables.Business.ServiceArea, a.tables.Business.Name),
		Breadcrumbs: []model.BreadcrumbItem{homeCrumb, locationsCrumb},
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("Cities We Serve", a.locationHubLinks()),
		},
	}
	return a.finish(p, schema.LocalBusinessOptions{})
}

func (a *Assembler) location(loc model.LocationEntry) (model.Page, error) {
	var links []model.Link
	for _, s := range a.tables.ServicesIn(loc.Slug) {
		links = append(links, model.Link{Href: linkgraph.CityRoute(s.Slug, loc.Slug), Label: s.Name + " in " + loc.Name})
	}
	route := linkgraph.LocationRoute(loc.Slug)
	p := model.Page{
		Route:       route,
		Kind:        KindLocation,
		Title:       fmt.Sprintf("General Contractor in %s, FL", loc.Name),
		Description: fmt.Sprintf("%s builds in %s and across %s County.", a.tables.Business.Name, loc.Name, loc.County),
		Breadcrumbs: []model.BreadcrumbItem{homeCrumb, locationsCrumb, {Name: loc.Name, Href: route}},
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("Services in "+loc.Name, links),
		},
	}
	return a.finish(p, schema.LocalBusinessOptions{City: loc.Name})
}

func (a *Assembler) guideIndex() (model.Page, error) {
	p := model.Page{
		Route:       linkgraph.GuidesRoute,
		Kind:        KindGuides,
		Title:       "Construction Guides",
		Description: "Guides to building, permitting and recovery in Florida.",
		Breadcrumbs: []model.BreadcrumbItem{homeCrumb, guidesCrumb},
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("All Guides", a.guideLinks(nil)),
		},
	}
	return a.finish(p, schema.LocalBusinessOptions{})
}

func (a *Assembler) guide(g model.Guide) (model.Page, error) {
	route := linkgraph.GuideRoute(g.Article.Slug)
	var related []model.Link
	for _, slug := range g.Services {
		if s, ok := a.tables.Service(slug); ok {
			related = append(related, model.Link{Href: linkgraph.ServiceRoute(s.Slug), Label: s.Name})
		}
	}
	p := model.Page{
		Route:        route,
		Kind:         KindGuide,
		Title:        g.Title,
		Description:  g.Article.Description,
		Breadcrumbs:  []model.BreadcrumbItem{homeCrumb, guidesCrumb, {Name: g.Title, Href: route}},
		FAQs:         g.FAQs,
		Body:         g.ContentHTML,
		LastModified: g.Article.DateModified,
		LinkBlocks: []model.LinkBlock{
			linkgraph.InternalLinks("Related Services", related),
		},
	}
	meta := g.Article
	meta.Slug = strings.TrimPrefix(route, "/")
	obj, err := schema.Article(a.tables.Business, a.baseURL, meta)
	if err != nil {
		return model.Page{}, fmt.Errorf("guide %s: %w", g.SourcePath, err)
	}
	return a.finish(p, schema.LocalBusinessOptions{}, obj)
}

func (a *Assembler) contact() (model.Page, error) {
	b := a.tables.Business
	p := model.Page{
		Route:       linkgraph.ContactRoute,
		Kind:        KindContact,
		Title:       "Request a Bid",
		Description: fmt.Sprintf("Call %s or send your project details to %s.", b.PhoneDisplay, b.Name),
		Breadcrumbs: []model.BreadcrumbItem{homeCrumb, {Name: "Contact", Href: linkgraph.ContactRoute}},
	}
	return a.finish(p, schema.LocalBusinessOptions{Type: "GeneralContractor"})
}

