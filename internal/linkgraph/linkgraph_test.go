package linkgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suncoastbuild/sitegen/internal/config"
	"github.com/suncoastbuild/sitegen/internal/model"
	"github.com/suncoastbuild/sitegen/internal/sitedata"
	"github.com/suncoastbuild/sitegen/internal/sitedata/sitedatatest"
)

func newGraph(t *testing.T, limit int) *Graph {
	t.Helper()
	g, err := New(sitedatatest.Tables(t), Options{Cap: limit, Guides: []string{"hurricane-codes"}})
	require.NoError(t, err)
	return g
}

func hrefs(links []model.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Href)
	}
	return out
}

func TestRelatedServicesRuskin(t *testing.T) {
	g := newGraph(t, 0)
	got := g.RelatedServices("Ruskin", "multi-family-construction")
	want := []model.Link{
		{Href: "/commercial-construction-ruskin/", Label: "Commercial Construction"},
		{Href: "/custom-homes-ruskin/", Label: "Custom Homes"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RelatedServices mismatch (-want +got):\n%s", diff)
	}
}

func TestRelatedServicesNeverSelfLinks(t *testing.T) {
	g := newGraph(t, 10)
	tables := g.Tables()
	for _, loc := range append(tables.Locations, model.LocationEntry{}) {
		for _, svc := range tables.Services {
			for _, l := range g.RelatedServices(loc.Slug, svc.Slug) {
				assert.NotEqual(t, ServiceRoute(svc.Slug), l.Href)
				if loc.Slug != "" {
					assert.NotEqual(t, CityRoute(svc.Slug, loc.Slug), l.Href)
				}
				assert.True(t, g.Has(l.Href), "related link %s is not a route", l.Href)
			}
		}
	}
}

func TestRelatedServicesSitewideIsCapped(t *testing.T) {
	g := newGraph(t, 2)
	got := g.RelatedServices("", "custom-homes")
	assert.Equal(t, []string{"/commercial-construction/", "/disaster-recovery/"}, hrefs(got))
}

func TestRelatedServicesUnknownCity(t *testing.T) {
	g := newGraph(t, 0)
	assert.Empty(t, g.RelatedServices("Orlando", "custom-homes"))
}

func TestNearbyLocationsOrderAndExclusion(t *testing.T) {
	g := newGraph(t, 0)
	got := g.NearbyLocations("ruskin", "multi-family-construction", "Multi-Family Construction")
	// priority order: tampa(1) st-petersburg(2) brandon(4) sarasota(6) lakeland(7), capped at 4
	assert.Equal(t, []string{
		"/multi-family-construction-tampa/",
		"/multi-family-construction-st-petersburg/",
		"/multi-family-construction-brandon/",
		"/multi-family-construction-sarasota/",
	}, hrefs(got))
	assert.Equal(t, "Multi-Family Construction in Tampa", got[0].Label)
	assert.Len(t, got, config.DefaultLinkCap)
}

func TestNearbyLocationsNeverIncludesCurrent(t *testing.T) {
	g := newGraph(t, 10)
	tables := g.Tables()
	for _, svc := range tables.Services {
		for _, city := range tables.CitiesFor(svc.Slug) {
			for _, ref := range []string{city.Slug, city.Name} {
				for _, l := range g.NearbyLocations(ref, svc.Slug, svc.Name) {
					assert.NotEqual(t, CityRoute(svc.Slug, city.Slug), l.Href)
				}
			}
		}
	}
}

func TestNearbyLocationsFallsBackToTableName(t *testing.T) {
	g := newGraph(t, 1)
	got := g.NearbyLocations("tampa", "disaster-recovery", "")
	require.Len(t, got, 1)
	assert.Equal(t, model.Link{Href: "/disaster-recovery-clearwater/", Label: "Disaster Recovery in Clearwater"}, got[0])
}

func TestNearbyLocationsUnknownService(t *testing.T) {
	g := newGraph(t, 0)
	assert.Empty(t, g.NearbyLocations("tampa", "pool-building", "Pools"))
	assert.Empty(t, g.NearbyLocations("tampa", "engineering-coordination", "Engineering"))
}

func TestServiceAreaLinksUncapped(t *testing.T) {
	g := newGraph(t, 2)
	got := g.ServiceAreaLinks("multi-family-construction", "Multi-Family Construction")
	assert.Equal(t, []string{
		"/multi-family-construction-lakeland/",
		"/multi-family-construction-sarasota/",
		"/multi-family-construction-ruskin/",
		"/multi-family-construction-brandon/",
		"/multi-family-construction-st-petersburg/",
		"/multi-family-construction-tampa/",
	}, hrefs(got))
}

func TestInternalLinksIsVerbatim(t *testing.T) {
	links := []model.Link{{Href: "/contact/", Label: "Contact"}, {Href: "/contact/", Label: "Contact"}}
	block := InternalLinks("Next steps", links)
	assert.Equal(t, "Next steps", block.Title)
	assert.Equal(t, links, block.Links)
}

func TestCappedSliceDoesNotAlias(t *testing.T) {
	g := newGraph(t, 1)
	got := g.RelatedServices("", "x")
	got = append(got, model.Link{Href: "/bogus/"})
	again := g.RelatedServices("", "x")
	assert.Len(t, again, 1)
}

func TestLinksAreDeterministic(t *testing.T) {
	g := newGraph(t, 0)
	for i := 0; i < 20; i++ {
		assert.Equal(t,
			g.NearbyLocations("clearwater", "commercial-construction", "Commercial Construction"),
			g.NearbyLocations("clearwater", "commercial-construction", "Commercial Construction"))
	}
}

func TestRoutesAndValidate(t *testing.T) {
	g := newGraph(t, 0)
	routes := g.Routes()
	assert.Contains(t, routes, "/")
	assert.Contains(t, routes, "/multi-family-construction-ruskin/")
	assert.Contains(t, routes, "/engineering-coordination/")
	assert.Contains(t, routes, "/locations/lakeland/")
	assert.Contains(t, routes, "/guides/hurricane-codes/")
	assert.NotContains(t, routes, "/disaster-recovery-ruskin/")
	assert.IsIncreasing(t, routes)
	for _, r := range routes {
		assert.Regexp(t, `^/([a-z0-9-]+/)*$`, r)
	}

	require.NoError(t, g.Validate(g.ServiceAreaLinks("custom-homes", "Custom Homes")))
	err := g.Validate([]model.Link{{Href: "/custom-homes-orlando/"}, {Href: "/services"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 link(s)")
}

func TestRemovedCityDisappears(t *testing.T) {
	tables := *sitedatatest.Tables(t)
	var cov []sitedata.Coverage
	for _, c := range tables.Coverage {
		var cities []string
		for _, city := range c.Cities {
			if city != "tampa" {
				cities = append(cities, city)
			}
		}
		cov = append(cov, sitedata.Coverage{Service: c.Service, Cities: cities})
	}
	tables.Coverage = cov
	trimmed, err := sitedata.New(tables)
	require.NoError(t, err)

	g, err := New(trimmed, Options{Cap: 10})
	require.NoError(t, err)
	for _, svc := range trimmed.Services {
		for _, l := range g.ServiceAreaLinks(svc.Slug, svc.Name) {
			assert.NotContains(t, l.Href, "-tampa/")
		}
	}
	assert.Empty(t, g.RelatedServices("tampa", "custom-homes"))
}

func TestNewRejectsDuplicateRoutes(t *testing.T) {
	tampa := model.LocationEntry{Name: "Tampa", Slug: "tampa", Priority: 1}
	tests := []struct {
		name     string
		services []model.ServiceEntry
		coverage []sitedata.Coverage
		guides   []string
		route    string
	}{
		{
			name:     "service slug spells a city page",
			services: []model.ServiceEntry{{Name: "Roofing", Slug: "roofing"}, {Name: "Roofing Tampa", Slug: "roofing-tampa"}},
			coverage: []sitedata.Coverage{{Service: "roofing", Cities: []string{"tampa"}}},
			route:    "/roofing-tampa/",
		},
		{
			name:     "service slug shadows a fixed page",
			services: []model.ServiceEntry{{Name: "Contact", Slug: "contact"}},
			route:    ContactRoute,
		},
		{
			name:     "service slug shadows the locations index",
			services: []model.ServiceEntry{{Name: "Locations", Slug: "locations"}},
			route:    LocationsRoute,
		},
		{
			name:     "guide listed twice",
			services: []model.ServiceEntry{{Name: "Roofing", Slug: "roofing"}},
			guides:   []string{"storm-prep", "storm-prep"},
			route:    "/guides/storm-prep/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := sitedata.New(sitedata.Tables{
				Business:  model.BusinessProfile{Name: "Acme", PhoneRaw: "+18135550100", ServiceArea: "Tampa Bay"},
				Services:  tt.services,
				Locations: []model.LocationEntry{tampa},
				Coverage:  tt.coverage,
			})
			require.NoError(t, err)

			g, err := New(tables, Options{Guides: tt.guides})
			require.ErrorIs(t, err, ErrDuplicateRoute)
			assert.Nil(t, g)
			assert.Contains(t, err.Error(), tt.route)
		})
	}
}

func TestBoundHasNoSpareCapacity(t *testing.T) {
	g := newGraph(t, 2)
	links := make([]model.Link, 3, 8)
	got := g.Bound(links)
	require.Len(t, got, 2)
	assert.Equal(t, 2, cap(got))

	_ = append(got, model.Link{Href: "/x/"})
	assert.Empty(t, links[2].Href, "append must not write into the source slice")
}
