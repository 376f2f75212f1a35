// Package schema builds schema.org JSON-LD objects for landing pages.
//
// Objects are plain maps. encoding/json writes map keys in sorted order, so
// marshalling the same inputs twice yields identical bytes.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/suncoastbuild/sitegen/internal/model"
)

const (
	contextURL = "https://schema.org"

	// DefaultBusinessType is the LocalBusiness subtype used when none is given.
	DefaultBusinessType = "HomeAndConstructionBusiness"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidHref  = errors.New("invalid breadcrumb href")
	ErrInvalidDate  = errors.New("invalid ISO-8601 date")
)

// Object is one JSON-LD node.
type Object map[string]any

// JSON marshals obj compactly. A nil object yields an empty string.
func JSON(obj Object) (string, error) {
	if obj == nil {
		return "", nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("marshal %v: %w", obj["@type"], err)
	}
	return string(b), nil
}

// Script renders obj as an application/ld+json script element.
// json.Marshal escapes <, > and &, so the payload cannot close the element.
func Script(obj Object) (template.HTML, error) {
	s, err := JSON(obj)
	if err != nil || s == "" {
		return "", err
	}
	return template.HTML(`<script type="application/ld+json">` + s + `</script>`), nil
}

// JoinURL joins a base URL and a root-relative href with exactly one slash between them.
func JoinURL(baseURL, href string) string {
	base := strings.TrimRight(baseURL, "/")
	if href == "" || href == "/" {
		return base + "/"
	}
	return base + "/" + strings.TrimLeft(href, "/")
}

func setIf(m Object, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		m[key] = v
	}
}

func required(kind string, fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %s", kind, ErrMissingField, strings.Join(missing, ", "))
}

// LocalBusinessOptions are the optional per-page overrides. Blank fields count as unset.
type LocalBusinessOptions struct {
	// ServiceName is appended to the business name for makesOffer. Default: none.
	ServiceName string
	// City narrows areaServed. Default: the profile's ServiceArea.
	City string
	// Type overrides @type. Default: DefaultBusinessType.
	Type string
}

// LocalBusiness builds the business node present on every page.
func LocalBusiness(p model.BusinessProfile, opts LocalBusinessOptions) Object {
	typ := strings.TrimSpace(opts.Type)
	if typ == "" {
		typ = DefaultBusinessType
	}
	m := Object{
		"@context": contextURL,
		"@type":    typ,
		"name":     p.Name,
	}
	setIf(m, "telephone", p.PhoneRaw)
	setIf(m, "email", p.Email)
	setIf(m, "url", p.URL)
	setIf(m, "logo", p.Logo)

	addr := Object{"@type": "PostalAddress"}
	setIf(addr, "streetAddress", p.Address.Street)
	setIf(addr, "addressLocality", p.Address.City)
	setIf(addr, "addressRegion", p.Address.State)
	setIf(addr, "postalCode", p.Address.Zip)
	setIf(addr, "addressCountry", p.Address.Country)
	if len(addr) > 1 {
		m["address"] = addr
	}

	area := strings.TrimSpace(opts.City)
	if area == "" {
		area = strings.TrimSpace(p.ServiceArea)
	}
	if area != "" {
		m["areaServed"] = Object{"@type": "Place", "name": area}
	}

	if lic := strings.TrimSpace(p.LicenseNumber); lic != "" {
		m["hasCredential"] = Object{
			"@type":              "EducationalOccupationalCredential",
			"credentialCategory": "license",
			"name":               "Florida Certified General Contractor " + lic,
		}
	}
	if desc := businessDescription(p); desc != "" {
		m["description"] = desc
	}
	if svc := strings.TrimSpace(opts.ServiceName); svc != "" {
		m["makesOffer"] = Object{
			"@type":       "Offer",
			"itemOffered": Object{"@type": "Service", "name": svc},
		}
	}
	return m
}

func businessDescription(p model.BusinessProfile) string {
	var parts []string
	if p.YearsInBusiness > 0 {
		parts = append(parts, fmt.Sprintf("%d years in business", p.YearsInBusiness))
	}
	if p.ProjectCount > 0 {
		parts = append(parts, fmt.Sprintf("%d+ projects completed", p.ProjectCount))
	}
	return strings.Join(parts, ", ")
}

// Service builds a Service node. Name and description are required.
// An offers block is emitted only when MinPrice is set.
func Service(p model.BusinessProfile, d model.ServiceDescriptor) (Object, error) {
	if err := required("service schema", [2]string{"name", d.Name}, [2]string{"description", d.Description}); err != nil {
		return nil, err
	}
	m := Object{
		"@context":    contextURL,
		"@type":       "Service",
		"name":        strings.TrimSpace(d.Name),
		"description": strings.TrimSpace(d.Description),
		"serviceType": strings.TrimSpace(d.Name),
	}
	provider := Object{"@type": DefaultBusinessType, "name": p.Name}
	setIf(provider, "telephone", p.PhoneRaw)
	setIf(provider, "url", p.URL)
	m["provider"] = provider

	if city := strings.TrimSpace(d.City); city != "" {
		m["areaServed"] = Object{"@type": "City", "name": city}
	}
	if price := strings.TrimSpace(d.MinPrice); price != "" {
		m["offers"] = Object{
			"@type":         "Offer",
			"priceCurrency": "USD",
			"priceSpecification": Object{
				"@type":         "PriceSpecification",
				"minPrice":      price,
				"priceCurrency": "USD",
			},
		}
	}
	return m, nil
}

// FAQ builds an FAQPage node preserving item order.
// An empty list yields nil, which Script renders as nothing.
func FAQ(items []model.FAQItem) Object {
	if len(items) == 0 {
		return nil
	}
	entities := make([]Object, 0, len(items))
	for _, it := range items {
		entities = append(entities, Object{
			"@type": "Question",
			"name":  it.Question,
			"acceptedAnswer": Object{
				"@type": "Answer",
				"text":  it.Answer,
			},
		})
	}
	return Object{
		"@context":   contextURL,
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}

// Breadcrumb builds a BreadcrumbList with 1-based contiguous positions.
// The trail must be non-empty and start at the home page.
func Breadcrumb(baseURL string, items []model.BreadcrumbItem) (Object, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("breadcrumb: %w: items", ErrMissingField)
	}
	if items[0].Href != "/" {
		return nil, fmt.Errorf("breadcrumb item 0: %w: %q is not the home page", ErrInvalidHref, items[0].Href)
	}
	el := make([]Object, 0, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("breadcrumb item %d: %w: name", i, ErrMissingField)
		}
		if !strings.HasPrefix(it.Href, "/") || !strings.HasSuffix(it.Href, "/") || strings.HasPrefix(it.Href, "//") {
			return nil, fmt.Errorf("breadcrumb item %d: %w: %q", i, ErrInvalidHref, it.Href)
		}
		el = append(el, Object{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     JoinURL(baseURL, it.Href),
		})
	}
	return Object{
		"@context":        contextURL,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}, nil
}

const isoDate = "2006-01-02"

// Article builds an Article node for a guide page. Every metadata field is required.
func Article(p model.BusinessProfile, baseURL string, a model.ArticleMetadata) (Object, error) {
	if err := required("article schema",
		[2]string{"headline", a.Headline},
		[2]string{"description", a.Description},
		[2]string{"datePublished", a.DatePublished},
		[2]string{"dateModified", a.DateModified},
		[2]string{"slug", a.Slug},
	); err != nil {
		return nil, err
	}
	for _, d := range []string{a.DatePublished, a.DateModified} {
		if _, err := time.Parse(isoDate, d); err != nil {
			return nil, fmt.Errorf("article schema: %w: %q", ErrInvalidDate, d)
		}
	}
	org := Object{"@type": "Organization", "name": p.Name}
	setIf(org, "url", p.URL)
	if logo := strings.TrimSpace(p.Logo); logo != "" {
		org["logo"] = Object{"@type": "ImageObject", "url": logo}
	}
	return Object{
		"@context":      contextURL,
		"@type":         "Article",
		"headline":      a.Headline,
		"description":   a.Description,
		"datePublished": a.DatePublished,
		"dateModified":  a.DateModified,
		"author":        org,
		"publisher":     org,
		"mainEntityOfPage": Object{
			"@type": "WebPage",
			"@id":   JoinURL(baseURL, "/"+strings.Trim(a.Slug, "/")+"/"),
		},
	}, nil
}

// Organization returns a minimal Organization node.
func Organization(p model.BusinessProfile) Object {
	m := Object{
		"@context": contextURL,
		"@type":    "Organization",
		"name":     p.Name,
	}
	setIf(m, "url", p.URL)
	setIf(m, "logo", p.Logo)
	if p.PhoneRaw != "" {
		m["contactPoint"] = Object{
			"@type":       "ContactPoint",
			"telephone":   p.PhoneRaw,
			"contactType": "sales",
		}
	}
	return m
}

// WebSite returns a minimal WebSite node.
func WebSite(name, url string) Object {
	m := Object{
		"@context": contextURL,
		"@type":    "WebSite",
		"name":     name,
	}
	setIf(m, "url", url)
	return m
}
