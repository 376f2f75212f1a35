package model

import "html/template"

// Link is one rendered anchor.
type Link struct {
	Href  string
	Label string
}

// LinkBlock is a titled list of links. Empty blocks are not rendered.
type LinkBlock struct {
	Title string
	Links []Link
}

// Page is the view model for one route.
type Page struct {
	Route        string
	Kind         string
	Title        string
	Heading      string
	Description  string
	Breadcrumbs  []BreadcrumbItem
	JSONLD       []template.HTML
	FAQs         []FAQItem
	Body         template.HTML
	LinkBlocks   []LinkBlock
	Layout       string
	LastModified string // ISO-8601 date for the sitemap; optional
}
