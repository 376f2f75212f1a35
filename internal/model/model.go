package model

import (
	"html/template"
)

// Address is the business's registered postal address.
type Address struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Zip     string `yaml:"zip"`
	Country string `yaml:"country"`
}

// BusinessProfile holds the company facts every page and schema block reads.
// It is loaded once per build and never mutated.
type BusinessProfile struct {
	Name            string  `yaml:"name"`
	PhoneDisplay    string  `yaml:"phoneDisplay"`
	PhoneRaw        string  `yaml:"phoneRaw"`
	Email           string  `yaml:"email"`
	Address         Address `yaml:"address"`
	LicenseNumber   string  `yaml:"licenseNumber"`
	YearsInBusiness int     `yaml:"yearsInBusiness"`
	ProjectCount    int     `yaml:"projectCount"`
	ServiceArea     string  `yaml:"serviceArea"`
	URL             string  `yaml:"url"`
	Logo            string  `yaml:"logo"`
	FormURL         string  `yaml:"formURL"`
}

// ServiceDescriptor is the per-page input to the Service schema.
// MinPrice and City are optional; MinPrice is a whole-dollar string such as "500000".
type ServiceDescriptor struct {
	Name        string
	Description string
	MinPrice    string
	City        string
}

// FAQItem is a plain-text question and answer pair.
type FAQItem struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// BreadcrumbItem is one step from the home page to the current page.
type BreadcrumbItem struct {
	Name string
	Href string
}

// LocationEntry is a served city.
type LocationEntry struct {
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	County   string `yaml:"county"`
	Priority int    `yaml:"priority"`
}

// ServiceEntry is an offered service.
type ServiceEntry struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	MinPrice    string `yaml:"minPrice"`
}

// ArticleMetadata describes a long-form guide page.
type ArticleMetadata struct {
	Headline      string
	Description   string
	DatePublished string
	DateModified  string
	Slug          string
}

// Guide represents a single Markdown guide after conversion.
type Guide struct {
	Article     ArticleMetadata
	Title       string
	SourcePath  string
	ContentHTML template.HTML
	Services    []string
	FAQs        []FAQItem
}
