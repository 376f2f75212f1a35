package config

import "runtime"

// DefaultLinkCap bounds related and nearby link lists.
const DefaultLinkCap = 4

type Config struct {
	SiteTitle  string       `mapstructure:"siteTitle"`
	OutputDir  string       `mapstructure:"outputDir"`
	BaseURL    string       `mapstructure:"baseURL"`
	DataFile   string       `mapstructure:"dataFile"`
	ContentDir string       `mapstructure:"contentDir"`
	LayoutsDir string       `mapstructure:"layoutsDir"`
	StaticDir  string       `mapstructure:"staticDir"`
	Links      LinksConfig  `mapstructure:"links"`
	Render     RenderConfig `mapstructure:"render"`
	Log        LogConfig    `mapstructure:"log"`
}

type LinksConfig struct {
	Cap int `mapstructure:"cap"`
}

type RenderConfig struct {
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LinkCap returns the configured cap, or DefaultLinkCap when unset.
func (c Config) LinkCap() int {
	if c.Links.Cap <= 0 {
		return DefaultLinkCap
	}
	return c.Links.Cap
}

// Workers returns the render worker count, defaulting to the CPU count.
func (c Config) Workers() int {
	if c.Render.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Render.Workers
}
