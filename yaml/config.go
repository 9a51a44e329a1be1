// Package yaml loads crawl configuration files with gopkg.in/yaml.v3.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/fwojciec/mdcrawl"
	"gopkg.in/yaml.v3"
)

// File mirrors mdcrawl.Config as written in a YAML file. Unset fields
// leave the corresponding config value untouched.
type File struct {
	URL         *string  `yaml:"url"`
	Name        *string  `yaml:"name"`
	Base        *string  `yaml:"base"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	Concurrency *int     `yaml:"concurrency"`
	Timeout     *string  `yaml:"timeout"`
	Retries     *int     `yaml:"retries"`
	Renderer    *string  `yaml:"renderer"`
	Markdown    *string  `yaml:"markdown"`
	Rate        *float64 `yaml:"rate"`
	Robots      *bool    `yaml:"robots"`
	Sitemap     *bool    `yaml:"sitemap"`
	Bloom       *bool    `yaml:"bloom"`
	Journal     *string  `yaml:"journal"`
	MaxPages    *int     `yaml:"max_pages"`
}

// LoadConfig reads a YAML config file. A missing file is an ENOTFOUND
// error; unknown keys and malformed values are EINVALID errors.
func LoadConfig(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "config file %s not found", path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config data.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "invalid config: %v", err)
	}
	if f.Timeout != nil {
		if _, err := time.ParseDuration(*f.Timeout); err != nil {
			return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "invalid config: timeout %q: %v", *f.Timeout, err)
		}
	}
	return &f, nil
}

// Apply copies every set field onto cfg.
func (f *File) Apply(cfg *mdcrawl.Config) {
	setString(&cfg.SeedURL, f.URL)
	setString(&cfg.Name, f.Name)
	setString(&cfg.OutputBase, f.Base)
	if f.Include != nil {
		cfg.Include = f.Include
	}
	if f.Exclude != nil {
		cfg.Exclude = f.Exclude
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if f.Timeout != nil {
		// Validated by Parse.
		cfg.Timeout, _ = time.ParseDuration(*f.Timeout)
	}
	if f.Retries != nil {
		cfg.RetryCeiling = *f.Retries
	}
	setString(&cfg.Renderer, f.Renderer)
	setString(&cfg.Markdown, f.Markdown)
	if f.Rate != nil {
		cfg.RequestsPerSecond = *f.Rate
	}
	setBool(&cfg.Robots, f.Robots)
	setBool(&cfg.Sitemap, f.Sitemap)
	setBool(&cfg.Bloom, f.Bloom)
	setString(&cfg.Journal, f.Journal)
	if f.MaxPages != nil {
		cfg.MaxPages = *f.MaxPages
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
