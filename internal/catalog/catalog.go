package catalog

import (
	_ "embed"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/gosimple/slug"
	"github.com/michaelscutari/gridassets/internal/asset"
	"github.com/michaelscutari/gridassets/internal/normalize"
)

//go:embed catalog.yaml
var embedded []byte

const codePlaceholder = "{code}"

// Catalog is the fixed table of assets to download.
type Catalog struct {
	Flags FlagSet `yaml:"flags"`
	Logos LogoSet `yaml:"logos"`
}

// FlagSet maps nationalities to flag images.
type FlagSet struct {
	URLTemplate   string            `yaml:"url_template"`
	Ext           string            `yaml:"ext"`
	Nationalities []string          `yaml:"nationalities"`
	CountryCodes  map[string]string `yaml:"country_codes"`
}

// LogoSet lists team logos and the canvas they are normalized onto.
type LogoSet struct {
	Canvas struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"canvas"`
	Margin int    `yaml:"margin"`
	Teams  []Team `yaml:"teams"`
}

// Team is a single logo source.
type Team struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks identifiers, URLs and the logo canvas.
func (c *Catalog) Validate() error {
	if !strings.Contains(c.Flags.URLTemplate, codePlaceholder) {
		return fmt.Errorf("flags: url_template must contain %s", codePlaceholder)
	}
	if err := checkURL(strings.ReplaceAll(c.Flags.URLTemplate, codePlaceholder, "xx")); err != nil {
		return fmt.Errorf("flags: url_template: %w", err)
	}
	owner := make(map[string]string, len(c.Flags.CountryCodes))
	names := make([]string, 0, len(c.Flags.CountryCodes))
	for name := range c.Flags.CountryCodes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		code := c.Flags.CountryCodes[name]
		if !slug.IsSlug(code) {
			return fmt.Errorf("flags: country code %q for %s is not a valid identifier", code, name)
		}
		if prev, ok := owner[code]; ok {
			return fmt.Errorf("flags: country code %q used by both %s and %s", code, prev, name)
		}
		owner[code] = name
	}

	if err := c.Canvas().Validate(c.Logos.Margin); err != nil {
		return fmt.Errorf("logos: %w", err)
	}
	seen := make(map[string]bool, len(c.Logos.Teams))
	for _, t := range c.Logos.Teams {
		if !slug.IsSlug(t.ID) {
			return fmt.Errorf("logos: team id %q is not a valid identifier", t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("logos: duplicate team id %q", t.ID)
		}
		seen[t.ID] = true
		if err := checkURL(t.URL); err != nil {
			return fmt.Errorf("logos: %s: %w", t.ID, err)
		}
	}
	return nil
}

// Canvas returns the logo canvas.
func (c *Catalog) Canvas() normalize.Canvas {
	return normalize.Canvas{Width: c.Logos.Canvas.Width, Height: c.Logos.Canvas.Height}
}

// CountryCode looks up the two-letter code for a nationality.
func (c *Catalog) CountryCode(nationality string) (string, bool) {
	code, ok := c.Flags.CountryCodes[nationality]
	return code, ok && code != ""
}

// FlagURL builds the download URL for a country code.
func (c *Catalog) FlagURL(code string) string {
	return strings.ReplaceAll(c.Flags.URLTemplate, codePlaceholder, code)
}

// FlagAssets returns one asset per listed nationality that has a country
// code. Nationalities without one are returned as skips.
func (c *Catalog) FlagAssets() ([]asset.Asset, []asset.Skip) {
	var assets []asset.Asset
	var skips []asset.Skip
	for _, nat := range c.Flags.Nationalities {
		code, ok := c.CountryCode(nat)
		if !ok {
			skips = append(skips, asset.Skip{Name: nat, Reason: "no country code"})
			continue
		}
		assets = append(assets, asset.Asset{
			ID:   code,
			Name: nat,
			URL:  c.FlagURL(code),
			Ext:  c.Flags.Ext,
			Kind: asset.KindFlag,
		})
	}
	return assets, skips
}

// LogoAssets returns one asset per team, in catalog order. Logos are always
// written as PNG after normalization.
func (c *Catalog) LogoAssets() []asset.Asset {
	assets := make([]asset.Asset, 0, len(c.Logos.Teams))
	for _, t := range c.Logos.Teams {
		assets = append(assets, asset.Asset{
			ID:   t.ID,
			Name: t.ID,
			URL:  t.URL,
			Ext:  "png",
			Kind: asset.KindLogo,
		})
	}
	return assets
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
