package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Port is a named reference coordinate used for proximity classification.
type Port struct {
	Name string  `yaml:"name" json:"name" validate:"required"`
	Lat  float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `yaml:"lon" json:"lon" validate:"gte=-180,lte=180"`
}

// Ship is a vessel whose telemetry the external downloader can supply.
type Ship struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

// Catalog holds the ports and fleet the service knows about. It can be loaded
// from a YAML file; compiled-in defaults cover the Strait of Gibraltar
// deployment the service was built for.
type Catalog struct {
	Ports []Port `yaml:"ports" validate:"required,min=1,dive"`
	Fleet []Ship `yaml:"fleet" validate:"dive"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Ports: []Port{
			{Name: "Algeciras", Lat: 36.128740148, Lon: -5.439981128},
			{Name: "Tanger Med", Lat: 35.880312709, Lon: -5.515627045},
			{Name: "Ceuta", Lat: 35.889, Lon: -5.307},
			{Name: "Gibraltar", Lat: 36.147611, Lon: -5.365393},
		},
		Fleet: []Ship{
			{ID: "ceuta-jet", Name: "Ceuta Jet"},
			{ID: "tanger-express", Name: "Tanger Express"},
			{ID: "kattegat", Name: "Kattegat"},
		},
	}
}

// Load reads a catalog file; an empty path yields the defaults. Sections
// missing from the file fall back to the defaults so a deployment can
// override just its ports or just its fleet.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	defaults := Default()
	if len(cat.Ports) == 0 {
		cat.Ports = defaults.Ports
	}
	if len(cat.Fleet) == 0 {
		cat.Fleet = defaults.Fleet
	}

	if err := validator.New().Struct(&cat); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}

	return &cat, nil
}

// PortNames returns the configured port names in catalog order.
func (c *Catalog) PortNames() []string {
	names := make([]string, 0, len(c.Ports))
	for _, p := range c.Ports {
		names = append(names, p.Name)
	}
	return names
}
