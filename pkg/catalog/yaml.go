package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSpec is the on-disk layout of a catalog file.
//
//	default_tier: free
//	tiers: [free, pro, enterprise]
//	features:
//	  - id: ai_screening
//	    name: AI screening
//	    type: freemium
//	    tiers:
//	      free: {granted: true, limit: 10}
//	      enterprise: {granted: true} # no limit: unlimited
type fileSpec struct {
	DefaultTier string        `yaml:"default_tier"`
	Tiers       []string      `yaml:"tiers"`
	Features    []featureSpec `yaml:"features"`
}

type featureSpec struct {
	ID          string               `yaml:"id"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Type        string               `yaml:"type"`
	Tiers       map[string]grantSpec `yaml:"tiers"`
}

type grantSpec struct {
	Granted bool   `yaml:"granted"`
	Limit   *int64 `yaml:"limit"`
}

// LoadYAML decodes and validates a catalog from r.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var spec fileSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return spec.build()
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	defer f.Close()

	return LoadYAML(f)
}

func (s fileSpec) build() (*Catalog, error) {
	declared := make(map[Tier]struct{}, len(s.Tiers))
	tiers := make([]TierGrants, 0, len(s.Tiers))
	for _, name := range s.Tiers {
		t := Tier(name)
		declared[t] = struct{}{}
		tiers = append(tiers, TierGrants{Tier: t, Grants: make(map[FeatureID]Grant)})
	}

	defs := make([]Definition, 0, len(s.Features))
	for _, f := range s.Features {
		typ, err := ParseFeatureType(f.Type)
		if err != nil {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("feature %q: %w", f.ID, err))
		}
		id := FeatureID(f.ID)
		defs = append(defs, Definition{
			ID:          id,
			Name:        f.Name,
			Description: f.Description,
			Type:        typ,
		})

		for tierName, g := range f.Tiers {
			t := Tier(tierName)
			if _, ok := declared[t]; !ok {
				return nil, errors.Join(ErrInvalidCatalog, ErrUnknownTier,
					fmt.Errorf("feature %q references undeclared tier %q", f.ID, tierName))
			}
			for i := range tiers {
				if tiers[i].Tier == t {
					tiers[i].Grants[id] = Grant{Granted: g.Granted, Limit: g.Limit}
				}
			}
		}
	}

	var opts []Option
	if s.DefaultTier != "" {
		opts = append(opts, WithDefaultTier(Tier(s.DefaultTier)))
	}
	return New(defs, tiers, opts...)
}
