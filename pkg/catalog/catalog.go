package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// Catalog is the static registry of feature definitions and tier grants.
// It is immutable after New returns and safe for concurrent use.
type Catalog struct {
	defs        []Definition
	index       map[FeatureID]int
	tiers       []Tier
	grants      map[Tier]map[FeatureID]Grant
	defaultTier Tier
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithDefaultTier sets the tier applied to tenants without a subscription.
// Defaults to TierFree.
func WithDefaultTier(t Tier) Option {
	return func(c *Catalog) {
		c.defaultTier = t
	}
}

// New validates and builds a catalog. Definitions keep their registration order.
func New(defs []Definition, tiers []TierGrants, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		defs:        make([]Definition, 0, len(defs)),
		index:       make(map[FeatureID]int, len(defs)),
		tiers:       make([]Tier, 0, len(tiers)),
		grants:      make(map[Tier]map[FeatureID]Grant, len(tiers)),
		defaultTier: TierFree,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, d := range defs {
		if d.ID == "" {
			return nil, errors.Join(ErrInvalidCatalog, errors.New("feature id cannot be empty"))
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("duplicate feature %q", d.ID))
		}
		typ, err := ParseFeatureType(string(d.Type))
		if err != nil {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("feature %q: %w", d.ID, err))
		}
		d.Type = typ
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}

	for _, tg := range tiers {
		if tg.Tier == "" {
			return nil, errors.Join(ErrInvalidCatalog, errors.New("tier name cannot be empty"))
		}
		if _, dup := c.grants[tg.Tier]; dup {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("duplicate tier %q", tg.Tier))
		}
		grants := make(map[FeatureID]Grant, len(tg.Grants))
		for id, g := range tg.Grants {
			if _, ok := c.index[id]; !ok {
				return nil, errors.Join(ErrInvalidCatalog, ErrUnknownFeature,
					fmt.Errorf("tier %q grants unregistered feature %q", tg.Tier, id))
			}
			if g.Limit != nil && *g.Limit < 0 {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %q feature %q has negative limit %d", tg.Tier, id, *g.Limit))
			}
			grants[id] = cloneGrant(g)
		}
		c.tiers = append(c.tiers, tg.Tier)
		c.grants[tg.Tier] = grants
	}

	if _, ok := c.grants[c.defaultTier]; !ok {
		return nil, errors.Join(ErrInvalidCatalog, ErrUnknownTier,
			fmt.Errorf("default tier %q is not declared", c.defaultTier))
	}

	return c, nil
}

// MustNew is New that panics on invalid input.
func MustNew(defs []Definition, tiers []TierGrants, opts ...Option) *Catalog {
	c, err := New(defs, tiers, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ListDefinitions returns all definitions in registration order.
func (c *Catalog) ListDefinitions() []Definition {
	return slices.Clone(c.defs)
}

// GetDefinition returns the definition for id or ErrUnknownFeature.
func (c *Catalog) GetDefinition(id FeatureID) (Definition, error) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	return c.defs[i], nil
}

// Has reports whether id is registered.
func (c *Catalog) Has(id FeatureID) bool {
	_, ok := c.index[id]
	return ok
}

// ParseFeatureID converts untrusted input (URL params, config) into a FeatureID
// registered in the catalog.
func (c *Catalog) ParseFeatureID(s string) (FeatureID, error) {
	id := FeatureID(s)
	if !c.Has(id) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
	}
	return id, nil
}

// Grant returns the tier's grant for a feature. A feature the tier does not
// mention is reported as not granted with ok=false.
func (c *Catalog) Grant(tier Tier, id FeatureID) (Grant, bool) {
	grants, ok := c.grants[tier]
	if !ok {
		return Grant{}, false
	}
	g, ok := grants[id]
	if !ok {
		return Grant{}, false
	}
	return cloneGrant(g), true
}

// Tiers returns the declared tiers in declaration order.
func (c *Catalog) Tiers() []Tier {
	return slices.Clone(c.tiers)
}

// HasTier reports whether the tier is declared.
func (c *Catalog) HasTier(t Tier) bool {
	_, ok := c.grants[t]
	return ok
}

// DefaultTier is the tier applied to tenants that have no subscription.
func (c *Catalog) DefaultTier() Tier {
	return c.defaultTier
}

// TierGrants returns a copy of all grants of a tier.
func (c *Catalog) TierGrants(t Tier) (map[FeatureID]Grant, error) {
	grants, ok := c.grants[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	out := make(map[FeatureID]Grant, len(grants))
	for id, g := range grants {
		out[id] = cloneGrant(g)
	}
	return out, nil
}

// Require checks that every id is registered. Called at startup with
// KnownFeatures so a catalog missing a feature the code depends on fails
// configuration loading instead of the first request.
func (c *Catalog) Require(ids ...FeatureID) error {
	var missing []FeatureID
	for _, id := range ids {
		if !c.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrUnknownFeature, missing)
	}
	return nil
}

func cloneGrant(g Grant) Grant {
	if g.Limit != nil {
		g.Limit = Quota(*g.Limit)
	}
	return g
}
