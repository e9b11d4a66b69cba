package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitly/entitlements/pkg/catalog"
)

func testDefinitions() []catalog.Definition {
	return []catalog.Definition{
		{ID: catalog.FeatureCore, Name: "Core", Type: catalog.TypeAlwaysOn},
		{ID: catalog.FeatureAIScreening, Name: "AI screening", Type: catalog.TypeFreemium},
		{ID: catalog.FeatureSSO, Name: "SSO", Type: catalog.TypeEnterprise},
	}
}

func testTiers() []catalog.TierGrants {
	return []catalog.TierGrants{
		{Tier: catalog.TierFree, Grants: map[catalog.FeatureID]catalog.Grant{
			catalog.FeatureCore:        {Granted: true},
			catalog.FeatureAIScreening: {Granted: true, Limit: catalog.Quota(10)},
		}},
		{Tier: catalog.TierEnterprise, Grants: map[catalog.FeatureID]catalog.Grant{
			catalog.FeatureCore:        {Granted: true},
			catalog.FeatureAIScreening: {Granted: true},
			catalog.FeatureSSO:         {Granted: true},
		}},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid catalog", func(t *testing.T) {
		t.Parallel()

		c, err := catalog.New(testDefinitions(), testTiers())
		require.NoError(t, err)
		assert.Equal(t, catalog.TierFree, c.DefaultTier())
		assert.Equal(t, []catalog.Tier{catalog.TierFree, catalog.TierEnterprise}, c.Tiers())
	})

	t.Run("duplicate feature", func(t *testing.T) {
		t.Parallel()

		defs := append(testDefinitions(), catalog.Definition{ID: catalog.FeatureCore, Type: catalog.TypeAlwaysOn})
		_, err := catalog.New(defs, testTiers())
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
	})

	t.Run("empty feature id", func(t *testing.T) {
		t.Parallel()

		defs := append(testDefinitions(), catalog.Definition{Type: catalog.TypeAddon})
		_, err := catalog.New(defs, testTiers())
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
	})

	t.Run("invalid type", func(t *testing.T) {
		t.Parallel()

		defs := []catalog.Definition{{ID: "x", Type: "beta"}}
		_, err := catalog.New(defs, []catalog.TierGrants{{Tier: catalog.TierFree}})
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
		assert.ErrorIs(t, err, catalog.ErrInvalidFeatureType)
	})

	t.Run("padded type is stored canonical", func(t *testing.T) {
		t.Parallel()

		defs := []catalog.Definition{{ID: catalog.FeatureAIScreening, Type: " freemium "}}
		tiers := []catalog.TierGrants{{Tier: catalog.TierFree, Grants: map[catalog.FeatureID]catalog.Grant{
			catalog.FeatureAIScreening: {Granted: true, Limit: catalog.Quota(0)},
		}}}
		c, err := catalog.New(defs, tiers)
		require.NoError(t, err)

		def, err := c.GetDefinition(catalog.FeatureAIScreening)
		require.NoError(t, err)
		assert.Equal(t, catalog.TypeFreemium, def.Type)
		assert.True(t, def.UsageLimited())
	})

	t.Run("grant for unregistered feature", func(t *testing.T) {
		t.Parallel()

		tiers := testTiers()
		tiers[0].Grants["nonexistent"] = catalog.Grant{Granted: true}
		_, err := catalog.New(testDefinitions(), tiers)
		assert.ErrorIs(t, err, catalog.ErrUnknownFeature)
	})

	t.Run("negative limit", func(t *testing.T) {
		t.Parallel()

		tiers := testTiers()
		tiers[0].Grants[catalog.FeatureAIScreening] = catalog.Grant{Granted: true, Limit: catalog.Quota(-1)}
		_, err := catalog.New(testDefinitions(), tiers)
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
	})

	t.Run("duplicate tier", func(t *testing.T) {
		t.Parallel()

		tiers := append(testTiers(), catalog.TierGrants{Tier: catalog.TierFree})
		_, err := catalog.New(testDefinitions(), tiers)
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
	})

	t.Run("undeclared default tier", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.New(testDefinitions(), testTiers(), catalog.WithDefaultTier(catalog.TierPro))
		assert.ErrorIs(t, err, catalog.ErrUnknownTier)
	})

	t.Run("must new panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			catalog.MustNew(nil, nil)
		})
	})
}

func TestCatalog_Lookups(t *testing.T) {
	t.Parallel()

	c := catalog.MustNew(testDefinitions(), testTiers())

	t.Run("list keeps registration order", func(t *testing.T) {
		t.Parallel()

		defs := c.ListDefinitions()
		require.Len(t, defs, 3)
		assert.Equal(t, catalog.FeatureCore, defs[0].ID)
		assert.Equal(t, catalog.FeatureAIScreening, defs[1].ID)
		assert.Equal(t, catalog.FeatureSSO, defs[2].ID)
	})

	t.Run("list returns a copy", func(t *testing.T) {
		t.Parallel()

		defs := c.ListDefinitions()
		defs[0].Name = "changed"
		def, err := c.GetDefinition(catalog.FeatureCore)
		require.NoError(t, err)
		assert.Equal(t, "Core", def.Name)
	})

	t.Run("unknown feature", func(t *testing.T) {
		t.Parallel()

		_, err := c.GetDefinition("nonexistent")
		assert.ErrorIs(t, err, catalog.ErrUnknownFeature)

		_, err = c.ParseFeatureID("nonexistent")
		assert.ErrorIs(t, err, catalog.ErrUnknownFeature)
	})

	t.Run("grant lookup", func(t *testing.T) {
		t.Parallel()

		g, ok := c.Grant(catalog.TierFree, catalog.FeatureAIScreening)
		require.True(t, ok)
		assert.True(t, g.Granted)
		require.NotNil(t, g.Limit)
		assert.Equal(t, int64(10), *g.Limit)

		*g.Limit = 99
		again, _ := c.Grant(catalog.TierFree, catalog.FeatureAIScreening)
		assert.Equal(t, int64(10), *again.Limit)

		_, ok = c.Grant(catalog.TierFree, catalog.FeatureSSO)
		assert.False(t, ok)

		_, ok = c.Grant("gold", catalog.FeatureCore)
		assert.False(t, ok)
	})

	t.Run("tier grants", func(t *testing.T) {
		t.Parallel()

		grants, err := c.TierGrants(catalog.TierEnterprise)
		require.NoError(t, err)
		assert.Len(t, grants, 3)
		assert.True(t, grants[catalog.FeatureAIScreening].Unlimited())

		_, err = c.TierGrants("gold")
		assert.ErrorIs(t, err, catalog.ErrUnknownTier)
	})

	t.Run("require", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, c.Require(catalog.FeatureCore, catalog.FeatureSSO))
		err := c.Require(catalog.FeatureCore, catalog.FeatureAuditLog)
		assert.ErrorIs(t, err, catalog.ErrUnknownFeature)
		assert.Contains(t, err.Error(), "audit_log")
	})
}

func TestDefault(t *testing.T) {
	t.Parallel()

	c := catalog.Default()
	require.NoError(t, c.Require(catalog.KnownFeatures()...))

	core, ok := c.Grant(catalog.TierFree, catalog.FeatureCore)
	require.True(t, ok)
	assert.True(t, core.Granted)
	assert.True(t, core.Unlimited())

	ai, ok := c.Grant(catalog.TierFree, catalog.FeatureAIScreening)
	require.True(t, ok)
	assert.Equal(t, int64(10), *ai.Limit)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		src := `
default_tier: free
tiers: [free, pro]
features:
  - id: core
    name: Core
    type: always_on
    tiers:
      free: {granted: true}
      pro: {granted: true}
  - id: ai_screening
    name: AI screening
    type: freemium
    tiers:
      free: {granted: true, limit: 10}
      pro: {granted: true, limit: null}
`
		c, err := catalog.LoadYAML(strings.NewReader(src))
		require.NoError(t, err)

		defs := c.ListDefinitions()
		require.Len(t, defs, 2)
		assert.Equal(t, catalog.FeatureAIScreening, defs[1].ID)
		assert.True(t, defs[1].UsageLimited())

		free, _ := c.Grant(catalog.TierFree, catalog.FeatureAIScreening)
		assert.Equal(t, int64(10), *free.Limit)
		pro, _ := c.Grant(catalog.TierPro, catalog.FeatureAIScreening)
		assert.True(t, pro.Unlimited())
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		src := `
tiers: [free]
features:
  - id: core
    type: premium
`
		_, err := catalog.LoadYAML(strings.NewReader(src))
		assert.ErrorIs(t, err, catalog.ErrInvalidFeatureType)
	})

	t.Run("undeclared tier", func(t *testing.T) {
		t.Parallel()

		src := `
tiers: [free]
features:
  - id: core
    type: always_on
    tiers:
      gold: {granted: true}
`
		_, err := catalog.LoadYAML(strings.NewReader(src))
		assert.ErrorIs(t, err, catalog.ErrUnknownTier)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.LoadYAML(strings.NewReader("tiers: [free]\nplans: []\n"))
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadCatalog)
	})

	t.Run("shipped catalog file", func(t *testing.T) {
		t.Parallel()

		c, err := catalog.LoadFile("../../configs/catalog.yaml")
		require.NoError(t, err)
		assert.NoError(t, c.Require(catalog.KnownFeatures()...))
		assert.Equal(t, catalog.Default().ListDefinitions(), c.ListDefinitions())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.LoadFile("does-not-exist.yaml")
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadCatalog)
	})
}

func TestCompareTiers(t *testing.T) {
	t.Parallel()

	c := catalog.Default()

	t.Run("upgrade", func(t *testing.T) {
		t.Parallel()

		cmp, err := c.CompareTiers(catalog.TierFree, catalog.TierPro)
		require.NoError(t, err)
		assert.ElementsMatch(t, []catalog.FeatureID{
			catalog.FeatureCustomBranding, catalog.FeatureAPIAccess, catalog.FeatureAdvancedAnalytics,
		}, cmp.GainedFeatures)
		assert.Empty(t, cmp.LostFeatures)
		assert.Contains(t, cmp.IncreasedLimits, catalog.FeatureAIScreening)
		assert.False(t, cmp.HasDowngrades())
	})

	t.Run("downgrade", func(t *testing.T) {
		t.Parallel()

		cmp, err := c.CompareTiers(catalog.TierEnterprise, catalog.TierFree)
		require.NoError(t, err)
		assert.Contains(t, cmp.LostFeatures, catalog.FeatureSSO)
		change, ok := cmp.DecreasedLimits[catalog.FeatureAIScreening]
		require.True(t, ok)
		assert.Nil(t, change.From)
		assert.Equal(t, int64(10), *change.To)
		assert.True(t, cmp.HasDowngrades())
	})

	t.Run("unknown tier", func(t *testing.T) {
		t.Parallel()

		_, err := c.CompareTiers(catalog.TierFree, "gold")
		assert.ErrorIs(t, err, catalog.ErrUnknownTier)
	})
}
