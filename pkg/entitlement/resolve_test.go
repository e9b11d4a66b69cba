package entitlement_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/tenant"
)

func overrideVariants() map[string]*tenant.Override {
	on, off := tenant.Enable(true), tenant.Enable(false)
	return map[string]*tenant.Override{
		"none":      nil,
		"enable":    &on,
		"disable":   &off,
		"limit 5":   {Limit: catalog.Quota(5)},
		"limit 0":   {Limit: catalog.Quota(0)},
		"unlimited": {Unlimited: true},
	}
}

func TestResolve_NonUsageLimitedFeatures(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	for _, def := range cat.ListDefinitions() {
		if def.UsageLimited() {
			continue
		}
		for _, tier := range cat.Tiers() {
			grant, _ := cat.Grant(tier, def.ID)
			for name, o := range overrideVariants() {
				st := entitlement.Resolve(entitlement.Inputs{Definition: def, Grant: grant, Override: o, Used: 7})
				msg := fmt.Sprintf("%s/%s/%s", def.ID, tier, name)
				assert.Equal(t, st.Enabled, st.CanUse, msg)
				assert.False(t, st.UsageLimited, msg)
				assert.Nil(t, st.Used, msg)
				assert.Nil(t, st.Limit, msg)
				assert.Nil(t, st.Remaining, msg)
			}
		}
	}
}

func TestResolve_FiniteQuota(t *testing.T) {
	t.Parallel()

	def := catalog.Definition{ID: catalog.FeatureAIScreening, Type: catalog.TypeFreemium}
	for _, limit := range []int64{0, 1, 10} {
		for _, enabled := range []bool{true, false} {
			for used := int64(0); used <= 15; used++ {
				st := entitlement.Resolve(entitlement.Inputs{
					Definition: def,
					Grant:      catalog.Grant{Granted: enabled, Limit: catalog.Quota(limit)},
					Used:       used,
				})
				msg := fmt.Sprintf("limit=%d enabled=%v used=%d", limit, enabled, used)
				require.NotNil(t, st.Remaining, msg)
				require.NotNil(t, st.Used, msg)
				assert.Equal(t, max(limit-used, 0), *st.Remaining, msg)
				assert.Equal(t, used, *st.Used, msg)
				assert.Equal(t, enabled && used < limit, st.CanUse, msg)
				assert.Equal(t, enabled, st.Enabled, msg)
			}
		}
	}
}

func TestResolve_ZeroLimitNeverUsable(t *testing.T) {
	t.Parallel()

	def := catalog.Definition{ID: catalog.FeatureEmailSending, Type: catalog.TypeFreemium}
	on := tenant.Enable(true)

	st := entitlement.Resolve(entitlement.Inputs{
		Definition: def,
		Grant:      catalog.Grant{Granted: true, Limit: catalog.Quota(0)},
		Override:   &on,
	})
	assert.True(t, st.Enabled)
	assert.False(t, st.CanUse)
	assert.Equal(t, int64(0), *st.Remaining)

	st = entitlement.Resolve(entitlement.Inputs{
		Definition: def,
		Grant:      catalog.Grant{Granted: true},
		Override:   &tenant.Override{Limit: catalog.Quota(0)},
	})
	assert.False(t, st.CanUse, "override limit 0 replaces an unlimited tier")
}

func TestResolve_OverridePrecedence(t *testing.T) {
	t.Parallel()

	quotaDef := catalog.Definition{ID: catalog.FeatureAIScreening, Type: catalog.TypeFreemium}
	flagDef := catalog.Definition{ID: catalog.FeatureCustomBranding, Type: catalog.TypeAddon}

	t.Run("disable wins over tier grant", func(t *testing.T) {
		t.Parallel()

		off := tenant.Enable(false)
		st := entitlement.Resolve(entitlement.Inputs{Definition: flagDef, Grant: catalog.Grant{Granted: true}, Override: &off})
		assert.False(t, st.Enabled)
		assert.False(t, st.CanUse)
	})

	t.Run("enable wins over missing grant", func(t *testing.T) {
		t.Parallel()

		on := tenant.Enable(true)
		st := entitlement.Resolve(entitlement.Inputs{Definition: flagDef, Override: &on})
		assert.True(t, st.Enabled)
		assert.True(t, st.CanUse)
	})

	t.Run("limit replaces tier quota", func(t *testing.T) {
		t.Parallel()

		st := entitlement.Resolve(entitlement.Inputs{
			Definition: quotaDef,
			Grant:      catalog.Grant{Granted: true, Limit: catalog.Quota(10)},
			Override:   &tenant.Override{Limit: catalog.Quota(100)},
			Used:       50,
		})
		assert.True(t, st.CanUse)
		assert.Equal(t, int64(100), *st.Limit)
		assert.Equal(t, int64(50), *st.Remaining)
	})

	t.Run("unlimited override", func(t *testing.T) {
		t.Parallel()

		st := entitlement.Resolve(entitlement.Inputs{
			Definition: quotaDef,
			Grant:      catalog.Grant{Granted: true, Limit: catalog.Quota(10)},
			Override:   &tenant.Override{Unlimited: true},
			Used:       500,
		})
		assert.True(t, st.CanUse)
		assert.Nil(t, st.Limit)
		assert.Nil(t, st.Remaining)
		assert.Equal(t, int64(500), *st.Used)
	})

	t.Run("enabled-only override keeps tier quota", func(t *testing.T) {
		t.Parallel()

		on := tenant.Enable(true)
		st := entitlement.Resolve(entitlement.Inputs{
			Definition: quotaDef,
			Grant:      catalog.Grant{Granted: true, Limit: catalog.Quota(10)},
			Override:   &on,
			Used:       10,
		})
		assert.True(t, st.Enabled)
		assert.False(t, st.CanUse)
		assert.Equal(t, int64(10), *st.Limit)
	})
}

func TestResolve_UnlimitedQuota(t *testing.T) {
	t.Parallel()

	st := entitlement.Resolve(entitlement.Inputs{
		Definition: catalog.Definition{ID: catalog.FeatureJobPostings, Type: catalog.TypeFreemium},
		Grant:      catalog.Grant{Granted: true},
		Used:       1_000_000,
	})
	assert.True(t, st.UsageLimited)
	assert.True(t, st.CanUse)
	assert.Nil(t, st.Limit)
	assert.Nil(t, st.Remaining)
	assert.Equal(t, int64(1_000_000), *st.Used)
}
