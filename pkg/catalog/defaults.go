package catalog

// Default returns the built-in catalog of the recruiting product.
// Deployments can replace it with a YAML file (see LoadFile).
func Default() *Catalog {
	return MustNew(defaultDefinitions(), defaultTiers())
}

func defaultDefinitions() []Definition {
	return []Definition{
		{ID: FeatureCore, Name: "Applicant tracking", Description: "Jobs, candidates and pipelines", Type: TypeAlwaysOn},
		{ID: FeatureJobPostings, Name: "Job postings", Description: "Published job openings per month", Type: TypeFreemium},
		{ID: FeatureCandidateImport, Name: "Candidate import", Description: "Candidates imported from CSV or integrations per month", Type: TypeFreemium},
		{ID: FeatureAIScreening, Name: "AI screening", Description: "Automated resume screening runs per month", Type: TypeFreemium},
		{ID: FeatureEmailSending, Name: "Candidate emails", Description: "Emails sent to candidates per month", Type: TypeFreemium},
		{ID: FeatureCareersPage, Name: "Careers page", Description: "Hosted careers page", Type: TypeAlwaysOn},
		{ID: FeatureCustomBranding, Name: "Custom branding", Description: "Logo and colors on careers page and emails", Type: TypeAddon},
		{ID: FeatureAPIAccess, Name: "API access", Description: "REST API keys", Type: TypeAddon},
		{ID: FeatureAdvancedAnalytics, Name: "Advanced analytics", Description: "Funnel and time-to-hire reports", Type: TypeAddon},
		{ID: FeatureSSO, Name: "Single sign-on", Description: "SAML and OIDC login", Type: TypeEnterprise},
		{ID: FeatureAuditLog, Name: "Audit log", Description: "Exportable audit trail", Type: TypeEnterprise},
	}
}

func defaultTiers() []TierGrants {
	on := Grant{Granted: true}
	return []TierGrants{
		{
			Tier: TierFree,
			Grants: map[FeatureID]Grant{
				FeatureCore:            on,
				FeatureCareersPage:     on,
				FeatureJobPostings:     {Granted: true, Limit: Quota(3)},
				FeatureCandidateImport: {Granted: true, Limit: Quota(50)},
				FeatureAIScreening:     {Granted: true, Limit: Quota(10)},
				FeatureEmailSending:    {Granted: true, Limit: Quota(100)},
			},
		},
		{
			Tier: TierPro,
			Grants: map[FeatureID]Grant{
				FeatureCore:              on,
				FeatureCareersPage:       on,
				FeatureJobPostings:       {Granted: true, Limit: Quota(25)},
				FeatureCandidateImport:   {Granted: true, Limit: Quota(5000)},
				FeatureAIScreening:       {Granted: true, Limit: Quota(500)},
				FeatureEmailSending:      {Granted: true, Limit: Quota(10000)},
				FeatureCustomBranding:    on,
				FeatureAPIAccess:         on,
				FeatureAdvancedAnalytics: on,
			},
		},
		{
			Tier: TierEnterprise,
			Grants: map[FeatureID]Grant{
				FeatureCore:              on,
				FeatureCareersPage:       on,
				FeatureJobPostings:       on,
				FeatureCandidateImport:   on,
				FeatureAIScreening:       on,
				FeatureEmailSending:      on,
				FeatureCustomBranding:    on,
				FeatureAPIAccess:         on,
				FeatureAdvancedAnalytics: on,
				FeatureSSO:               on,
				FeatureAuditLog:          on,
			},
		},
	}
}
