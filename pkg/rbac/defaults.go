package rbac

// Recruiting roles, lowest to highest.
const (
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// Recruiting permissions.
const (
	PermJobsRead    Permission = "jobs.read"
	PermJobsWrite   Permission = "jobs.write"
	PermJobsPublish Permission = "jobs.publish"
	PermJobsDelete  Permission = "jobs.delete"

	PermCandidatesRead   Permission = "candidates.read"
	PermCandidatesWrite  Permission = "candidates.write"
	PermCandidatesImport Permission = "candidates.import"
	PermCandidatesDelete Permission = "candidates.delete"

	PermApplicationsRead    Permission = "applications.read"
	PermApplicationsReview  Permission = "applications.review"
	PermApplicationsAdvance Permission = "applications.advance"

	PermEmailSend      Permission = "email.send"
	PermEmailTemplates Permission = "email.templates"

	PermTeamRead   Permission = "team.read"
	PermTeamInvite Permission = "team.invite"
	PermTeamRemove Permission = "team.remove"

	PermBillingRead   Permission = "billing.read"
	PermBillingManage Permission = "billing.manage"

	PermSettingsRead  Permission = "settings.read"
	PermSettingsWrite Permission = "settings.write"
)

// DefaultPermissions lists every recruiting permission.
func DefaultPermissions() []Permission {
	return []Permission{
		PermJobsRead, PermJobsWrite, PermJobsPublish, PermJobsDelete,
		PermCandidatesRead, PermCandidatesWrite, PermCandidatesImport, PermCandidatesDelete,
		PermApplicationsRead, PermApplicationsReview, PermApplicationsAdvance,
		PermEmailSend, PermEmailTemplates,
		PermTeamRead, PermTeamInvite, PermTeamRemove,
		PermBillingRead, PermBillingManage,
		PermSettingsRead, PermSettingsWrite,
	}
}

// DefaultDefinitions is the recruiting role table: viewer < member < admin < owner.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Role: RoleViewer,
			Rank: 10,
			Permissions: []Permission{
				PermJobsRead, PermCandidatesRead, PermApplicationsRead, PermTeamRead, PermSettingsRead,
			},
		},
		{
			Role: RoleMember,
			Rank: 20,
			Permissions: []Permission{
				PermJobsWrite, PermCandidatesWrite, PermCandidatesImport,
				PermApplicationsReview, PermApplicationsAdvance, PermEmailSend,
			},
			Inherits: []Role{RoleViewer},
		},
		{
			Role: RoleAdmin,
			Rank: 30,
			Permissions: []Permission{
				"jobs.*", "candidates.*", "applications.*", "email.*",
				PermTeamInvite, PermTeamRemove, PermBillingRead, PermSettingsWrite,
			},
			Inherits: []Role{RoleMember},
		},
		{
			Role:        RoleOwner,
			Rank:        40,
			Permissions: []Permission{Wildcard},
			Inherits:    []Role{RoleAdmin},
		},
	}
}

// Default returns the evaluator for the recruiting role table.
func Default() *Evaluator {
	return MustNewEvaluator(DefaultDefinitions(), DefaultPermissions())
}
