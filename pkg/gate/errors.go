package gate

import "errors"

var (
	ErrInvalidTenantID = errors.New("gate.errors.invalid_tenant_id")
	ErrMissingTenant   = errors.New("gate.errors.missing_tenant")
	ErrInvalidRole     = errors.New("gate.errors.invalid_role")
	ErrInvalidBody     = errors.New("gate.errors.invalid_body")
)
