package rbac

import "go-hris-leave/internal/domain"

type EnforceRequest = domain.EnforceRequest

type EnforceResponse = domain.EnforceResponse

type RolesResponse struct {
	EmployeeID string   `json:"employee_id"`
	Roles      []string `json:"roles"`
}
