package workflow

import (
	"context"
	"fmt"
)

// RoleResolver lists the roles an employee holds in a company. rbac.Service
// satisfies it.
type RoleResolver interface {
	RolesFor(ctx context.Context, companyID, employeeID string) ([]string, error)
}

type Engine interface {
	AllowedTransitions(ctx context.Context, flow, fromState string, actor Actor, targetEmployeeID string) ([]Transition, error)
}

type engine struct {
	repo  Repository
	roles RoleResolver
}

func NewEngine(repo Repository, roles RoleResolver) Engine {
	return &engine{repo: repo, roles: roles}
}

func (e *engine) AllowedTransitions(
	ctx context.Context,
	flow, fromState string,
	actor Actor,
	targetEmployeeID string,
) ([]Transition, error) {
	roles, err := e.roles.RolesFor(ctx, actor.CompanyID, actor.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if actor.EmployeeID != "" && actor.EmployeeID == targetEmployeeID {
		roles = append(roles, RoleESS)
	}

	transitions, err := e.repo.FindTransitions(ctx, flow, fromState, roles)
	if err != nil {
		return nil, fmt.Errorf("find transitions: %w", err)
	}
	return transitions, nil
}
