package workflow_test

import (
	"context"
	"errors"
	"testing"

	"go-hris-leave/internal/workflow"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRepo struct {
	FindTransitionsFn func(ctx context.Context, flow, state string, roles []string) ([]workflow.Transition, error)
}

func (f *fakeRepo) FindTransitions(ctx context.Context, flow, state string, roles []string) ([]workflow.Transition, error) {
	return f.FindTransitionsFn(ctx, flow, state, roles)
}

type fakeRoles struct {
	roles []string
	err   error
}

func (f *fakeRoles) RolesFor(ctx context.Context, companyID, employeeID string) ([]string, error) {
	return f.roles, f.err
}

type countingEngine struct {
	calls       int
	transitions []workflow.Transition
	err         error
}

func (e *countingEngine) AllowedTransitions(ctx context.Context, flow, fromState string, actor workflow.Actor, target string) ([]workflow.Transition, error) {
	e.calls++
	return e.transitions, e.err
}

func TestEngine_AllowedTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("self service adds ESS role", func(t *testing.T) {
		repo := &fakeRepo{FindTransitionsFn: func(ctx context.Context, flow, state string, roles []string) ([]workflow.Transition, error) {
			assert.Equal(t, workflow.FlowLeave, flow)
			assert.Equal(t, workflow.StateInitial, state)
			assert.Equal(t, []string{"SUPERVISOR", workflow.RoleESS}, roles)
			return []workflow.Transition{{Action: workflow.ActionApply, ResultingState: "PENDING APPROVAL"}}, nil
		}}
		engine := workflow.NewEngine(repo, &fakeRoles{roles: []string{"SUPERVISOR"}})

		got, err := engine.AllowedTransitions(ctx, workflow.FlowLeave, workflow.StateInitial,
			workflow.Actor{CompanyID: "c-1", EmployeeID: "e-1"}, "e-1")

		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("acting for someone else keeps assigned roles only", func(t *testing.T) {
		repo := &fakeRepo{FindTransitionsFn: func(ctx context.Context, flow, state string, roles []string) ([]workflow.Transition, error) {
			assert.Equal(t, []string{"ADMIN"}, roles)
			return nil, nil
		}}
		engine := workflow.NewEngine(repo, &fakeRoles{roles: []string{"ADMIN"}})

		_, err := engine.AllowedTransitions(ctx, workflow.FlowLeave, workflow.StateInitial,
			workflow.Actor{CompanyID: "c-1", EmployeeID: "e-1"}, "e-2")

		assert.NoError(t, err)
	})

	t.Run("negative role lookup error", func(t *testing.T) {
		engine := workflow.NewEngine(&fakeRepo{}, &fakeRoles{err: errors.New("db down")})

		_, err := engine.AllowedTransitions(ctx, workflow.FlowLeave, workflow.StateInitial,
			workflow.Actor{CompanyID: "c-1", EmployeeID: "e-1"}, "e-1")

		assert.ErrorContains(t, err, "db down")
	})
}

func TestResolver_ResolveApply(t *testing.T) {
	ctx := context.Background()
	actor := workflow.Actor{CompanyID: "c-1", EmployeeID: "e-1"}

	t.Run("picks first APPLY and memoizes", func(t *testing.T) {
		engine := &countingEngine{transitions: []workflow.Transition{
			{Action: "CANCEL", ResultingState: "CANCELLED"},
			{Action: workflow.ActionApply, ResultingState: "PENDING APPROVAL"},
			{Action: workflow.ActionApply, ResultingState: "SCHEDULED"},
		}}
		resolver := workflow.NewResolver(engine)

		first, ok := resolver.ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")
		assert.True(t, ok)
		assert.Equal(t, "PENDING APPROVAL", first.ResultingState)

		second, ok := resolver.ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")
		assert.True(t, ok)
		assert.Same(t, first, second)
		assert.Equal(t, 1, engine.calls)
	})

	t.Run("miss is logged and not cached", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		engine := &countingEngine{}
		resolver := workflow.NewResolver(engine, zap.New(core))

		_, ok := resolver.ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")
		assert.False(t, ok)
		_, ok = resolver.ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")
		assert.False(t, ok)

		assert.Equal(t, 2, engine.calls)
		assert.Equal(t, 2, logs.FilterMessage("no workflow item found for APPLY leave action").Len())
	})

	t.Run("engine error is absorbed", func(t *testing.T) {
		engine := &countingEngine{err: errors.New("boom")}
		resolver := workflow.NewResolver(engine, zap.NewNop())

		got, ok := resolver.ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")

		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("separate resolvers do not share memo", func(t *testing.T) {
		engine := &countingEngine{transitions: []workflow.Transition{{Action: workflow.ActionApply, ResultingState: "SCHEDULED"}}}

		workflow.NewResolver(engine).ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")
		workflow.NewResolver(engine).ResolveApply(ctx, workflow.FlowLeave, actor, "e-1")

		assert.Equal(t, 2, engine.calls)
	})
}
