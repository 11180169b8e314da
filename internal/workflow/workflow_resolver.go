package workflow

import (
	"context"

	"go.uber.org/zap"
)

// Resolver finds the APPLY transition for one leave application. A resolver
// is meant to live for a single call: the first hit is memoized, misses are
// not, and it never reports an error to the caller.
type Resolver struct {
	engine Engine
	logger *zap.Logger

	resolved *Transition
}

func NewResolver(engine Engine, logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("workflow.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("workflow.resolver")
	}
	return &Resolver{engine: engine, logger: l}
}

func (r *Resolver) ResolveApply(ctx context.Context, flow string, actor Actor, targetEmployeeID string) (*Transition, bool) {
	if r.resolved != nil {
		return r.resolved, true
	}

	transitions, err := r.engine.AllowedTransitions(ctx, flow, StateInitial, actor, targetEmployeeID)
	if err != nil {
		r.logger.Error("workflow lookup failed",
			zap.String("flow", flow),
			zap.String("employee_id", targetEmployeeID),
			zap.Error(err),
		)
		return nil, false
	}

	for i := range transitions {
		if transitions[i].Action == ActionApply {
			t := transitions[i]
			r.resolved = &t
			return r.resolved, true
		}
	}

	r.logger.Error("no workflow item found for APPLY leave action",
		zap.String("flow", flow),
		zap.String("actor_employee_id", actor.EmployeeID),
		zap.String("employee_id", targetEmployeeID),
	)
	return nil, false
}
