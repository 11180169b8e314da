package entitlement

import (
	"context"
	"database/sql"
	"sort"

	entitlementerrors "go-hris-leave/internal/entitlement/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	WithTx(tx *sql.Tx) Service
	// Reserve allocates the requested days oldest entitlement first. It
	// returns nil, nil when the balance is short and exceeding is not allowed.
	Reserve(ctx context.Context, req ReserveRequest) (*Result, error)
	// Record books a reservation against the saved leave request.
	Record(ctx context.Context, leaveRequestID uuid.UUID, result *Result) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("entitlement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("entitlement.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) WithTx(tx *sql.Tx) Service {
	return &service{repo: s.repo.WithTx(tx), logger: s.logger}
}

func (s *service) Reserve(ctx context.Context, req ReserveRequest) (*Result, error) {
	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		return nil, entitlementerrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(req.LeaveTypeID); err != nil {
		return nil, entitlementerrors.ErrInvalidLeaveTypeID
	}

	days := make([]Day, 0, len(req.Days))
	for _, d := range req.Days {
		if d.Length.IsNegative() {
			return nil, entitlementerrors.ErrNegativeLength
		}
		if d.Length.IsZero() {
			continue
		}
		days = append(days, d)
	}
	result := &Result{Overdraft: decimal.Zero}
	if len(days) == 0 {
		return result, nil
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	entitlements, err := s.repo.FindForUpdate(ctx, req.EmployeeID, req.LeaveTypeID, days[0].Date, days[len(days)-1].Date)
	if err != nil {
		return nil, err
	}

	remaining := make([]decimal.Decimal, len(entitlements))
	for i, e := range entitlements {
		remaining[i] = e.Remaining()
	}

	for _, day := range days {
		need := day.Length
		for i := range entitlements {
			if need.IsZero() {
				break
			}
			if !entitlements[i].Covers(day.Date) || !remaining[i].IsPositive() {
				continue
			}
			take := decimal.Min(need, remaining[i])
			id := entitlements[i].ID
			result.Allocations = append(result.Allocations, Allocation{EntitlementID: &id, Date: day.Date, Length: take})
			remaining[i] = remaining[i].Sub(take)
			need = need.Sub(take)
		}
		if need.IsPositive() {
			result.Overdraft = result.Overdraft.Add(need)
			result.Allocations = append(result.Allocations, Allocation{Date: day.Date, Length: need})
		}
	}

	if result.Overdraft.IsPositive() && !req.AllowExceed {
		s.logger.Info("entitlement balance exceeded",
			zap.String("employee_id", req.EmployeeID),
			zap.String("leave_type_id", req.LeaveTypeID),
			zap.String("shortfall", result.Overdraft.String()),
		)
		return nil, nil
	}

	return result, nil
}

func (s *service) Record(ctx context.Context, leaveRequestID uuid.UUID, result *Result) error {
	if result == nil || len(result.Allocations) == 0 {
		return nil
	}

	used := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0)
	usages := make([]Usage, 0, len(result.Allocations))
	for _, a := range result.Allocations {
		usages = append(usages, Usage{
			ID:             uuid.New(),
			EntitlementID:  a.EntitlementID,
			LeaveRequestID: leaveRequestID,
			LeaveDate:      a.Date,
			LengthDays:     a.Length,
		})
		if a.EntitlementID == nil {
			continue
		}
		if _, ok := used[*a.EntitlementID]; !ok {
			order = append(order, *a.EntitlementID)
		}
		used[*a.EntitlementID] = used[*a.EntitlementID].Add(a.Length)
	}

	for _, id := range order {
		if err := s.repo.AddDaysUsed(ctx, id, used[id]); err != nil {
			return err
		}
	}
	return s.repo.CreateUsages(ctx, usages)
}
