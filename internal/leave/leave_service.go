package leave

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-hris-leave/internal/entitlement"
	"go-hris-leave/internal/events"
	"go-hris-leave/internal/holiday"
	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/contextutil"
	"go-hris-leave/internal/shared/counter"
	"go-hris-leave/internal/shared/lock"
	"go-hris-leave/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	OutcomeApplied            = "applied"
	OutcomeInvalid            = "invalid"
	OutcomeInvalidRange       = "invalid_range"
	OutcomeNoWorkingDays      = "no_working_days"
	OutcomeBalanceExceeded    = "balance_exceeded"
	OutcomeInProgress         = "in_progress"
	OutcomePersistenceFailure = "persistence_failure"
	OutcomeError              = "error"
)

type Service interface {
	// Apply validates, classifies and books a leave application in one
	// transaction. The applied hook runs after commit.
	Apply(ctx context.Context, actor Actor, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveRequestResponse, error)
}

// CalendarSource is satisfied by holiday.Service.
type CalendarSource interface {
	Calendar(ctx context.Context, companyID string, from, to time.Time) (*holiday.Calendar, error)
}

type MetricsRecorder interface {
	ObserveApply(outcome string, elapsed time.Duration)
}

// DefaultMaxRangeDays bounds one application when Config.MaxRangeDays is unset.
const DefaultMaxRangeDays = 366

type Config struct {
	WeekendDays  []time.Weekday
	AllowExceed  bool
	MaxRangeDays int
}

type Dependencies struct {
	Entitlements entitlement.Service
	Holidays     CalendarSource
	Workflow     workflow.Engine
	Counter      counter.Repository
	Locker       lock.Locker
	Hook         AppliedHook
	Metrics      MetricsRecorder
	Config       Config
	Now          func() time.Time
}

type noopMetrics struct{}

func (noopMetrics) ObserveApply(string, time.Duration) {}

type service struct {
	db           *sql.DB
	repo         Repository
	entitlements entitlement.Service
	holidays     CalendarSource
	engine       workflow.Engine
	counter      counter.Repository
	locker       lock.Locker
	hook         AppliedHook
	metrics      MetricsRecorder
	cfg          Config
	now          func() time.Time
	logger       *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}

	s := &service{
		db:           db,
		repo:         repo,
		entitlements: deps.Entitlements,
		holidays:     deps.Holidays,
		engine:       deps.Workflow,
		counter:      deps.Counter,
		locker:       deps.Locker,
		hook:         deps.Hook,
		metrics:      deps.Metrics,
		cfg:          deps.Config,
		now:          deps.Now,
		logger:       l,
	}
	if s.locker == nil {
		s.locker = lock.NewRedisLocker(nil, 0, l)
	}
	if s.hook == nil {
		s.hook = noopHook{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.cfg.MaxRangeDays <= 0 {
		s.cfg.MaxRangeDays = DefaultMaxRangeDays
	}
	if len(s.cfg.WeekendDays) == 0 {
		s.cfg.WeekendDays = DefaultWeekend
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type applyInput struct {
	companyID   uuid.UUID
	employeeID  uuid.UUID
	leaveTypeID uuid.UUID
	start       time.Time
	end         time.Time
	partialDays map[string]string
	comment     string
}

func (s *service) Apply(ctx context.Context, actor Actor, req ApplyLeaveRequest) (resp LeaveRequestResponse, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveApply(applyOutcome(err), time.Since(started))
	}()

	logger := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("actor_user_id", actor.UserID.String()),
	)
	logger.Debug("apply leave requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	in, err := validateApplyRequest(actor, req, s.cfg.MaxRangeDays)
	if err != nil {
		logger.Warn("apply leave validation failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	companyID := in.companyID.String()
	employeeID := in.employeeID.String()
	leaveTypeID := in.leaveTypeID.String()
	logger = logger.With(zap.String("employee_id", employeeID), zap.String("leave_type_id", leaveTypeID))

	leaveType, err := s.repo.FindLeaveType(ctx, companyID, leaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		logger.Error("apply leave leave type lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, employeeID)
	if err != nil {
		logger.Error("apply leave employee company check failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if !belongs {
		return LeaveRequestResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	calendar, err := s.holidays.Calendar(ctx, companyID, in.start, in.end)
	if err != nil {
		logger.Error("apply leave holiday calendar failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	days := BuildLeaves(ctx, BuildInput{
		Start:      in.start,
		End:        in.end,
		EmployeeID: employeeID,
		Actor: workflow.Actor{
			CompanyID:  companyID,
			EmployeeID: actor.EmployeeID.String(),
		},
		PartialDays: in.partialDays,
	}, NewDayClassifier(s.cfg.WeekendDays, calendar), workflow.NewResolver(s.engine, logger))

	if len(days) == 0 {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidRange
	}
	workdays, _ := partition(days)
	if len(workdays) == 0 {
		logger.Info("apply leave rejected, no working days")
		return LeaveRequestResponse{}, leaveerrors.ErrNoWorkingDays
	}

	release, err := s.locker.Obtain(ctx, lock.LeaveApplyKey(employeeID, leaveTypeID))
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			logger.Warn("apply leave lock held by another application")
			return LeaveRequestResponse{}, leaveerrors.ErrApplyInProgress
		}
		logger.Error("apply leave lock failed", zap.Error(err))
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeServiceUnavailable, "leave application temporarily unavailable", http.StatusServiceUnavailable)
	}
	defer release()

	lr, err := s.persist(ctx, logger, actor, in, days, workdays)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	lr.LeaveType = leaveType

	logger.Info("apply leave success",
		zap.String("leave_request_id", lr.ID.String()),
		zap.String("reference_no", lr.ReferenceNo),
	)

	s.notifyApplied(ctx, logger, lr, actor)

	return mapToResponse(*lr), nil
}

func (s *service) persist(
	ctx context.Context,
	logger *zap.Logger,
	actor Actor,
	in applyInput,
	days, workdays []Leave,
) (*LeaveRequest, error) {
	companyID := in.companyID.String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.persistFailed(logger, "begin tx", err)
	}
	defer tx.Rollback()

	entitlements := s.entitlements.WithTx(tx)
	result, err := entitlements.Reserve(ctx, entitlement.ReserveRequest{
		EmployeeID:  in.employeeID.String(),
		LeaveTypeID: in.leaveTypeID.String(),
		Days:        toEntitlementDays(workdays),
		AllowExceed: s.cfg.AllowExceed,
	})
	if err != nil {
		return nil, s.persistFailed(logger, "reserve entitlement", err)
	}
	if result == nil {
		logger.Info("apply leave rejected, balance exceeded",
			zap.String("requested_days", totalLength(workdays).String()),
		)
		return nil, leaveerrors.ErrBalanceExceeded
	}

	ref, err := s.counter.WithTx(tx).NextReference(ctx, companyID, counter.LeaveRequestSequence)
	if err != nil {
		return nil, s.persistFailed(logger, "next reference", err)
	}

	lr := &LeaveRequest{
		ID:          uuid.New(),
		CompanyID:   in.companyID,
		EmployeeID:  in.employeeID,
		LeaveTypeID: in.leaveTypeID,
		ReferenceNo: ref,
		CreatedBy:   actor.UserID,
		Days:        make([]Leave, 0, len(days)),
	}
	for _, d := range days {
		d.ID = uuid.New()
		d.LeaveRequestID = lr.ID
		d.CompanyID = in.companyID
		d.EmployeeID = in.employeeID
		d.LeaveTypeID = in.leaveTypeID
		lr.Days = append(lr.Days, d)
	}
	if in.comment != "" {
		comment := in.comment
		lr.Comment = &comment
	}

	qtx := s.repo.WithTx(tx)
	if err := qtx.SaveLeaveRequest(ctx, lr); err != nil {
		return nil, s.persistFailed(logger, "save leave request", err)
	}
	if err := entitlements.Record(ctx, lr.ID, result); err != nil {
		return nil, s.persistFailed(logger, "record entitlement usage", err)
	}

	if in.comment != "" {
		comment := LeaveRequestComment{
			ID:                  uuid.New(),
			LeaveRequestID:      lr.ID,
			Comment:             in.comment,
			CreatedByUserID:     actor.UserID,
			CreatedByEmployeeID: actor.EmployeeID,
			CreatedAt:           s.now(),
		}
		if err := qtx.SaveComment(ctx, &comment); err != nil {
			return nil, s.persistFailed(logger, "save comment", err)
		}
		lr.Comments = append(lr.Comments, comment)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.persistFailed(logger, "commit", err)
	}
	return lr, nil
}

func (s *service) persistFailed(logger *zap.Logger, step string, err error) error {
	mapped := mapPersistError(err)
	code, constraint := pgErrorFields(err)
	logger.Error("apply leave persist failed",
		zap.String("step", step),
		zap.String("pg_code", code),
		zap.String("pg_constraint", constraint),
		zap.Error(err),
	)
	return mapped
}

func (s *service) notifyApplied(ctx context.Context, logger *zap.Logger, lr *LeaveRequest, actor Actor) {
	event := events.LeaveAppliedEvent{
		EventType:      events.LeaveAppliedEventType,
		LeaveRequestID: lr.ID.String(),
		ReferenceNo:    lr.ReferenceNo,
		CompanyID:      lr.CompanyID.String(),
		EmployeeID:     lr.EmployeeID.String(),
		LeaveTypeID:    lr.LeaveTypeID.String(),
		StartDate:      lr.Days[0].Date.Format(dateLayout),
		EndDate:        lr.Days[len(lr.Days)-1].Date.Format(dateLayout),
		TotalDays:      totalLength(lr.Days).String(),
		Status:         requestStatus(lr.Days),
		AppliedBy:      actor.UserID.String(),
		RequestID:      contextutil.GetRequestID(ctx),
		OccurredAt:     s.now().UTC(),
	}
	if err := s.hook.OnLeaveApplied(ctx, event); err != nil {
		logger.Warn("leave applied hook failed",
			zap.String("leave_request_id", event.LeaveRequestID),
			zap.Error(err),
		)
	}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveRequestResponse, error) {
	requests, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrLeaveRequestNotFound
	}
	lr, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*lr), nil
}

func validateApplyRequest(actor Actor, req ApplyLeaveRequest, maxRangeDays int) (applyInput, error) {
	var in applyInput

	if actor.CompanyID == uuid.Nil {
		return in, leaveerrors.ErrInvalidCompanyID
	}
	if actor.UserID == uuid.Nil || actor.EmployeeID == uuid.Nil {
		return in, leaveerrors.ErrInvalidActorID
	}
	in.companyID = actor.CompanyID

	in.employeeID = actor.EmployeeID
	if req.EmployeeID != "" {
		id, err := uuid.Parse(req.EmployeeID)
		if err != nil {
			return in, leaveerrors.ErrInvalidEmployeeID
		}
		in.employeeID = id
	}

	leaveTypeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return in, leaveerrors.ErrInvalidLeaveTypeID
	}
	in.leaveTypeID = leaveTypeID

	if in.start, err = parseDate(req.StartDate); err != nil {
		return in, err
	}
	if in.end, err = parseDate(req.EndDate); err != nil {
		return in, err
	}
	if in.start.After(in.end) {
		return in, leaveerrors.ErrInvalidRange
	}
	if span := int(in.end.Sub(in.start)/(24*time.Hour)) + 1; span > maxRangeDays {
		return in, leaveerrors.ErrInvalidRange
	}

	in.partialDays = make(map[string]string, len(req.PartialDays))
	for _, p := range req.PartialDays {
		date, err := parseDate(p.Date)
		if err != nil {
			return in, err
		}
		if p.Period != PeriodMorning && p.Period != PeriodAfternoon {
			return in, leaveerrors.ErrInvalidPartialDay
		}
		if date.Before(in.start) || date.After(in.end) {
			return in, leaveerrors.ErrInvalidPartialDay
		}
		key := date.Format(dateLayout)
		if _, dup := in.partialDays[key]; dup {
			return in, leaveerrors.ErrInvalidPartialDay
		}
		in.partialDays[key] = p.Period
	}

	in.comment = strings.TrimSpace(req.Comment)
	return in, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func toEntitlementDays(days []Leave) []entitlement.Day {
	out := make([]entitlement.Day, 0, len(days))
	for _, d := range days {
		out = append(out, entitlement.Day{Date: d.Date, Length: d.LengthDays})
	}
	return out
}

// requestStatus is the status of the first working day.
func requestStatus(days []Leave) string {
	for _, d := range days {
		if d.IsWorkday() {
			return d.Status
		}
	}
	return StatusPendingApproval
}

func applyOutcome(err error) string {
	if err == nil {
		return OutcomeApplied
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return OutcomeError
	}
	switch appErr.Code {
	case leaveerrors.CodeInvalidRange:
		return OutcomeInvalidRange
	case leaveerrors.CodeNoWorkingDays:
		return OutcomeNoWorkingDays
	case leaveerrors.CodeBalanceExceeded:
		return OutcomeBalanceExceeded
	case leaveerrors.CodeApplyInProgress:
		return OutcomeInProgress
	case leaveerrors.CodePersistenceFailure:
		return OutcomePersistenceFailure
	case apperror.CodeInvalidInput, apperror.CodeNotFound:
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:          lr.ID.String(),
		CompanyID:   lr.CompanyID.String(),
		EmployeeID:  lr.EmployeeID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		ReferenceNo: lr.ReferenceNo,
		TotalDays:   totalLength(lr.Days),
		Comment:     lr.Comment,
		Days:        make([]LeaveDayResponse, 0, len(lr.Days)),
		Comments:    make([]LeaveCommentResponse, 0, len(lr.Comments)),
		CreatedBy:   lr.CreatedBy.String(),
		CreatedAt:   lr.CreatedAt,
	}
	if lr.LeaveType != nil {
		resp.LeaveTypeName = lr.LeaveType.Name
	}
	if len(lr.Days) > 0 {
		resp.StartDate = lr.Days[0].Date.Format(dateLayout)
		resp.EndDate = lr.Days[len(lr.Days)-1].Date.Format(dateLayout)
	}
	for _, d := range lr.Days {
		resp.Days = append(resp.Days, LeaveDayResponse{
			Date:         d.Date.Format(dateLayout),
			Status:       d.Status,
			StatusName:   StatusDisplayName(d.Status),
			LengthDays:   d.LengthDays,
			DurationType: d.DurationType,
		})
	}
	for _, c := range lr.Comments {
		resp.Comments = append(resp.Comments, LeaveCommentResponse{
			ID:                  c.ID.String(),
			Comment:             c.Comment,
			CreatedByUserID:     c.CreatedByUserID.String(),
			CreatedByEmployeeID: c.CreatedByEmployeeID.String(),
			CreatedAt:           c.CreatedAt,
		})
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	out := make([]LeaveRequestResponse, 0, len(requests))
	for _, lr := range requests {
		out = append(out, mapToResponse(lr))
	}
	return out
}
