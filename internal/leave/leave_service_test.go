package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-hris-leave/internal/entitlement"
	"go-hris-leave/internal/events"
	"go-hris-leave/internal/holiday"
	"go-hris-leave/internal/leave"
	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/contextutil"
	"go-hris-leave/internal/shared/counter"
	"go-hris-leave/internal/shared/lock"
	"go-hris-leave/internal/workflow"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	saveLeaveRequestFn   func(ctx context.Context, req *leave.LeaveRequest) error
	saveCommentFn        func(ctx context.Context, c *leave.LeaveRequestComment) error
	findLeaveTypeFn      func(ctx context.Context, companyID, id string) (*leave.LeaveType, error)
	employeeBelongsFn    func(ctx context.Context, companyID, employeeID string) (bool, error)
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]leave.LeaveRequest, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error)

	saved    []*leave.LeaveRequest
	comments []*leave.LeaveRequestComment
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) SaveLeaveRequest(ctx context.Context, req *leave.LeaveRequest) error {
	if f.saveLeaveRequestFn != nil {
		if err := f.saveLeaveRequestFn(ctx, req); err != nil {
			return err
		}
	}
	f.saved = append(f.saved, req)
	return nil
}

func (f *fakeLeaveRepository) SaveComment(ctx context.Context, c *leave.LeaveRequestComment) error {
	if f.saveCommentFn != nil {
		if err := f.saveCommentFn(ctx, c); err != nil {
			return err
		}
	}
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeLeaveRepository) FindLeaveType(ctx context.Context, companyID, id string) (*leave.LeaveType, error) {
	if f.findLeaveTypeFn != nil {
		return f.findLeaveTypeFn(ctx, companyID, id)
	}
	return &leave.LeaveType{ID: uuid.MustParse(id), CompanyID: uuid.MustParse(companyID), Name: "Annual"}, nil
}

func (f *fakeLeaveRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.employeeBelongsFn != nil {
		return f.employeeBelongsFn(ctx, companyID, employeeID)
	}
	return true, nil
}

func (f *fakeLeaveRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leave.LeaveRequest, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeEntitlements struct {
	reserveFn func(ctx context.Context, req entitlement.ReserveRequest) (*entitlement.Result, error)
	recordFn  func(ctx context.Context, leaveRequestID uuid.UUID, result *entitlement.Result) error

	reserveCalls []entitlement.ReserveRequest
	recorded     []uuid.UUID
}

func (f *fakeEntitlements) WithTx(tx *sql.Tx) entitlement.Service { return f }

func (f *fakeEntitlements) Reserve(ctx context.Context, req entitlement.ReserveRequest) (*entitlement.Result, error) {
	f.reserveCalls = append(f.reserveCalls, req)
	if f.reserveFn != nil {
		return f.reserveFn(ctx, req)
	}
	result := &entitlement.Result{Overdraft: decimal.Zero}
	for _, d := range req.Days {
		result.Allocations = append(result.Allocations, entitlement.Allocation{Date: d.Date, Length: d.Length})
	}
	return result, nil
}

func (f *fakeEntitlements) Record(ctx context.Context, leaveRequestID uuid.UUID, result *entitlement.Result) error {
	if f.recordFn != nil {
		return f.recordFn(ctx, leaveRequestID, result)
	}
	f.recorded = append(f.recorded, leaveRequestID)
	return nil
}

type fakeCalendarSource struct {
	holidays []holiday.Holiday
	err      error
	calls    []string
}

func (f *fakeCalendarSource) Calendar(ctx context.Context, companyID string, from, to time.Time) (*holiday.Calendar, error) {
	f.calls = append(f.calls, from.Format("2006-01-02")+".."+to.Format("2006-01-02"))
	if f.err != nil {
		return nil, f.err
	}
	return holiday.NewCalendar(f.holidays), nil
}

type fakeEngine struct {
	transitions []workflow.Transition
	calls       int
	lastActor   workflow.Actor
	lastTarget  string
}

func (f *fakeEngine) AllowedTransitions(ctx context.Context, flow, fromState string, actor workflow.Actor, targetEmployeeID string) ([]workflow.Transition, error) {
	f.calls++
	f.lastActor = actor
	f.lastTarget = targetEmployeeID
	return f.transitions, nil
}

type fakeCounter struct {
	next int64
	err  error
}

func (f *fakeCounter) WithTx(tx *sql.Tx) counter.Repository { return f }

func (f *fakeCounter) NextReference(ctx context.Context, companyID string, seq counter.Sequence) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	return seq.Format(f.next), nil
}

type fakeLocker struct {
	err      error
	keys     []string
	released int
}

func (f *fakeLocker) Obtain(ctx context.Context, key string) (lock.Release, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return func() { f.released++ }, nil
}

type fakeHook struct {
	err    error
	events []events.LeaveAppliedEvent
}

func (f *fakeHook) OnLeaveApplied(ctx context.Context, event events.LeaveAppliedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeMetrics struct {
	outcomes []string
}

func (f *fakeMetrics) ObserveApply(outcome string, elapsed time.Duration) {
	f.outcomes = append(f.outcomes, outcome)
}

type applyDeps struct {
	db           *sql.DB
	sqlMock      sqlmock.Sqlmock
	repo         *fakeLeaveRepository
	entitlements *fakeEntitlements
	calendar     *fakeCalendarSource
	engine       *fakeEngine
	counter      *fakeCounter
	locker       *fakeLocker
	hook         *fakeHook
	metrics      *fakeMetrics
	now          time.Time
	service      leave.Service
}

func setupApplyTest(t *testing.T) *applyDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := &applyDeps{
		db:           db,
		sqlMock:      sqlMock,
		repo:         &fakeLeaveRepository{},
		entitlements: &fakeEntitlements{},
		calendar:     &fakeCalendarSource{},
		engine: &fakeEngine{transitions: []workflow.Transition{
			{Flow: workflow.FlowLeave, State: workflow.StateInitial, Action: workflow.ActionApply, ResultingState: "PENDING APPROVAL"},
		}},
		counter: &fakeCounter{},
		locker:  &fakeLocker{},
		hook:    &fakeHook{},
		metrics: &fakeMetrics{},
		now:     time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC),
	}
	d.service = leave.NewService(db, d.repo, leave.Dependencies{
		Entitlements: d.entitlements,
		Holidays:     d.calendar,
		Workflow:     d.engine,
		Counter:      d.counter,
		Locker:       d.locker,
		Hook:         d.hook,
		Metrics:      d.metrics,
		Now:          func() time.Time { return d.now },
	})
	return d
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func newActor() leave.Actor {
	return leave.Actor{UserID: uuid.New(), EmployeeID: uuid.New(), CompanyID: uuid.New()}
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestLeaveService_Apply(t *testing.T) {
	ctx := context.Background()
	leaveTypeID := uuid.New().String()

	// 2026-03-02 is a Monday.
	t.Run("success five weekdays", func(t *testing.T) {
		d := setupApplyTest(t)
		actor := newActor()
		expectTx(t, d.sqlMock, true)

		resp, err := d.service.Apply(ctx, actor, leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		require.NoError(t, err)
		assert.Equal(t, actor.EmployeeID.String(), resp.EmployeeID)
		assert.Equal(t, "LR-000001", resp.ReferenceNo)
		assert.Equal(t, "Annual", resp.LeaveTypeName)
		assert.Equal(t, "2026-03-02", resp.StartDate)
		assert.Equal(t, "2026-03-06", resp.EndDate)
		assert.True(t, decimal.NewFromInt(5).Equal(resp.TotalDays))
		require.Len(t, resp.Days, 5)
		for _, day := range resp.Days {
			assert.Equal(t, leave.StatusPendingApproval, day.Status)
			assert.Equal(t, "Pending approval", day.StatusName)
			assert.Equal(t, leave.DurationFullDay, day.DurationType)
		}
		assert.Empty(t, resp.Comments)

		require.Len(t, d.repo.saved, 1)
		saved := d.repo.saved[0]
		for _, day := range saved.Days {
			assert.Equal(t, saved.ID, day.LeaveRequestID)
			assert.Equal(t, actor.EmployeeID, day.EmployeeID)
			assert.Equal(t, actor.CompanyID, day.CompanyID)
		}
		assert.Equal(t, []uuid.UUID{saved.ID}, d.entitlements.recorded)
		require.Len(t, d.entitlements.reserveCalls, 1)
		assert.Len(t, d.entitlements.reserveCalls[0].Days, 5)
		assert.Equal(t, 1, d.engine.calls)
		assert.Equal(t, []string{lock.LeaveApplyKey(actor.EmployeeID.String(), leaveTypeID)}, d.locker.keys)
		assert.Equal(t, 1, d.locker.released)
		assert.Equal(t, []string{leave.OutcomeApplied}, d.metrics.outcomes)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("success week with weekend and half day", func(t *testing.T) {
		d := setupApplyTest(t)
		actor := newActor()
		expectTx(t, d.sqlMock, true)

		resp, err := d.service.Apply(ctx, actor, leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-08",
			PartialDays: []leave.PartialDayRequest{{Date: "2026-03-06", Period: leave.PeriodAfternoon}},
		})

		require.NoError(t, err)
		require.Len(t, resp.Days, 7)
		assert.Equal(t, leave.DurationHalfDayAfternoon, resp.Days[4].DurationType)
		assert.Equal(t, leave.StatusWeekend, resp.Days[5].Status)
		assert.Equal(t, leave.StatusWeekend, resp.Days[6].Status)
		assert.True(t, decimal.NewFromFloat(4.5).Equal(resp.TotalDays))

		reserved := d.entitlements.reserveCalls[0].Days
		require.Len(t, reserved, 5)
		assert.True(t, decimal.NewFromFloat(0.5).Equal(reserved[4].Length))
	})

	t.Run("holiday is not charged", func(t *testing.T) {
		d := setupApplyTest(t)
		d.calendar.holidays = []holiday.Holiday{{Name: "Founders Day", Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}}
		expectTx(t, d.sqlMock, true)

		resp, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusHoliday, resp.Days[2].Status)
		assert.True(t, decimal.NewFromInt(4).Equal(resp.TotalDays))
		assert.Len(t, d.entitlements.reserveCalls[0].Days, 4)
	})

	t.Run("comment saved once with actor stamp", func(t *testing.T) {
		d := setupApplyTest(t)
		actor := newActor()
		expectTx(t, d.sqlMock, true)

		resp, err := d.service.Apply(ctx, actor, leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
			Comment:     "  family event  ",
		})

		require.NoError(t, err)
		require.Len(t, d.repo.comments, 1)
		c := d.repo.comments[0]
		assert.Equal(t, "family event", c.Comment)
		assert.Equal(t, actor.UserID, c.CreatedByUserID)
		assert.Equal(t, actor.EmployeeID, c.CreatedByEmployeeID)
		assert.Equal(t, d.now, c.CreatedAt)
		assert.Equal(t, d.repo.saved[0].ID, c.LeaveRequestID)
		require.Len(t, resp.Comments, 1)
		require.NotNil(t, resp.Comment)
		assert.Equal(t, "family event", *resp.Comment)
	})

	t.Run("blank comment is not saved", func(t *testing.T) {
		d := setupApplyTest(t)
		expectTx(t, d.sqlMock, true)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
			Comment:     "   ",
		})

		require.NoError(t, err)
		assert.Empty(t, d.repo.comments)
		assert.Nil(t, d.repo.saved[0].Comment)
	})

	t.Run("applying for another employee", func(t *testing.T) {
		d := setupApplyTest(t)
		actor := newActor()
		target := uuid.New().String()
		d.engine.transitions[0].ResultingState = "SCHEDULED"
		expectTx(t, d.sqlMock, true)

		resp, err := d.service.Apply(ctx, actor, leave.ApplyLeaveRequest{
			EmployeeID:  target,
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-03",
		})

		require.NoError(t, err)
		assert.Equal(t, target, resp.EmployeeID)
		assert.Equal(t, leave.StatusScheduled, resp.Days[0].Status)
		assert.Equal(t, actor.EmployeeID.String(), d.engine.lastActor.EmployeeID)
		assert.Equal(t, target, d.engine.lastTarget)
		assert.Equal(t, actor.UserID, d.repo.saved[0].CreatedBy)
	})

	t.Run("missing workflow falls back to pending approval", func(t *testing.T) {
		d := setupApplyTest(t)
		d.engine.transitions = nil
		expectTx(t, d.sqlMock, true)

		resp, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-04",
		})

		require.NoError(t, err)
		for _, day := range resp.Days {
			assert.Equal(t, leave.StatusPendingApproval, day.Status)
		}
		assert.Equal(t, 3, d.engine.calls)
	})

	t.Run("hook event published and hook failure ignored", func(t *testing.T) {
		d := setupApplyTest(t)
		d.hook.err = errors.New("outbox down")
		actor := newActor()
		expectTx(t, d.sqlMock, true)

		reqCtx := contextutil.WithRequestID(ctx, "req-1")
		resp, err := d.service.Apply(reqCtx, actor, leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-03",
		})

		require.NoError(t, err)
		require.Len(t, d.hook.events, 1)
		ev := d.hook.events[0]
		assert.Equal(t, events.LeaveAppliedEventType, ev.EventType)
		assert.Equal(t, resp.ID, ev.LeaveRequestID)
		assert.Equal(t, "2", ev.TotalDays)
		assert.Equal(t, leave.StatusPendingApproval, ev.Status)
		assert.Equal(t, "req-1", ev.RequestID)
		assert.Equal(t, actor.UserID.String(), ev.AppliedBy)
	})

	t.Run("negative all weekend skips entitlement", func(t *testing.T) {
		d := setupApplyTest(t)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-07",
			EndDate:     "2026-03-08",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNoWorkingDays)
		assert.Empty(t, d.entitlements.reserveCalls)
		assert.Empty(t, d.repo.saved)
		assert.Empty(t, d.locker.keys)
		assert.Empty(t, d.hook.events)
		assert.Equal(t, []string{leave.OutcomeNoWorkingDays}, d.metrics.outcomes)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative holidays cover every weekday", func(t *testing.T) {
		d := setupApplyTest(t)
		d.calendar.holidays = []holiday.Holiday{
			{Name: "Spring Festival", Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
			{Name: "Spring Festival Bridge", Date: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)},
		}

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-05",
			EndDate:     "2026-03-08",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNoWorkingDays)
		assert.Equal(t, []string{"2026-03-05..2026-03-08"}, d.calendar.calls)
		assert.Empty(t, d.entitlements.reserveCalls)
		assert.Empty(t, d.repo.saved)
		assert.Empty(t, d.locker.keys)
		assert.Empty(t, d.hook.events)
		assert.Equal(t, []string{leave.OutcomeNoWorkingDays}, d.metrics.outcomes)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative inverted range", func(t *testing.T) {
		d := setupApplyTest(t)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-06",
			EndDate:     "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)
		assert.Empty(t, d.entitlements.reserveCalls)
		assert.Equal(t, 0, d.engine.calls)
	})

	t.Run("negative balance exceeded", func(t *testing.T) {
		d := setupApplyTest(t)
		d.entitlements.reserveFn = func(ctx context.Context, req entitlement.ReserveRequest) (*entitlement.Result, error) {
			return nil, nil
		}
		expectTx(t, d.sqlMock, false)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrBalanceExceeded)
		assert.Empty(t, d.repo.saved)
		assert.Empty(t, d.repo.comments)
		assert.Empty(t, d.hook.events)
		assert.Equal(t, int64(0), d.counter.next)
		assert.Equal(t, 1, d.locker.released)
		assert.Equal(t, []string{leave.OutcomeBalanceExceeded}, d.metrics.outcomes)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative persistence failure keeps cause", func(t *testing.T) {
		d := setupApplyTest(t)
		cause := errors.New("disk full")
		d.repo.saveLeaveRequestFn = func(ctx context.Context, req *leave.LeaveRequest) error { return cause }
		expectTx(t, d.sqlMock, false)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
			Comment:     "note",
		})

		assertAppCode(t, err, leaveerrors.CodePersistenceFailure)
		assert.ErrorIs(t, err, cause)
		assert.Empty(t, d.repo.comments)
		assert.Empty(t, d.entitlements.recorded)
		assert.Empty(t, d.hook.events)
		assert.Equal(t, []string{leave.OutcomePersistenceFailure}, d.metrics.outcomes)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative comment failure rolls back", func(t *testing.T) {
		d := setupApplyTest(t)
		d.repo.saveCommentFn = func(ctx context.Context, c *leave.LeaveRequestComment) error {
			return errors.New("comment insert failed")
		}
		expectTx(t, d.sqlMock, false)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
			Comment:     "note",
		})

		assertAppCode(t, err, leaveerrors.CodePersistenceFailure)
		assert.Empty(t, d.hook.events)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative serialization failure maps to in progress", func(t *testing.T) {
		d := setupApplyTest(t)
		d.entitlements.reserveFn = func(ctx context.Context, req entitlement.ReserveRequest) (*entitlement.Result, error) {
			return nil, &pgconn.PgError{Code: "40001"}
		}
		expectTx(t, d.sqlMock, false)

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrApplyInProgress)
	})

	t.Run("negative lock held", func(t *testing.T) {
		d := setupApplyTest(t)
		d.locker.err = lock.ErrNotObtained

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrApplyInProgress)
		assert.Empty(t, d.entitlements.reserveCalls)
		assert.Equal(t, []string{leave.OutcomeInProgress}, d.metrics.outcomes)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative leave type not found", func(t *testing.T) {
		d := setupApplyTest(t)
		d.repo.findLeaveTypeFn = func(ctx context.Context, companyID, id string) (*leave.LeaveType, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeNotFound)
	})

	t.Run("negative employee outside company", func(t *testing.T) {
		d := setupApplyTest(t)
		d.repo.employeeBelongsFn = func(ctx context.Context, companyID, employeeID string) (bool, error) {
			return false, nil
		}

		_, err := d.service.Apply(ctx, newActor(), leave.ApplyLeaveRequest{
			EmployeeID:  uuid.New().String(),
			LeaveTypeID: leaveTypeID,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotInCompany)
	})

	t.Run("negative input", func(t *testing.T) {
		cases := []struct {
			name    string
			actor   leave.Actor
			req     leave.ApplyLeaveRequest
			wantErr error
			outcome string
		}{
			{"missing company", leave.Actor{UserID: uuid.New(), EmployeeID: uuid.New()}, leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "2026-03-02", EndDate: "2026-03-02"}, leaveerrors.ErrInvalidCompanyID, leave.OutcomeInvalid},
			{"missing actor", leave.Actor{CompanyID: uuid.New()}, leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "2026-03-02", EndDate: "2026-03-02"}, leaveerrors.ErrInvalidActorID, leave.OutcomeInvalid},
			{"bad employee", newActor(), leave.ApplyLeaveRequest{EmployeeID: "x", LeaveTypeID: leaveTypeID, StartDate: "2026-03-02", EndDate: "2026-03-02"}, leaveerrors.ErrInvalidEmployeeID, leave.OutcomeInvalid},
			{"bad leave type", newActor(), leave.ApplyLeaveRequest{LeaveTypeID: "x", StartDate: "2026-03-02", EndDate: "2026-03-02"}, leaveerrors.ErrInvalidLeaveTypeID, leave.OutcomeInvalid},
			{"bad date", newActor(), leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "02/03/2026", EndDate: "2026-03-02"}, leaveerrors.ErrInvalidDateFormat, leave.OutcomeInvalid},
			{"partial day outside range", newActor(), leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "2026-03-02", EndDate: "2026-03-03", PartialDays: []leave.PartialDayRequest{{Date: "2026-03-05", Period: leave.PeriodMorning}}}, leaveerrors.ErrInvalidPartialDay, leave.OutcomeInvalid},
			{"partial day twice", newActor(), leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "2026-03-02", EndDate: "2026-03-03", PartialDays: []leave.PartialDayRequest{{Date: "2026-03-02", Period: leave.PeriodMorning}, {Date: "2026-03-02", Period: leave.PeriodAfternoon}}}, leaveerrors.ErrInvalidPartialDay, leave.OutcomeInvalid},
			{"range longer than a year", newActor(), leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "0001-01-01", EndDate: "9999-12-31"}, leaveerrors.ErrInvalidRange, leave.OutcomeInvalidRange},
			{"range one day too long", newActor(), leave.ApplyLeaveRequest{LeaveTypeID: leaveTypeID, StartDate: "2026-01-01", EndDate: "2027-01-02"}, leaveerrors.ErrInvalidRange, leave.OutcomeInvalidRange},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				d := setupApplyTest(t)
				_, err := d.service.Apply(ctx, tc.actor, tc.req)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, d.repo.saved)
				assert.Empty(t, d.calendar.calls)
				assert.Equal(t, []string{tc.outcome}, d.metrics.outcomes)
			})
		}
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("success", func(t *testing.T) {
		d := setupApplyTest(t)
		d.repo.findAllByCompanyFn = func(ctx context.Context, cid string) ([]leave.LeaveRequest, error) {
			assert.Equal(t, companyID.String(), cid)
			return []leave.LeaveRequest{{
				ID:          uuid.New(),
				CompanyID:   companyID,
				ReferenceNo: "LR-000007",
				LeaveType:   &leave.LeaveType{Name: "Sick"},
				Days: []leave.Leave{
					{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), LengthDays: decimal.NewFromInt(1), Status: leave.StatusTaken},
					{Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), LengthDays: decimal.NewFromFloat(0.5), Status: leave.StatusTaken},
				},
			}}, nil
		}

		resp, err := d.service.GetAll(ctx, companyID.String())

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "Sick", resp[0].LeaveTypeName)
		assert.Equal(t, "2026-03-03", resp[0].EndDate)
		assert.True(t, decimal.NewFromFloat(1.5).Equal(resp[0].TotalDays))
	})

	t.Run("negative repo error", func(t *testing.T) {
		d := setupApplyTest(t)
		d.repo.findAllByCompanyFn = func(ctx context.Context, cid string) ([]leave.LeaveRequest, error) {
			return nil, errors.New("db down")
		}

		_, err := d.service.GetAll(ctx, companyID.String())
		assert.EqualError(t, err, "db down")
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		d := setupApplyTest(t)
		id := uuid.New()
		d.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*leave.LeaveRequest, error) {
			return &leave.LeaveRequest{ID: id, ReferenceNo: "LR-000002"}, nil
		}

		resp, err := d.service.GetByID(ctx, companyID, id.String())

		require.NoError(t, err)
		assert.Equal(t, id.String(), resp.ID)
		assert.Empty(t, resp.Days)
	})

	t.Run("negative not found", func(t *testing.T) {
		d := setupApplyTest(t)

		_, err := d.service.GetByID(ctx, companyID, uuid.New().String())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		d := setupApplyTest(t)

		_, err := d.service.GetByID(ctx, companyID, "nope")
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)
	})
}
