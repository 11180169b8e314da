package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	holidayerrors "go-hris-leave/internal/holiday/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	HolidayYearKeyPrefix = "holidays:year:"
	holidayCacheTTL      = 30 * time.Minute
)

func GetHolidayYearKey(companyID string, year int) string {
	return HolidayYearKeyPrefix + companyID + ":" + strconv.Itoa(year)
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateHolidayRequest) (HolidayResponse, error)
	GetByYear(ctx context.Context, companyID string, year int) ([]HolidayResponse, error)
	// Calendar returns a snapshot covering every year touched by [from, to].
	Calendar(ctx context.Context, companyID string, from, to time.Time) (*Calendar, error)
}

type service struct {
	repo   Repository
	rdb    redis.UniversalClient
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb redis.UniversalClient, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateHolidayRequest) (HolidayResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidCompanyID
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidDateFormat
	}

	exists, err := s.repo.ExistsOnDate(ctx, companyID, req.Date)
	if err != nil {
		return HolidayResponse{}, err
	}
	if exists {
		return HolidayResponse{}, holidayerrors.ErrHolidayAlreadyExists
	}

	h := &Holiday{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Error("create holiday persist failed",
			zap.String("company_id", companyID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return HolidayResponse{}, err
	}

	s.invalidate(ctx, companyID, h)
	return mapToResponse(*h), nil
}

func (s *service) invalidate(ctx context.Context, companyID string, h *Holiday) {
	if s.rdb == nil {
		return
	}
	// A recurring holiday shows up in every cached year, so drop them all.
	if h.Recurring {
		iter := s.rdb.Scan(ctx, 0, HolidayYearKeyPrefix+companyID+":*", 100).Iterator()
		for iter.Next(ctx) {
			if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				s.logger.Warn("invalidate holiday cache failed", zap.String("key", iter.Val()), zap.Error(err))
			}
		}
		if err := iter.Err(); err != nil {
			s.logger.Warn("scan holiday cache failed", zap.String("company_id", companyID), zap.Error(err))
		}
		return
	}
	key := GetHolidayYearKey(companyID, h.Date.Year())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("invalidate holiday cache failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *service) GetByYear(ctx context.Context, companyID string, year int) ([]HolidayResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, holidayerrors.ErrInvalidCompanyID
	}
	if year < 1 || year > 9999 {
		return nil, holidayerrors.ErrInvalidYear
	}
	holidays, err := s.loadYear(ctx, companyID, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(holidays), nil
}

// MaxCalendarYears caps how many calendar years one Calendar call loads.
const MaxCalendarYears = 3

func (s *service) Calendar(ctx context.Context, companyID string, from, to time.Time) (*Calendar, error) {
	if to.Before(from) {
		from, to = to, from
	}
	if to.Year()-from.Year() >= MaxCalendarYears {
		return nil, holidayerrors.ErrCalendarRangeTooLong
	}
	var all []Holiday
	for year := from.Year(); year <= to.Year(); year++ {
		holidays, err := s.loadYear(ctx, companyID, year)
		if err != nil {
			return nil, err
		}
		all = append(all, holidays...)
	}
	return NewCalendar(all), nil
}

func (s *service) loadYear(ctx context.Context, companyID string, year int) ([]Holiday, error) {
	cacheKey := GetHolidayYearKey(companyID, year)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var holidays []Holiday
			if err := json.Unmarshal([]byte(cached), &holidays); err == nil {
				return holidays, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("read holiday cache failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		holidays, err := s.repo.FindByCompanyYear(ctx, companyID, year)
		if err != nil {
			return nil, fmt.Errorf("find holidays for %d: %w", year, err)
		}
		if s.rdb != nil {
			if payload, err := json.Marshal(holidays); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, holidayCacheTTL).Err(); err != nil {
					s.logger.Warn("write holiday cache failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return holidays, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Holiday), nil
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID.String(),
		CompanyID: h.CompanyID.String(),
		Date:      h.Date.Format(dateLayout),
		Name:      h.Name,
		Recurring: h.Recurring,
	}
}

func mapToListResponse(holidays []Holiday) []HolidayResponse {
	resp := make([]HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, mapToResponse(h))
	}
	return resp
}
