package holiday_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-hris-leave/internal/holiday"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(body, &env))
	return env
}

type fakeHolidayService struct {
	CreateFn    func(ctx context.Context, companyID string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error)
	GetByYearFn func(ctx context.Context, companyID string, year int) ([]holiday.HolidayResponse, error)
}

func (f *fakeHolidayService) Create(ctx context.Context, companyID string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	return f.CreateFn(ctx, companyID, req)
}

func (f *fakeHolidayService) GetByYear(ctx context.Context, companyID string, year int) ([]holiday.HolidayResponse, error) {
	return f.GetByYearFn(ctx, companyID, year)
}

func (f *fakeHolidayService) Calendar(ctx context.Context, companyID string, from, to time.Time) (*holiday.Calendar, error) {
	return holiday.NewCalendar(nil), nil
}

func TestHolidayHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeHolidayService{
			CreateFn: func(ctx context.Context, cid string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
				assert.Equal(t, companyID, cid)
				return holiday.HolidayResponse{ID: uuid.New().String(), CompanyID: cid, Date: req.Date, Name: req.Name}, nil
			},
		}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(`{"name":"Founders Day","date":"2026-03-04"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)

		holiday.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(`{"date":"2026-03-04"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		holiday.NewHandler(&fakeHolidayService{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}

func TestHolidayHandler_GetByYear(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeHolidayService{
			GetByYearFn: func(ctx context.Context, cid string, year int) ([]holiday.HolidayResponse, error) {
				assert.Equal(t, 2027, year)
				return []holiday.HolidayResponse{{Name: "New Year", Date: "2027-01-01"}}, nil
			},
		}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/holidays?year=2027", nil)

		holiday.NewHandler(svc).GetByYear(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid year", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/holidays?year=abc", nil)

		holiday.NewHandler(&fakeHolidayService{}).GetByYear(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
