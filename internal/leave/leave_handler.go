package leave

import (
	"net/http"

	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/middleware"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     redis.UniversalClient
	logger  *zap.Logger
}

// NewHandler takes the idempotency cache client. A nil rdb disables replay.
func NewHandler(service Service, rdb redis.UniversalClient, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func actorFromContext(c *gin.Context) (Actor, error) {
	companyID, err := uuid.Parse(c.GetString("company_id"))
	if err != nil {
		return Actor{}, leaveerrors.ErrInvalidCompanyID
	}
	userID, err := uuid.Parse(c.GetString("user_id_validated"))
	if err != nil {
		return Actor{}, leaveerrors.ErrInvalidActorID
	}
	employeeID, err := uuid.Parse(c.GetString("employee_id"))
	if err != nil {
		return Actor{}, leaveerrors.ErrInvalidActorID
	}
	return Actor{UserID: userID, EmployeeID: employeeID, CompanyID: companyID}, nil
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	defer middleware.ReleaseIdempotencyLock(c, h.rdb)

	actor, err := actorFromContext(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http apply leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	middleware.StoreIdempotentResponse(c, h.rdb, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetAll(c.Request.Context(), companyID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := response.PageParams(c)
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, meta)
}

func (h *Handler) GetById(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetByID(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
