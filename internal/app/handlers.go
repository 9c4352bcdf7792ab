package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/ntpu-course-master/internal/config"
	"github.com/garyellow/ntpu-course-master/internal/ctxutil"
	apperrors "github.com/garyellow/ntpu-course-master/internal/errors"
	"github.com/garyellow/ntpu-course-master/internal/modules/course"
	"github.com/garyellow/ntpu-course-master/internal/sentry"
)

// periodQuery is the optional year/semester filter.
type periodQuery struct {
	Year     *int `form:"year"`
	Semester *int `form:"semester"`
}

type textQuery struct {
	Q     *string `form:"q" binding:"required"`
	Limit *int    `form:"limit"`
}

type byClassQuery struct {
	Department *string `form:"department" binding:"required"`
	ClassName  *string `form:"class_name" binding:"required"`
	Year       *int    `form:"year" binding:"required"`
	Semester   *int    `form:"semester" binding:"required"`
}

// failureMessages holds the "detail" returned for unexpected failures.
var failureMessages = map[string]string{
	course.OpListAll:     config.MsgListFailed,
	course.OpSearch:      config.MsgSearchFailed,
	course.OpByClass:     config.MsgByClassFailed,
	course.OpRecommend:   config.MsgRecommendFailed,
	course.OpHistory:     config.MsgHistoryFailed,
	course.OpStats:       config.MsgStatsFailed,
	course.OpDetail:      config.MsgDetailFailed,
	course.OpDepartments: config.MsgDepartmentFailed,
}

func (a *Application) listAll(c *gin.Context) {
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		a.fail(c, invalid("query", err))
		return
	}
	res, err := a.courses.ListAll(c.Request.Context(), q.Year, q.Semester)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *Application) search(c *gin.Context) {
	q, limit, err := a.bindTextQuery(c, config.DefaultSearchLimit)
	if err != nil {
		a.fail(c, err)
		return
	}
	res, err := a.courses.Search(c.Request.Context(), q, limit)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *Application) history(c *gin.Context) {
	q, limit, err := a.bindTextQuery(c, config.DefaultHistoryLimit)
	if err != nil {
		a.fail(c, err)
		return
	}
	res, err := a.courses.History(c.Request.Context(), q, limit)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *Application) byClass(c *gin.Context) {
	var q byClassQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		a.fail(c, invalid("query", err))
		return
	}
	res, err := a.courses.ByClass(c.Request.Context(), *q.Department, *q.ClassName, *q.Year, *q.Semester)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *Application) recommend(c *gin.Context) {
	req := course.NewRecommendRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, http.StatusUnprocessableEntity, err.Error())
		a.metrics.RecordHTTPError(string(apperrors.KindInvalid), ctxutil.Operation(c.Request.Context()))
		return
	}
	res, err := a.courses.Recommend(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *Application) stats(c *gin.Context) {
	st, err := a.courses.Stats(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (a *Application) detail(c *gin.Context) {
	rec, err := a.courses.GetByCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *Application) listDepartments(c *gin.Context) {
	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		a.fail(c, invalid("query", err))
		return
	}
	depts, err := a.courses.ListDepartments(c.Request.Context(), q.Year, q.Semester)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}

// bindTextQuery binds q and limit, applying the default limit and the
// configured upper bound.
func (a *Application) bindTextQuery(c *gin.Context, defaultLimit int) (string, int, error) {
	var q textQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return "", 0, invalid("query", err)
	}
	limit := defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit <= 0 || limit > a.cfg.MaxQueryLimit {
		return "", 0, apperrors.NewValidationError("limit", "must be between 1 and the configured maximum")
	}
	return *q.Q, limit, nil
}

func invalid(field string, err error) error {
	return apperrors.NewValidationError(field, err.Error())
}

// fail maps an engine error to an HTTP response. Not-found and validation
// outcomes are expected; anything else is logged and reported to Sentry.
func (a *Application) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	op := ctxutil.Operation(ctx)

	kind := apperrors.KindOf(err)
	a.metrics.RecordHTTPError(string(kind), op)
	switch kind {
	case apperrors.KindNoDataset:
		a.respondError(c, http.StatusNotFound, config.MsgNoDataset)
	case apperrors.KindNotFound:
		a.respondError(c, http.StatusNotFound, config.MsgCourseNotFound)
	case apperrors.KindInvalid:
		a.respondError(c, http.StatusBadRequest, err.Error())
	default:
		msg, ok := failureMessages[op]
		if !ok {
			msg = http.StatusText(http.StatusInternalServerError)
		}
		err = apperrors.WithOp(op, msg, err)
		a.logger.WithError(err).ErrorContext(ctx, "Request failed")
		sentry.CaptureException(ctx, err)
		a.respondError(c, http.StatusInternalServerError, apperrors.Detail(err))
	}
}

func (a *Application) respondError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
