package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core/progress"
)

type progressApi struct {
	svc progress.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authenticator, svc progress.Service) {
	api := progressApi{svc: svc}

	pg := g.Group("/progress", jwt)
	pg.POST("", api.record, studentMiddleware())

	sg := pg.Group("/student/:studentId", ownProgressMiddleware())
	sg.GET("", api.forStudent)
	sg.GET("/summary", api.summary)
}

// ownProgressMiddleware keeps students on their own records; teachers and admins see everyone's.
func ownProgressMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.IsTeacher || claims.IsAdmin || claims.Subject == ctx.Param("studentId") {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// record takes the student from the session; any student_id in the body is ignored.
func (api *progressApi) record(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data progress.NewProgress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgress")
	}

	p, err := api.svc.Record(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *progressApi) forStudent(ctx echo.Context) error {
	records, err := api.svc.ForStudent(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *progressApi) summary(ctx echo.Context) error {
	studentID := ctx.Param("studentId")
	records, err := api.svc.ForStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	return ctx.JSON(http.StatusOK, progress.Summarize(studentID, records))
}
