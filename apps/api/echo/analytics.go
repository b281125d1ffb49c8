package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core/progress"
	"github.com/trezcool/nabha/core/user"
)

type analyticsApi struct {
	usrSvc user.Service
	svc    progress.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authenticator, usrSvc user.Service, svc progress.Service) {
	api := analyticsApi{usrSvc: usrSvc, svc: svc}

	ag := g.Group("/analytics", jwt)
	ag.GET("/class/:schoolId/:className", api.class, teacherMiddleware())
	ag.GET("/student/:studentId", api.student, ownProgressMiddleware())
}

func (api *analyticsApi) class(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	schoolID, className := ctx.Param("schoolId"), ctx.Param("className")

	roster, err := api.usrSvc.Roster(rctx, schoolID, className)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	sum, err := api.svc.ForClass(rctx, schoolID, className, roster)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *analyticsApi) student(ctx echo.Context) error {
	studentID := ctx.Param("studentId")
	records, err := api.svc.ForStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	return ctx.JSON(http.StatusOK, progress.Summarize(studentID, records))
}
