package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core/alert"
	"github.com/trezcool/nabha/core/user"
)

type alertApi struct {
	usrSvc user.Service
	svc    alert.Service
}

func registerAlertAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authenticator, usrSvc user.Service, svc alert.Service) {
	api := alertApi{usrSvc: usrSvc, svc: svc}

	g.POST("/emergency-alert", api.raise, jwt, studentMiddleware())

	ag := g.Group("/emergency-alerts", jwt, teacherMiddleware())
	ag.GET("", api.active)
	ag.POST("/:id/resolve", api.resolve)
}

func (api *alertApi) raise(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	var data alert.NewAlert
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAlert")
	}

	a, err := api.svc.Raise(ctx.Request().Context(), student, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *alertApi) active(ctx echo.Context) error {
	alerts, err := api.svc.Active(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing alerts")
	}
	return ctx.JSON(http.StatusOK, alerts)
}

// resolve is idempotent: resolving a resolved alert returns it unchanged.
func (api *alertApi) resolve(ctx echo.Context) error {
	teacher, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	a, err := api.svc.Resolve(ctx.Request().Context(), ctx.Param("id"), teacher)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}
