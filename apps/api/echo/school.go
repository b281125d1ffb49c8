package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/school"
)

type schoolApi struct {
	svc school.Service
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authenticator, svc school.Service) {
	api := schoolApi{svc: svc}

	sg := g.Group("/schools", jwt, adminMiddleware())
	sg.GET("", api.list)
	sg.POST("", api.create)
}

func (api *schoolApi) list(ctx echo.Context) error {
	list, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing schools")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

// checkSchool reports an unknown school as a validation error on `field`.
func checkSchool(ctx context.Context, svc school.Service, field, id string) error {
	if _, err := svc.Get(ctx, id); err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return core.NewFieldError(field, err)
		}
		return err
	}
	return nil
}
