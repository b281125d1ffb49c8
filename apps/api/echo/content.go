package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core/content"
)

type contentApi struct {
	svc content.Service
}

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authenticator, svc content.Service) {
	api := contentApi{svc: svc}

	cg := g.Group("/content")
	cg.GET("", api.list)
	cg.GET("/categories", api.categories)
	cg.GET("/:id", api.retrieve)

	cg.POST("", api.create, jwt, teacherMiddleware())
	cg.POST("/categories", api.createCategory, jwt, teacherMiddleware())
}

func (api *contentApi) list(ctx echo.Context) error {
	var filter content.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []content.Item{})
	}
	items, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing content")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	item, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	item, err := api.svc.CreateItem(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) categories(ctx echo.Context) error {
	cats, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing categories")
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *contentApi) createCategory(ctx echo.Context) error {
	var data content.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cat)
}
