package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core/assignment"
	"github.com/trezcool/nabha/core/school"
)

type assignmentApi struct {
	svc     assignment.Service
	schools school.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authenticator, svc assignment.Service, schools school.Service) {
	api := assignmentApi{svc: svc, schools: schools}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.list)
	ag.GET("/class/:schoolId/:className", api.forClass)
	ag.POST("/submit", api.submit, studentMiddleware())

	teacher := teacherMiddleware()
	ag.POST("", api.create, teacher)
	ag.GET("/teacher", api.forTeacher, teacher)
	ag.GET("/:id/submissions", api.submissions, teacher)
	ag.POST("/submissions/:id/grade", api.grade, teacher)
}

func (api *assignmentApi) list(ctx echo.Context) error {
	return api.listWith(ctx, assignment.Filter{})
}

func (api *assignmentApi) forClass(ctx echo.Context) error {
	return api.listWith(ctx, assignment.Filter{SchoolID: ctx.Param("schoolId"), ClassName: ctx.Param("className")})
}

// forTeacher lists the assignments created by the session's teacher.
func (api *assignmentApi) forTeacher(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return api.listWith(ctx, assignment.Filter{TeacherID: claims.Subject})
}

func (api *assignmentApi) listWith(ctx echo.Context, filter assignment.Filter) error {
	list, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(); err != nil {
		return err
	}
	if data.SchoolID != "" {
		if err := checkSchool(rctx, api.schools, "school_id", data.SchoolID); err != nil {
			return err
		}
	}

	a, err := api.svc.Create(rctx, claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

// submit takes the student from the session; any student_id in the body is ignored.
func (api *assignmentApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) submissions(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	a, err := api.svc.Get(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	subs, err := api.svc.Submissions(rctx, assignment.SubmissionFilter{AssignmentID: a.ID})
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	var data assignment.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	sub, err := api.svc.GradeSubmission(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
