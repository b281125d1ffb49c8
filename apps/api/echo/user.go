package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core/school"
	"github.com/trezcool/nabha/core/user"
)

var userOrderingFields = []string{"created_at", "name", "username", "email", "roll_number"}

type userApi struct {
	auth    *authenticator
	svc     user.Service
	schools school.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc user.Service, schools school.Service) {
	api := userApi{auth: auth, svc: svc, schools: schools}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/login/student", api.loginStudent)
	ug.POST("/logout", api.logout)
	ug.POST("/register", api.register)
	ug.POST("/register/student", api.registerStudent)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.GET("/me", api.me)
	ag.GET("", api.query, teacherMiddleware())

	g.GET("/students/class/:schoolId/:className", api.roster, jwt, teacherMiddleware())
}

type (
	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}

	usr, err := api.svc.Login(ctx.Request().Context(), data)
	return api.openSession(ctx, usr, err)
}

func (api *userApi) loginStudent(ctx echo.Context) error {
	var data user.StudentCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentCredentials")
	}

	usr, err := api.svc.LoginStudent(ctx.Request().Context(), data)
	return api.openSession(ctx, usr, err)
}

// openSession answers a login attempt; loginErr is the error the attempt ended with.
func (api *userApi) openSession(ctx echo.Context, usr user.User, loginErr error) error {
	if loginErr != nil {
		if errors.Cause(loginErr) == user.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return loginErr
	}
	token, err := api.auth.GenerateToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	ctx.SetCookie(api.auth.sessionCookie(token, usr.LastLogin.Add(api.auth.expiry)))
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) logout(ctx echo.Context) error {
	ctx.SetCookie(api.auth.sessionCookie("", time.Unix(0, 0)))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

// register opens student accounts; other roles are granted by admins.
func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Roles = user.StudentRoles

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) registerStudent(ctx echo.Context) error {
	var data user.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	rctx := ctx.Request().Context()
	if err := data.Validate(); err != nil {
		return err
	}
	if err := checkSchool(rctx, api.schools, "school_id", data.SchoolID); err != nil {
		return err
	}

	usr, err := api.svc.RegisterStudent(rctx, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) roster(ctx echo.Context) error {
	students, err := api.svc.Roster(ctx.Request().Context(), ctx.Param("schoolId"), ctx.Param("className"))
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, userOrderingFields...)

	users, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}
