package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/alert"
	"github.com/trezcool/nabha/core/assignment"
	"github.com/trezcool/nabha/core/content"
	"github.com/trezcool/nabha/core/progress"
	"github.com/trezcool/nabha/core/school"
	"github.com/trezcool/nabha/core/user"
)

type (
	Deps struct {
		Logger        core.Logger
		UserSvc       user.Service
		SchoolSvc     school.Service
		ContentSvc    content.Service
		ProgressSvc   progress.Service
		AssignmentSvc assignment.Service
		AlertSvc      alert.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		conf     *core.Config
		auth     *authenticator
		deps     *Deps
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

// NewServer returns the API server. `shutdown` receives SIGTERM when a handler hits a shutdown error; it may be nil.
func NewServer(conf *core.Config, shutdown chan os.Signal, deps *Deps) Server {
	s := &server{
		conf:     conf,
		auth:     newAuthenticator(conf),
		deps:     deps,
		app:      echo.New(),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.auth, s.deps.Logger, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	g := s.app.Group("/api")
	g.GET("/health", health)

	jwt := s.auth.middleware()

	registerUserAPI(g, jwt, s.auth, s.deps.UserSvc, s.deps.SchoolSvc)
	registerSchoolAPI(g, jwt, s.auth, s.deps.SchoolSvc)
	registerContentAPI(g, jwt, s.auth, s.deps.ContentSvc)
	registerProgressAPI(g, jwt, s.auth, s.deps.ProgressSvc)
	registerAnalyticsAPI(g, jwt, s.auth, s.deps.UserSvc, s.deps.ProgressSvc)
	registerAssignmentAPI(g, jwt, s.auth, s.deps.AssignmentSvc, s.deps.SchoolSvc)
	registerAlertAPI(g, jwt, s.auth, s.deps.UserSvc, s.deps.AlertSvc)
}

func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func (s *server) Start() error {
	return s.app.Start(s.conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
