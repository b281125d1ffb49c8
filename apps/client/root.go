package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/offline"
	logsvc "github.com/trezcool/nabha/services/logger"
	"github.com/trezcool/nabha/services/metrics"
	"github.com/trezcool/nabha/services/remote"
	"github.com/trezcool/nabha/storage/offline/inmem"
	"github.com/trezcool/nabha/storage/offline/sqlite"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	conf      *core.Config
	dataDir   string
	apiURL    string
	offline   bool
	ephemeral bool
	verbose   bool
}

func newRootCommand(conf *core.Config) *cobra.Command {
	opts := &rootOptions{conf: conf}

	cmd := &cobra.Command{
		Use:           "nabha",
		Short:         "Nabha offline learning agent",
		Long:          "Caches lessons and records progress locally, delivering writes to the Nabha API whenever it is reachable.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", conf.Offline.DataDir, "directory holding the local database and session")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", conf.Offline.APIBaseURL, "base URL of the Nabha API")
	cmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "start with the API reported unreachable")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep the local store in memory")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", conf.Debug, "debug logging")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newProgressCommand(opts))
	cmd.AddCommand(newSubmitCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newQueueCommand(opts))
	cmd.AddCommand(newContentCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))

	return cmd
}

// agent is the wiring behind every command.
type agent struct {
	out     io.Writer
	logger  core.Logger
	session session
	store   offline.Store
	remote  *remote.Client
	monitor *offline.Monitor
	metrics *metrics.SyncMetrics
	coord   *offline.Coordinator
}

func (opts *rootOptions) openAgent(cmd *cobra.Command) (*agent, error) {
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	a := &agent{
		out:     cmd.OutOrStdout(),
		logger:  logsvc.NewZerologLogger(cmd.ErrOrStderr(), level, true),
		metrics: metrics.NewSyncMetrics(),
	}

	sess, err := loadSession(opts.dataDir)
	if err != nil {
		return nil, err
	}
	a.session = sess

	if a.remote, err = remote.New(opts.apiURL, opts.conf.Offline.RequestTimeout, opts.conf.Server.SessionCookie); err != nil {
		return nil, err
	}
	if sess.Token != "" {
		a.remote.SetSession(sess.Token)
	}

	if opts.ephemeral {
		a.store = inmem.New()
	} else {
		a.store = sqlite.New(opts.dataDir)
	}
	if err := a.store.Init(cmd.Context()); err != nil {
		_ = a.store.Close()
		return nil, err
	}

	a.monitor = offline.NewMonitor(!opts.offline)
	a.metrics.SetOnline(!opts.offline)
	a.coord = offline.NewCoordinator(a.store, a.remote, a.monitor, a.logger, offline.WithMetrics(a.metrics))
	return a, nil
}

func (a *agent) close() {
	a.coord.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Error("closing local store", err)
	}
}

func (a *agent) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// studentID is the logged in user's ID, or explicit when nobody is logged in.
// The API records writes under the session's student, so any other explicit ID is refused.
func (a *agent) studentID(explicit string) (string, error) {
	switch {
	case a.session.UserID == "" && explicit == "":
		return "", errors.New("not logged in: run `nabha login` or pass --student")
	case a.session.UserID == "":
		return explicit, nil
	case explicit != "" && explicit != a.session.UserID:
		return "", errors.Errorf("logged in as %s (%s): --student %s is not allowed", a.session.Username, a.session.UserID, explicit)
	default:
		return a.session.UserID, nil
	}
}

// describeInvalid spells out the rejected fields of a validation error.
func describeInvalid(err error) error {
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fields := verr.FieldMap()
	if len(fields) == 0 {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+fields[name])
	}
	return errors.Errorf("%v: %s", err, strings.Join(msgs, "; "))
}

// runWithAgent opens an agent for the duration of fn.
func (opts *rootOptions) runWithAgent(fn func(ctx context.Context, a *agent, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.openAgent(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}
