// Package cli implements the dittodav command line: one cobra command per
// namespace operation, all sharing a Deps that holds the loaded
// configuration, the repository and the principal's backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/config"
	"github.com/marmos91/dittodav/pkg/namespace"
	"github.com/marmos91/dittodav/pkg/repository"
)

// Deps carries the state shared by every command of one invocation.
//
// Config and Repository may be preset (tests, the shell); anything left nil
// is created from the configuration file on first use.
type Deps struct {
	ConfigPath  string
	User        string
	BackendName string

	Config     *config.Config
	Repository repository.Repository
	Metrics    *config.MetricsResult

	session  repository.Session
	backend  *namespace.Backend
	ownsRepo bool
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &Deps{}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("Failed to close repository: %v", err)
		}
	}()

	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 130, err
		}
		return 1, err
	}
	return 0, nil
}

// Setup loads whatever is missing: configuration, logging, repository,
// metrics and finally the backend bound to the acting principal.
// Calling it again is a no-op.
func (d *Deps) Setup(ctx context.Context) error {
	if d.backend != nil {
		return nil
	}

	// ========================================================================
	// Step 1: Configuration and logging
	// ========================================================================

	if d.Config == nil {
		cfg, err := config.Load(d.ConfigPath)
		if err != nil {
			return err
		}
		d.Config = cfg

		if err := logger.Configure(cfg.Logging.LoggerConfig()); err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}
	}

	// ========================================================================
	// Step 2: Repository and backend roots
	// ========================================================================

	if d.Repository == nil {
		repo, err := config.CreateRepository(ctx, d.Config)
		if err != nil {
			return err
		}
		d.Repository = repo
		d.ownsRepo = true
	}

	if err := config.BootstrapBackends(ctx, d.Repository, d.Config); err != nil {
		return err
	}

	if d.Metrics == nil {
		d.Metrics = config.InitializeMetrics(d.Config)
	}

	// ========================================================================
	// Step 3: Principal session and backend
	// ========================================================================

	backendCfg := &d.Config.Backends[0]
	if d.BackendName != "" {
		var err error
		if backendCfg, err = d.Config.Backend(d.BackendName); err != nil {
			return err
		}
	}

	user := d.User
	if user == "" {
		user = d.Config.Repository.AdminUser
	}

	d.session = d.Repository.Open(user)
	backend, err := config.CreateBackend(d.session, backendCfg, d.Metrics.For(backendCfg.Name))
	if err != nil {
		_ = d.session.Close()
		d.session = nil
		return err
	}
	d.backend = backend

	logger.Debug("Backend %s ready for %s (root %s at %s)", backend.Name(), user, backend.RootPath(), backend.RootURL())
	return nil
}

// Backend returns the backend created by Setup.
func (d *Deps) Backend() *namespace.Backend {
	return d.backend
}

// Close releases the session, and the repository when Setup created it.
func (d *Deps) Close() error {
	var errs []error
	if d.session != nil {
		errs = append(errs, d.session.Close())
		d.session = nil
		d.backend = nil
	}
	if d.ownsRepo && d.Repository != nil {
		errs = append(errs, d.Repository.Close())
		d.Repository = nil
		d.ownsRepo = false
	}
	return errors.Join(errs...)
}
