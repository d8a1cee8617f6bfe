// Command aivodrive is the terminal client of the fleet API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/authz"
	"github.com/ukydev/aivodrive/internal/config"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/logging"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/services"
	"github.com/ukydev/aivodrive/internal/session"
)

// app holds the collaborators every command shares.
type app struct {
	cfg     *config.Config
	tokens  *session.FileTokenStore
	session *session.Manager

	auth        *services.AuthService
	vehicles    *services.VehicleService
	drivers     *services.DriverService
	trips       *services.TripService
	maintenance *services.MaintenanceService
	alerts      *services.AlertService
	reports     *services.ReportService

	mu        sync.Mutex
	loggedOut func()
}

// setup builds the collaborators from cfg.
func (a *app) setup(cfg *config.Config) error {
	tokens := session.NewFileTokenStore(cfg.TokenFile)
	client, err := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, tokens)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.tokens = tokens
	a.auth = services.NewAuthService(client)
	a.vehicles = services.NewVehicleService(client)
	a.drivers = services.NewDriverService(client)
	a.trips = services.NewTripService(client)
	a.maintenance = services.NewMaintenanceService(client)
	a.alerts = services.NewAlertService(client)
	a.reports = services.NewReportService(client)
	a.session = session.NewManager(tokens, a.auth, session.NavigatorFunc(a.navigate))
	return nil
}

func (a *app) navigate(path string) {
	log.WithField("path", path).Debug("Navigate")
	if path != authz.PathLogin {
		return
	}
	a.mu.Lock()
	fn := a.loggedOut
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// onLogout registers fn to run when the session is dropped.
func (a *app) onLogout(fn func()) {
	a.mu.Lock()
	a.loggedOut = fn
	a.mu.Unlock()
}

// enter restores the session and runs the route guard for path. It returns the
// acting user when path renders for them.
func (a *app) enter(ctx context.Context, path string) (lifecycle.Actor, error) {
	if err := a.session.RestoreSession(ctx); err != nil {
		log.WithError(err).Debug("No session restored")
	}
	state := a.session.Current()
	resolved, outcome := authz.Resolve(path, state.Viewer())
	switch {
	case outcome == authz.Render && resolved == path:
	case resolved == authz.PathLogin:
		return lifecycle.Actor{}, errNotLoggedIn
	default:
		return lifecycle.Actor{}, fmt.Errorf("%s is not available to the %s role", path, state.Role())
	}
	user, _ := a.session.User()
	return lifecycle.ActorFromUser(user), nil
}

var errNotLoggedIn = errors.New("not logged in, run 'aivodrive login' first")

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "aivodrive",
		Short:         "Manage the fleet: vehicles, drivers, trips and maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := cfg.LogLevel
			if verbose {
				level = "debug"
			} else if level == "info" {
				level = "warn"
			}
			logging.Setup(level, cfg.Environment, os.Stderr)
			return a.setup(cfg)
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		loginCmd(a), logoutCmd(a), whoamiCmd(a), passwdCmd(a), profileCmd(a),
		dashboardCmd(a), listCmd(a), deleteCmd(a),
		vehicleCmd(a), driverCmd(a), tripCmd(a), maintenanceCmd(a),
		alertsCmd(a), reportsCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe prefers the API's message over the transport detail.
func describe(err error) string {
	return apiclient.MessageOf(err)
}

func roleLabel(r models.Role) string {
	if r == "" {
		return "anonymous"
	}
	return string(r)
}
