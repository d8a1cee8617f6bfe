package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/notify"
	"github.com/ukydev/aivodrive/internal/session"
	"golang.org/x/sync/errgroup"
)

const pathNotifications = "/notifications"

func alertsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "alerts", Short: "Read and manage notifications"}

	var unreadOnly bool
	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), pathNotifications); err != nil {
				return err
			}
			p := models.ListParams{Page: page, Limit: limit, Sort: "timestamp", Desc: true}
			if unreadOnly {
				p.Filters = map[string]string{"read": "false"}
			}
			res, err := a.alerts.List(cmd.Context(), p)
			if err != nil {
				a.session.HandleError(err)
				return err
			}
			return printAlerts(cmd.OutOrStdout(), res.Items, res.Pagination)
		},
	}
	list.Flags().BoolVar(&unreadOnly, "unread", false, "only unread alerts")
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&limit, "limit", 20, "rows per page")

	read := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark one alert read, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), pathNotifications); err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			var err error
			switch {
			case all:
				err = a.alerts.MarkAllRead(cmd.Context())
			case len(args) == 1:
				err = a.alerts.MarkRead(cmd.Context(), args[0])
			default:
				return errors.New("an alert id or --all is required")
			}
			if err != nil {
				a.session.HandleError(err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Marked read")
			return nil
		},
	}
	read.Flags().Bool("all", false, "mark every alert read")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), pathNotifications); err != nil {
				return err
			}
			if err := a.alerts.Delete(cmd.Context(), args[0]); err != nil {
				a.session.HandleError(err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Alert deleted")
			return nil
		},
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print alerts as they are raised until interrupted or logged out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watchAlerts(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(list, read, remove, watch)
	return cmd
}

// watchAlerts streams alerts from the broker. It stops when ctx ends or when the
// session is dropped, including a logout from another terminal.
func (a *app) watchAlerts(ctx context.Context, out io.Writer) error {
	if _, err := a.enter(ctx, pathNotifications); err != nil {
		return err
	}
	if a.cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is not configured")
	}

	unread, err := a.alerts.UnreadCount(ctx)
	if err != nil {
		a.session.HandleError(err)
		return err
	}
	inbox := notify.NewInbox(unread)

	clientID := a.cfg.MQTTClientID
	if clientID == "" {
		clientID = "aivodrive-cli-" + uuid.NewString()[:8]
	}
	client, err := notify.Connect(a.cfg.MQTTBroker, clientID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.onLogout(cancel)

	fmt.Fprintf(out, "Watching %s (%d unread). Press Ctrl-C to stop.\n", a.cfg.MQTTTopic, unread)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notify.Subscribe(gctx, client, a.cfg.MQTTTopic, inbox, func(al models.Alert) {
			fmt.Fprintf(out, "%s [%s] %s: %s (%d unread)\n",
				al.Timestamp.Local().Format("15:04:05"), al.Priority.Chip().Label, al.Title, al.Message, inbox.Unread())
		})
	})
	g.Go(func() error {
		return session.Watch(gctx, a.tokens.Path(), a.session)
	})

	err = g.Wait()
	if !a.session.Current().Authenticated() {
		fmt.Fprintln(out, "Session ended")
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	log.WithError(err).Debug("Alert watch stopped")
	return err
}

func printAlerts(out io.Writer, alerts []models.Alert, p models.Pagination) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tPRIORITY\t\tTITLE\tMESSAGE")
	for _, al := range alerts {
		mark := ""
		if !al.Read {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			al.ID.Hex(), day(al.Timestamp), al.Priority.Chip().Label, mark, al.Title, al.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts")
	}
	fmt.Fprintf(out, "Page %d of %d, %d total\n", p.Page, max(p.TotalPages, 1), p.Total)
	return nil
}
