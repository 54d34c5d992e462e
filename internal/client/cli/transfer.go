package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/ulak/internal/client/routing"
	"github.com/dmitrijs2005/ulak/internal/client/transfers"
)

func homeCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show transfer statistics and recent activity",
		Args:  cobra.NoArgs,
		RunE:  run(get, routing.PathHome, (*App).home),
	}
}

func (a *App) home(ctx context.Context, cmd *cobra.Command, args []string) error {
	if err := a.transfers.Refresh(ctx); err != nil {
		return err
	}
	st := a.store.State()
	view := a.transfers.View(st.UserID)

	a.printf("Account: %s\n", displayID(st.UserID))
	if err := renderStats(a.out, view.Stats); err != nil {
		return err
	}
	a.println()
	a.println("Recent activity:")
	return renderSessions(a.out, view.Recent, "No transfers yet.")
}

func inboxCommand(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List transfers waiting for you and the ones you received",
		Args:  cobra.NoArgs,
		RunE:  run(get, routing.PathReceive, (*App).inbox),
	}
}

func (a *App) inbox(ctx context.Context, cmd *cobra.Command, args []string) error {
	if err := a.transfers.Refresh(ctx); err != nil {
		return err
	}
	view := a.transfers.View(a.store.State().UserID)

	a.printf("Waiting for you (%d):\n", len(view.Pending))
	if err := renderSessions(a.out, view.Pending, "Nothing is waiting."); err != nil {
		return err
	}
	a.println()
	a.printf("Received (%d, %d completed):\n", len(view.Accepted), view.CompletedCount)
	return renderSessions(a.out, view.Accepted, "Nothing received yet.")
}

func sendCommand(get appGetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [--user ID | --ip ADDR] FILE...",
		Short: "Send files to a user or an IP address",
		RunE:  run(get, routing.PathSend, (*App).send),
	}
	cmd.Flags().String("user", "", "receiver user id")
	cmd.Flags().String("ip", "", "receiver IP address")
	return cmd
}

func (a *App) send(ctx context.Context, cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	ip, _ := cmd.Flags().GetString("ip")

	ids, err := a.transfers.Send(ctx, transfers.SendRequest{
		ReceiverIP:     ip,
		ReceiverUserID: userID,
		Paths:          args,
	})
	for i, id := range ids {
		a.printf("Sent %s (session %s)\n", args[i], id)
	}
	if err != nil {
		return err
	}
	a.printf("%d file(s) sent.\n", len(ids))
	return nil
}

type transitionFunc func(ctx context.Context, id string) error

func transitionCommand(get appGetter, use, short, path, done string, pick func(transferService) transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: run(get, path, func(a *App, ctx context.Context, cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if err := pick(a.transfers)(ctx, id); err != nil {
				return err
			}
			a.printf("%s %s.\n", done, id)
			return nil
		}),
	}
}

func acceptCommand(get appGetter) *cobra.Command {
	return transitionCommand(get, "accept", "Accept a transfer waiting for you", routing.PathReceive, "Accepted",
		func(s transferService) transitionFunc { return s.Accept })
}

func rejectCommand(get appGetter) *cobra.Command {
	return transitionCommand(get, "reject", "Reject a transfer waiting for you", routing.PathReceive, "Rejected",
		func(s transferService) transitionFunc { return s.Reject })
}

func cancelCommand(get appGetter) *cobra.Command {
	return transitionCommand(get, "cancel", "Cancel a transfer you sent", routing.PathHome, "Cancelled",
		func(s transferService) transitionFunc { return s.Cancel })
}

func downloadCommand(get appGetter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download the file of an accepted transfer",
		Args:  cobra.ExactArgs(1),
		RunE:  run(get, routing.PathReceive, (*App).download),
	}
	cmd.Flags().StringP("name", "n", "", "file name to save as (default: the sent name)")
	return cmd
}

func (a *App) download(ctx context.Context, cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	name, _ := cmd.Flags().GetString("name")

	if name == "" {
		if _, ok := a.transfers.Find(id); !ok {
			if err := a.transfers.Refresh(ctx); err != nil {
				return err
			}
		}
	}

	location, err := a.transfers.Download(ctx, id, name, a.sink)
	if location != "" {
		a.printf("Saved to %s\n", location)
	}
	if err != nil {
		return fmt.Errorf("download %s: %w", id, err)
	}
	return nil
}
