package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/client/transfers"
)

var statusColors = map[models.Status]*color.Color{
	models.StatusPending:    color.New(color.FgYellow),
	models.StatusAccepted:   color.New(color.FgCyan),
	models.StatusInProgress: color.New(color.FgCyan),
	models.StatusCompleted:  color.New(color.FgGreen),
	models.StatusRejected:   color.New(color.FgRed),
	models.StatusCancelled:  color.New(color.FgRed),
	models.StatusFailed:     color.New(color.FgRed, color.Bold),
}

func statusText(s models.Status) string {
	s = s.Normalize()
	if c, ok := statusColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func peer(t models.TransferSession) string {
	switch {
	case t.ReceiverUserID != "":
		return t.ReceiverUserID
	case t.ReceiverIP != "":
		return t.ReceiverIP
	default:
		return "-"
	}
}

// renderSessions prints items as a table. An empty list prints empty instead.
func renderSessions(w io.Writer, items []models.TransferSession, empty string) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "File", "Size", "Status", "Receiver", "Created")
	for _, t := range items {
		if err := table.Append([]string{
			t.ID,
			t.FileName,
			transfers.FormatBytes(t.FileSize),
			statusText(t.Status),
			peer(t),
			formatTime(t.CreatedAt),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// renderStats prints the aggregate numbers of the home view.
func renderStats(w io.Writer, st transfers.Stats) error {
	table := tablewriter.NewWriter(w)
	table.Header("Total", "Size", "Pending", "Accepted", "Completed", "Rejected", "Waiting for you")
	if err := table.Append([]string{
		fmt.Sprint(st.Total),
		transfers.FormatBytes(st.TotalBytes),
		fmt.Sprint(st.Pending),
		fmt.Sprint(st.Accepted),
		fmt.Sprint(st.Completed),
		fmt.Sprint(st.Rejected),
		fmt.Sprint(st.PendingMine),
	}); err != nil {
		return err
	}
	return table.Render()
}
