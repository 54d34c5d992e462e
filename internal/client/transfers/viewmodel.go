package transfers

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/ulak/internal/client/models"
)

// RecentLimit is the length of the recent-activity list.
const RecentLimit = 8

// Stats aggregates a transfer list.
type Stats struct {
	Total      int
	TotalBytes int64
	Pending    int
	Accepted   int
	Completed  int
	Rejected   int
	// PendingMine counts pending sessions addressed to the current user.
	PendingMine int
	// ByStatus counts every normalised status, including ones the fields
	// above do not cover.
	ByStatus map[models.Status]int
}

// View bundles everything the screens render from one list.
type View struct {
	Pending        []models.TransferSession
	Accepted       []models.TransferSession
	CompletedCount int
	Stats          Stats
	Recent         []models.TransferSession
}

func addressedTo(t models.TransferSession, userID string) bool {
	return userID != "" && t.ReceiverUserID == userID
}

// PendingFor returns the pending sessions addressed to userID.
func PendingFor(items []models.TransferSession, userID string) []models.TransferSession {
	out := []models.TransferSession{}
	for _, t := range items {
		if t.Status.Normalize() == models.StatusPending && addressedTo(t, userID) {
			out = append(out, t)
		}
	}
	return out
}

// AcceptedFor returns the accepted or completed sessions addressed to userID.
func AcceptedFor(items []models.TransferSession, userID string) []models.TransferSession {
	out := []models.TransferSession{}
	for _, t := range items {
		s := t.Status.Normalize()
		if (s == models.StatusAccepted || s == models.StatusCompleted) && addressedTo(t, userID) {
			out = append(out, t)
		}
	}
	return out
}

// CompletedCount counts the completed sessions in accepted.
func CompletedCount(accepted []models.TransferSession) int {
	n := 0
	for _, t := range accepted {
		if t.Status.Normalize() == models.StatusCompleted {
			n++
		}
	}
	return n
}

// ComputeStats aggregates items. Negative sizes count as zero.
func ComputeStats(items []models.TransferSession, userID string) Stats {
	st := Stats{Total: len(items), ByStatus: map[models.Status]int{}}
	for _, t := range items {
		s := t.Status.Normalize()
		st.ByStatus[s]++
		if t.FileSize > 0 {
			st.TotalBytes += t.FileSize
		}
		if s == models.StatusPending && addressedTo(t, userID) {
			st.PendingMine++
		}
	}
	st.Pending = st.ByStatus[models.StatusPending]
	st.Accepted = st.ByStatus[models.StatusAccepted]
	st.Completed = st.ByStatus[models.StatusCompleted]
	st.Rejected = st.ByStatus[models.StatusRejected]
	return st
}

// Recent returns at most n items, newest first. Items with equal timestamps
// keep their input order; items without a timestamp sort last.
func Recent(items []models.TransferSession, n int) []models.TransferSession {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b models.TransferSession) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.TransferSession{}
	}
	return sorted
}

// Compute derives the full view of items for userID.
func Compute(items []models.TransferSession, userID string) View {
	accepted := AcceptedFor(items, userID)
	return View{
		Pending:        PendingFor(items, userID),
		Accepted:       accepted,
		CompletedCount: CompletedCount(accepted),
		Stats:          ComputeStats(items, userID),
		Recent:         Recent(items, RecentLimit),
	}
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with base-1024 units, e.g. 1536 as "1.50 KB".
// Zero or negative counts render as "0 B".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}

	prec := 2
	switch {
	case v >= 100:
		prec = 0
	case v >= 10:
		prec = 1
	}
	return fmt.Sprintf("%.*f %s", prec, v, byteUnits[i])
}
