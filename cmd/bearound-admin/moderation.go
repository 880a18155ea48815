// ABOUTME: users, reports, blocks, and feedback commands
// ABOUTME: Filters map onto the same query parameters the dashboard pages use

package main

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bearound/bearound-admin/internal/adminapi"
)

// listFlags binds page and limit plus named string filters.
type listFlags struct {
	page   int
	limit  int
	values map[string]*string
}

func bindList(cmd *cobra.Command, defLimit int, filters ...string) *listFlags {
	lf := &listFlags{values: map[string]*string{}}
	cmd.Flags().IntVar(&lf.page, "page", 1, "page number")
	cmd.Flags().IntVar(&lf.limit, "limit", defLimit, "rows per page")
	for _, name := range filters {
		lf.values[name] = cmd.Flags().String(flagName(name), "", "filter by "+flagName(name))
	}
	return lf
}

// flagName turns a query key like entityType into entity-type.
func flagName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (lf *listFlags) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(lf.page))
	q.Set("limit", strconv.Itoa(lf.limit))
	for k, v := range lf.values {
		if *v != "" {
			q.Set(k, *v)
		}
	}
	return q
}

func oneOf(field, v string, allowed []string) error {
	if v == "" || slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s", field, strings.Join(allowed, ", "))
}

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "List and moderate accounts"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
	}
	lf := bindList(list, adminapi.DefaultLimit, "search", "status", "premium")
	list.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		page, err := a.api.Users(cmd.Context(), adminapi.ParseUserFilter(lf.query()))
		if err != nil {
			return err
		}
		w := newTable(a.out)
		header(w, "ID", "USERNAME", "EMAIL", "STATUS", "PREMIUM", "JOINED")
		for _, u := range page.Items {
			row(w, u.ID, u.Username, u.Email, statusText(u.AccountStatus), onOff(u.IsPremium), day(u.CreatedAt))
		}
		pager(w, page.Pagination)
		return w.Flush()
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			d, err := a.api.UserDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "ID", d.User.ID)
			row(w, "Username", d.User.Username)
			row(w, "Name", d.User.Profile.Name)
			row(w, "Email", d.User.Email)
			row(w, "Status", statusText(d.User.AccountStatus))
			row(w, "Premium", onOff(d.User.IsPremium))
			row(w, "Joined", day(d.User.CreatedAt))
			row(w, "Last active", day(d.User.LastActiveAt))
			row(w, "Conversations", count(d.Stats.Conversations))
			row(w, "Requests sent", count(d.Stats.RequestsSent))
			row(w, "Requests received", count(d.Stats.RequestsReceived))
			row(w, "Reports against", count(d.Stats.ReportsAgainst))
			for _, p := range d.RecentPurchases {
				row(w, "Purchase", fmt.Sprintf("%s %s on %s (%s)", p.PackName, rupees(p.PricePaid), day(p.PurchasedAt), p.Status))
			}
			return w.Flush()
		},
	}

	var reason string
	status := &cobra.Command{
		Use:   "status <id> <active|suspended|deleted>",
		Short: "Change an account status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			next := args[1]
			if err := oneOf("status", next, adminapi.AccountStatuses); err != nil {
				return err
			}
			if reason == "" {
				reason = "Status changed to " + next + " by admin"
			}
			if err := a.api.UpdateUserStatus(cmd.Context(), args[0], adminapi.StatusUpdate{Status: next, Reason: reason}); err != nil {
				return err
			}
			a.success("User status updated")
			return nil
		},
	}
	status.Flags().StringVar(&reason, "reason", "", "reason recorded with the change")

	cmd.AddCommand(list, show, status)
	return cmd
}

func (a *app) reportsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reports", Short: "Review moderation reports"}

	list := &cobra.Command{Use: "list", Short: "List reports", Args: cobra.NoArgs}
	lf := bindList(list, adminapi.DefaultLimit, "status", "priority", "reason")
	list.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		page, err := a.api.Reports(cmd.Context(), adminapi.ParseReportFilter(lf.query()))
		if err != nil {
			return err
		}
		w := newTable(a.out)
		header(w, "ID", "REASON", "PRIORITY", "STATUS", "REPORTER", "REPORTED", "CREATED")
		for _, r := range page.Items {
			row(w, r.ID, r.Reason, r.Priority, statusText(r.Status), r.Reporter.Label(), r.ReportedUser.Label(), day(r.CreatedAt))
		}
		pager(w, page.Pagination)
		return w.Flush()
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			r, err := a.api.ReportDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "ID", r.ID)
			row(w, "Status", statusText(r.Status))
			row(w, "Reason", r.Reason)
			row(w, "Priority", r.Priority)
			row(w, "Reporter", r.Reporter.Label())
			row(w, "Reported", r.ReportedUser.Label())
			row(w, "Description", r.Description)
			row(w, "Content", r.ReportedContent.ContentSnapshot)
			if r.Resolution.Action != "" {
				row(w, "Resolution", r.Resolution.Action)
				row(w, "Notes", r.Resolution.Notes)
				row(w, "Reviewed by", r.ReviewedBy.Label())
			}
			return w.Flush()
		},
	}

	var action, notes string
	resolve := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if action == "" {
				return errors.New("--action is required")
			}
			if err := oneOf("action", action, adminapi.ResolveActions); err != nil {
				return err
			}
			if err := a.api.ResolveReport(cmd.Context(), args[0], adminapi.Resolution{Action: action, Notes: notes}); err != nil {
				return err
			}
			a.success("Report resolved successfully")
			return nil
		},
	}
	resolve.Flags().StringVar(&action, "action", "", "one of "+strings.Join(adminapi.ResolveActions, ", "))
	resolve.Flags().StringVar(&notes, "notes", "", "moderator notes")

	cmd.AddCommand(list, show, resolve)
	return cmd
}

func (a *app) blocksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "blocks", Short: "Inspect and remove user blocks"}

	list := &cobra.Command{Use: "list", Short: "List blocks", Args: cobra.NoArgs}
	lf := bindList(list, adminapi.DefaultLimit, "reason", "source", "search")
	list.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		page, err := a.api.Blocks(cmd.Context(), adminapi.ParseBlockFilter(lf.query()))
		if err != nil {
			return err
		}
		w := newTable(a.out)
		header(w, "ID", "BLOCKER", "BLOCKED", "REASON", "SOURCE", "CREATED")
		for _, b := range page.Items {
			row(w, b.ID, b.Blocker.Label(), b.Blocked.Label(), b.Reason, b.Source, day(b.CreatedAt))
		}
		pager(w, page.Pagination)
		return w.Flush()
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			b, err := a.api.BlockDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "ID", b.ID)
			row(w, "Blocker", b.Blocker.Label())
			row(w, "Blocked", b.Blocked.Label())
			row(w, "Reason", b.Reason)
			row(w, "Source", b.Source)
			row(w, "Created", day(b.CreatedAt))
			return w.Flush()
		},
	}

	var reason string
	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if strings.TrimSpace(reason) == "" {
				return errors.New("--reason is required")
			}
			if err := a.api.RemoveBlock(cmd.Context(), args[0], reason); err != nil {
				return err
			}
			a.success("Block removed successfully")
			return nil
		},
	}
	remove.Flags().StringVar(&reason, "reason", "", "why the block is removed")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show block counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			s, err := a.api.BlockStats(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "Total", count(s.TotalBlocks))
			row(w, "Today", count(s.BlocksToday))
			row(w, "Last 7 days", count(s.BlocksLast7Days))
			for _, src := range adminapi.BlockSources {
				if n, ok := s.BySource[src]; ok {
					row(w, "From "+src, count(n))
				}
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list, show, remove, stats)
	return cmd
}

func (a *app) feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "feedback", Short: "Triage user feedback"}

	list := &cobra.Command{Use: "list", Short: "List feedback", Args: cobra.NoArgs}
	lf := bindList(list, adminapi.DefaultLimit, "status", "type")
	list.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		page, err := a.api.Feedback(cmd.Context(), adminapi.ParseFeedbackFilter(lf.query()))
		if err != nil {
			return err
		}
		w := newTable(a.out)
		header(w, "ID", "TYPE", "SUBJECT", "STATUS", "PRIORITY", "FROM", "CREATED")
		for _, f := range page.Items {
			row(w, f.ID, f.Type, f.Subject, statusText(f.Status), f.Priority, f.User.Label(), day(f.CreatedAt))
		}
		pager(w, page.Pagination)
		return w.Flush()
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one feedback item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			f, err := a.api.FeedbackDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "ID", f.ID)
			row(w, "Subject", f.Subject)
			row(w, "Type", f.Type)
			row(w, "Status", statusText(f.Status))
			row(w, "Priority", f.Priority)
			row(w, "From", f.User.Label())
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\n%s\n", f.Message)
			for _, n := range f.AdminNotes {
				fmt.Fprintf(a.out, "\n[%s] %s: %s\n", day(n.AddedAt), n.AddedBy.Label(), n.Note)
			}
			return nil
		},
	}

	var u adminapi.FeedbackUpdate
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change status or priority, or add a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if u == (adminapi.FeedbackUpdate{}) {
				return errors.New("nothing to update: pass --status, --priority, --note, or --resolution")
			}
			if err := oneOf("status", u.Status, adminapi.FeedbackStatuses); err != nil {
				return err
			}
			if err := oneOf("priority", u.Priority, adminapi.FeedbackPriorities); err != nil {
				return err
			}
			if err := a.api.UpdateFeedback(cmd.Context(), args[0], u); err != nil {
				return err
			}
			a.success("Feedback updated successfully")
			return nil
		},
	}
	update.Flags().StringVar(&u.Status, "status", "", "one of "+strings.Join(adminapi.FeedbackStatuses, ", "))
	update.Flags().StringVar(&u.Priority, "priority", "", "one of "+strings.Join(adminapi.FeedbackPriorities, ", "))
	update.Flags().StringVar(&u.AdminNote, "note", "", "admin note to append")
	update.Flags().StringVar(&u.Resolution, "resolution", "", "resolution text")

	cmd.AddCommand(list, show, update)
	return cmd
}
