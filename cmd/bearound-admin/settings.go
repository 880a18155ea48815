// ABOUTME: dashboard, analytics, activity, features, limits, settings, and premium commands
// ABOUTME: Read commands print tables; set commands send the whole object back

package main

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bearound/bearound-admin/internal/adminapi"
)

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show headline counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			d, err := a.api.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			o := d.Overview
			w := newTable(a.out)
			row(w, "Total users", count(o.TotalUsers))
			row(w, "Active users", count(o.ActiveUsers))
			row(w, "New today", count(o.NewUsersToday))
			row(w, "New last 7 days", count(o.NewUsersLast7Days))
			row(w, "Conversations", count(o.TotalConversations))
			row(w, "Requests", count(o.TotalRequests))
			row(w, "Pending reports", count(o.PendingReports))
			row(w, "App version", d.AppStatus.AppVersion)
			row(w, "Maintenance", onOff(d.AppStatus.MaintenanceMode))
			return w.Flush()
		},
	}
}

func (a *app) analyticsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show growth and moderation numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			f := adminapi.ParseAnalyticsFilter(url.Values{"days": {strconv.Itoa(days)}})
			an, err := a.api.Analytics(cmd.Context(), f)
			if err != nil {
				return err
			}
			w := newTable(a.out)
			fmt.Fprintf(w, "Last %d days\n", f.Days)
			row(w, "Total users", count(an.Overview.TotalUsers))
			row(w, "New users", count(an.Overview.NewUsers))
			row(w, "Active users", count(an.Overview.ActiveUsers))
			row(w, "Premium users", count(an.Overview.PremiumUsers))
			row(w, "Messages", count(an.Engagement.TotalMessages))
			row(w, "Requests", count(an.Engagement.TotalRequests))
			row(w, "Reports", fmt.Sprintf("%s (%s pending)", count(an.Moderation.TotalReports), count(an.Moderation.PendingReports)))
			row(w, "Feedback", fmt.Sprintf("%s (%s new)", count(an.Moderation.TotalFeedback), count(an.Moderation.NewFeedback)))
			for _, g := range an.Growth {
				row(w, g.Date, count(g.Count))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", adminapi.DefaultAnalyticsDays, "window in days")
	return cmd
}

func (a *app) activityCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "activity", Short: "Show the admin activity log", Args: cobra.NoArgs}
	lf := bindList(cmd, adminapi.DefaultActivityLimit, "action", "entityType")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		page, err := a.api.ActivityLogs(cmd.Context(), adminapi.ParseActivityFilter(lf.query()))
		if err != nil {
			return err
		}
		w := newTable(a.out)
		header(w, "WHEN", "ACTOR", "ACTION", "ENTITY", "RESULT")
		for _, l := range page.Items {
			row(w, day(l.CreatedAt), l.Actor.Label(), l.Action, l.EntityType+"/"+l.EntityID, l.Result)
		}
		pager(w, page.Pagination)
		return w.Flush()
	}
	return cmd
}

func (a *app) featuresCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "features", Short: "Show or set feature flags"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List feature flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			flags, err := a.api.FeatureFlags(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			for _, k := range flagKeys(flags) {
				row(w, k, onOff(flags[k]))
			}
			return w.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set <flag> <on|off>",
		Short: "Set one flag; the whole set is sent back",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			on, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			flags, err := a.api.FeatureFlags(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := flags[args[0]]; !ok && !slices.Contains(adminapi.FeatureFlagKeys, args[0]) {
				return fmt.Errorf("unknown flag %q", args[0])
			}
			if err := a.api.UpdateFeatureFlags(cmd.Context(), flags.With(args[0], on)); err != nil {
				return err
			}
			a.success("Feature flags updated")
			return nil
		},
	}

	cmd.AddCommand(list, set)
	return cmd
}

// flagKeys lists known flags first, then any others the API returned.
func flagKeys(flags adminapi.FeatureFlags) []string {
	keys := slices.Clone(adminapi.FeatureFlagKeys)
	var extra []string
	for k := range flags {
		if !slices.Contains(keys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func (a *app) limitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show content limits, moderation thresholds, and chat payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			l, err := a.api.Limits(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.api.UnrevealedChatPayment(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "Max photos", count(l.Limits.MaxPhotos))
			row(w, "Max bio length", count(l.Limits.MaxBioLength))
			row(w, "Max interests", count(l.Limits.MaxInterests))
			row(w, "Max message length", count(l.Limits.MaxMessageLength))
			row(w, "Request expiry days", count(l.Limits.RequestExpiryDays))
			row(w, "Auto-suspend after reports", count(l.Moderation.AutoSuspendReportCount))
			row(w, "AI moderation", onOff(l.Moderation.EnableAIModeration))
			row(w, "Chat payment", onOff(p.IsEnabled))
			row(w, "Free messages", count(p.FreeMessageLimit))
			row(w, "Price per message", rupees(p.PricePerMessageInPaisa))
			return w.Flush()
		},
	}
}

func (a *app) settingsCmd() *cobra.Command {
	var maintenance, message string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show app settings, or toggle maintenance mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if maintenance != "" || cmd.Flags().Changed("message") {
				var u adminapi.ConfigUpdate
				if maintenance != "" {
					on, err := parseSwitch(maintenance)
					if err != nil {
						return err
					}
					u.MaintenanceMode = &on
				}
				if cmd.Flags().Changed("message") {
					u.MaintenanceMessage = &message
				}
				if err := a.api.UpdateConfig(cmd.Context(), u); err != nil {
					return err
				}
				a.success("Configuration updated")
			}

			c, err := a.api.Config(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "App name", c.AppName)
			row(w, "App version", c.AppVersion)
			row(w, "Maintenance", onOff(c.MaintenanceMode))
			row(w, "Maintenance message", c.MaintenanceMessage)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&maintenance, "maintenance", "", "turn maintenance mode on or off")
	cmd.Flags().StringVar(&message, "message", "", "maintenance message")
	return cmd
}

func (a *app) premiumCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "premium", Short: "Manage premium mode, features, and plans"}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show premium status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			s, err := a.api.PremiumStatus(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			row(w, "Premium mode", onOff(s.IsPremiumEnabled))
			row(w, "Premium users", count(s.PremiumUsersCount))
			row(w, "Active plans", count(s.ActivePlans))
			return w.Flush()
		},
	}

	plans := &cobra.Command{
		Use:   "plans",
		Short: "List plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ps, err := a.api.PremiumPlans(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			header(w, "ID", "NAME", "PRICE", "DURATION", "ACTIVE")
			for _, p := range ps {
				duration := "lifetime"
				if p.DurationDays > 0 {
					duration = count(p.DurationDays) + " days"
				}
				row(w, p.PlanID, p.Name, rupees(p.PriceInPaisa), duration, onOff(p.IsActive))
			}
			return w.Flush()
		},
	}

	features := &cobra.Command{
		Use:   "features",
		Short: "List gated features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			fs, err := a.api.PremiumFeatures(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(a.out)
			header(w, "ID", "NAME", "FREE", "PREMIUM", "ENABLED")
			for _, f := range fs {
				row(w, f.FeatureID, f.Name, limit(f.FreeLimit), limit(f.PremiumLimit), onOff(f.IsEnabled))
			}
			return w.Flush()
		},
	}

	mode := &cobra.Command{
		Use:   "mode <on|off>",
		Short: "Turn premium gating on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			on, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			if err := a.api.TogglePremiumMode(cmd.Context(), on); err != nil {
				return err
			}
			a.success("Premium mode updated")
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle-feature <id>",
		Short: "Flip one gated feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if args[0] == "" {
				return errors.New("feature id is required")
			}
			if err := a.api.TogglePremiumFeature(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Feature toggled")
			return nil
		},
	}

	cmd.AddCommand(status, plans, features, mode, toggle)
	return cmd
}
