// ABOUTME: Read views for the dashboard pages
// ABOUTME: Each view fetches through the query cache and renders inside the chrome

package webadmin

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/bearound/bearound-admin/internal/adminapi"
	"github.com/bearound/bearound-admin/internal/querycache"
)

// widgetLimit caps the dashboard's recent-item lists.
const widgetLimit = 5

// handleRoot sends the index to the dashboard.
func (a *Admin) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// listQuery returns the request query without the page number, for links.
func listQuery(r *http.Request) url.Values {
	q := url.Values{}
	for k, v := range r.URL.Query() {
		if k != "page" {
			q[k] = v
		}
	}
	return q
}

type dashboardPage struct {
	Stats          *adminapi.Dashboard
	PendingReports []adminapi.Report
	NewFeedback    []adminapi.Feedback
}

func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := dashboardPage{}

	reports := adminapi.ReportFilter{Paging: adminapi.Paging{Page: 1, Limit: widgetLimit}, Status: "pending"}
	feedback := adminapi.FeedbackFilter{Paging: adminapi.Paging{Page: 1, Limit: widgetLimit}, Status: "new"}

	var g errgroup.Group
	g.Go(func() error {
		stats, err := querycache.Fetch(ctx, a.cache, key(ctx, "dashboard"), a.api.Dashboard)
		page.Stats = stats
		return err
	})
	g.Go(func() error {
		res, err := querycache.Fetch(ctx, a.cache, key(ctx, "reports", reports.Values().Encode()),
			func(ctx context.Context) (*adminapi.Page[adminapi.Report], error) {
				return a.api.Reports(ctx, reports)
			})
		if err == nil {
			page.PendingReports = res.Items
		}
		return nil
	})
	g.Go(func() error {
		res, err := querycache.Fetch(ctx, a.cache, key(ctx, "feedback", feedback.Values().Encode()),
			func(ctx context.Context) (*adminapi.Page[adminapi.Feedback], error) {
				return a.api.Feedback(ctx, feedback)
			})
		if err == nil {
			page.NewFeedback = res.Items
		}
		return nil
	})
	err := g.Wait()

	a.show(w, r, "dashboard.html", "Dashboard", page, err)
}

type usersPage struct {
	Filter     adminapi.UserFilter
	Query      url.Values
	Users      []adminapi.User
	Pagination adminapi.Pagination
	Statuses   []string
}

func (a *Admin) handleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := adminapi.ParseUserFilter(r.URL.Query())
	page := usersPage{Filter: f, Query: listQuery(r), Statuses: adminapi.AccountStatuses}

	res, err := querycache.Fetch(ctx, a.cache, key(ctx, "users", f.Values().Encode()),
		func(ctx context.Context) (*adminapi.Page[adminapi.User], error) {
			return a.api.Users(ctx, f)
		})
	if err == nil {
		page.Users = res.Items
		page.Pagination = res.Pagination
	}

	a.show(w, r, "users.html", "Users", page, err)
}

type userDetailPage struct {
	Details  *adminapi.UserDetails
	Statuses []string
}

func (a *Admin) handleUserDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	details, err := querycache.Fetch(ctx, a.cache, key(ctx, "user-details", id),
		func(ctx context.Context) (*adminapi.UserDetails, error) {
			return a.api.UserDetails(ctx, id)
		})

	a.show(w, r, "user_detail.html", "User", userDetailPage{Details: details, Statuses: adminapi.AccountStatuses}, err)
}

type reportsPage struct {
	Filter     adminapi.ReportFilter
	Query      url.Values
	Reports    []adminapi.Report
	Pagination adminapi.Pagination
	Statuses   []string
	Priorities []string
	Reasons    []string
}

func (a *Admin) handleReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := adminapi.ParseReportFilter(r.URL.Query())
	page := reportsPage{
		Filter:     f,
		Query:      listQuery(r),
		Statuses:   adminapi.ReportStatuses,
		Priorities: adminapi.ReportPriorities,
		Reasons:    adminapi.ReportReasons,
	}

	res, err := querycache.Fetch(ctx, a.cache, key(ctx, "reports", f.Values().Encode()),
		func(ctx context.Context) (*adminapi.Page[adminapi.Report], error) {
			return a.api.Reports(ctx, f)
		})
	if err == nil {
		page.Reports = res.Items
		page.Pagination = res.Pagination
	}

	a.show(w, r, "reports.html", "Reports", page, err)
}

type reportDetailPage struct {
	Report  *adminapi.Report
	Actions []string
}

func (a *Admin) handleReportDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	report, err := querycache.Fetch(ctx, a.cache, key(ctx, "report", id),
		func(ctx context.Context) (*adminapi.Report, error) {
			return a.api.ReportDetails(ctx, id)
		})

	a.show(w, r, "report_detail.html", "Report", reportDetailPage{Report: report, Actions: adminapi.ResolveActions}, err)
}

type blocksPage struct {
	Filter     adminapi.BlockFilter
	Query      url.Values
	Blocks     []adminapi.Block
	Pagination adminapi.Pagination
	Stats      *adminapi.BlockStats
	Reasons    []string
	Sources    []string
}

func (a *Admin) handleBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := adminapi.ParseBlockFilter(r.URL.Query())
	page := blocksPage{
		Filter:  f,
		Query:   listQuery(r),
		Reasons: adminapi.BlockReasons,
		Sources: adminapi.BlockSources,
	}

	var g errgroup.Group
	g.Go(func() error {
		res, err := querycache.Fetch(ctx, a.cache, key(ctx, "blocks", f.Values().Encode()),
			func(ctx context.Context) (*adminapi.Page[adminapi.Block], error) {
				return a.api.Blocks(ctx, f)
			})
		if err != nil {
			return err
		}
		page.Blocks = res.Items
		page.Pagination = res.Pagination
		return nil
	})
	g.Go(func() error {
		// Stats are decoration; the list still renders without them.
		stats, err := querycache.Fetch(ctx, a.cache, key(ctx, "blockStats"), a.api.BlockStats)
		if err == nil {
			page.Stats = stats
		}
		return nil
	})
	err := g.Wait()

	a.show(w, r, "blocks.html", "Blocks", page, err)
}

func (a *Admin) handleBlockDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	block, err := querycache.Fetch(ctx, a.cache, key(ctx, "block", id),
		func(ctx context.Context) (*adminapi.Block, error) {
			return a.api.BlockDetails(ctx, id)
		})

	a.show(w, r, "block_detail.html", "Block", block, err)
}

type feedbackPage struct {
	Filter     adminapi.FeedbackFilter
	Query      url.Values
	Items      []adminapi.Feedback
	Pagination adminapi.Pagination
	Statuses   []string
	Types      []string
}

func (a *Admin) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := adminapi.ParseFeedbackFilter(r.URL.Query())
	page := feedbackPage{
		Filter:   f,
		Query:    listQuery(r),
		Statuses: adminapi.FeedbackStatuses,
		Types:    adminapi.FeedbackTypes,
	}

	res, err := querycache.Fetch(ctx, a.cache, key(ctx, "feedback", f.Values().Encode()),
		func(ctx context.Context) (*adminapi.Page[adminapi.Feedback], error) {
			return a.api.Feedback(ctx, f)
		})
	if err == nil {
		page.Items = res.Items
		page.Pagination = res.Pagination
	}

	a.show(w, r, "feedback.html", "Feedback", page, err)
}

type feedbackDetailPage struct {
	Feedback   *adminapi.Feedback
	Statuses   []string
	Priorities []string
}

func (a *Admin) handleFeedbackDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	item, err := querycache.Fetch(ctx, a.cache, key(ctx, "feedback", id),
		func(ctx context.Context) (*adminapi.Feedback, error) {
			return a.api.FeedbackDetails(ctx, id)
		})

	a.show(w, r, "feedback_detail.html", "Feedback", feedbackDetailPage{
		Feedback:   item,
		Statuses:   adminapi.FeedbackStatuses,
		Priorities: adminapi.FeedbackPriorities,
	}, err)
}

type analyticsPage struct {
	Days      int
	Windows   []int
	Analytics *adminapi.Analytics
	MaxGrowth int
}

func (a *Admin) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := adminapi.ParseAnalyticsFilter(r.URL.Query())

	res, err := querycache.Fetch(ctx, a.cache, key(ctx, "analytics", f.Values().Encode()),
		func(ctx context.Context) (*adminapi.Analytics, error) {
			return a.api.Analytics(ctx, f)
		})

	page := analyticsPage{Days: f.Days, Windows: adminapi.AnalyticsWindows, Analytics: res}
	if res != nil {
		for _, p := range res.Growth {
			page.MaxGrowth = max(page.MaxGrowth, p.Count)
		}
	}

	a.show(w, r, "analytics.html", "Analytics", page, err)
}

type activityPage struct {
	Filter      adminapi.ActivityFilter
	Query       url.Values
	Logs        []adminapi.ActivityLog
	Pagination  adminapi.Pagination
	Actions     []string
	EntityTypes []string
}

func (a *Admin) handleActivityLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := adminapi.ParseActivityFilter(r.URL.Query())
	page := activityPage{
		Filter:      f,
		Query:       listQuery(r),
		Actions:     adminapi.ActivityActions,
		EntityTypes: adminapi.ActivityEntityTypes,
	}

	res, err := querycache.Fetch(ctx, a.cache, key(ctx, "activity-logs", f.Values().Encode()),
		func(ctx context.Context) (*adminapi.Page[adminapi.ActivityLog], error) {
			return a.api.ActivityLogs(ctx, f)
		})
	if err == nil {
		page.Logs = res.Items
		page.Pagination = res.Pagination
	}

	a.show(w, r, "activity.html", "Activity Logs", page, err)
}

type flagRow struct {
	Key     string
	Label   string
	Enabled bool
}

// flagRows lists known flags first, then any others the API returned.
func flagRows(flags adminapi.FeatureFlags) []flagRow {
	rows := make([]flagRow, 0, len(flags))
	for _, k := range adminapi.FeatureFlagKeys {
		if v, ok := flags[k]; ok {
			rows = append(rows, flagRow{Key: k, Label: flagLabel(k), Enabled: v})
		}
	}

	var extra []string
	for k := range flags {
		if !slices.Contains(adminapi.FeatureFlagKeys, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		rows = append(rows, flagRow{Key: k, Label: flagLabel(k), Enabled: flags[k]})
	}
	return rows
}

// flagLabel turns enableGoogleAuth into "Google Auth".
func flagLabel(key string) string {
	name := strings.TrimPrefix(key, "enable")
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (a *Admin) handleFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flags, err := querycache.Fetch(ctx, a.cache, key(ctx, "feature-flags"), a.api.FeatureFlags)

	a.show(w, r, "features.html", "Feature Flags", flagRows(flags), err)
}

type limitsPage struct {
	Settings    *adminapi.LimitsSettings
	ChatPayment *adminapi.ChatPayment
}

func (a *Admin) handleLimits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := limitsPage{}

	var g errgroup.Group
	g.Go(func() error {
		settings, err := querycache.Fetch(ctx, a.cache, key(ctx, "limits"), a.api.Limits)
		page.Settings = settings
		return err
	})
	g.Go(func() error {
		payment, err := querycache.Fetch(ctx, a.cache, key(ctx, "unrevealed-chat-payment"), a.api.UnrevealedChatPayment)
		page.ChatPayment = payment
		return err
	})
	err := g.Wait()

	a.show(w, r, "limits.html", "App Limits", page, err)
}

func (a *Admin) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg, err := querycache.Fetch(ctx, a.cache, key(ctx, "app-config"), a.api.Config)

	a.show(w, r, "settings.html", "Settings", cfg, err)
}

type contentPage struct {
	Config  *adminapi.AppConfig
	Preview bool
}

func (a *Admin) handleContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg, err := querycache.Fetch(ctx, a.cache, key(ctx, "app-config"), a.api.Config)

	a.show(w, r, "content.html", "Content", contentPage{Config: cfg, Preview: r.URL.Query().Get("preview") == "1"}, err)
}

type premiumPage struct {
	Status   *adminapi.PremiumStatus
	Features []adminapi.PremiumFeature
	Plans    []adminapi.PremiumPlan
	Edit     string
}

func (a *Admin) handlePremium(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := premiumPage{Edit: r.URL.Query().Get("edit")}

	var g errgroup.Group
	g.Go(func() error {
		status, err := querycache.Fetch(ctx, a.cache, key(ctx, "premium-status"), a.api.PremiumStatus)
		page.Status = status
		return err
	})
	g.Go(func() error {
		features, err := querycache.Fetch(ctx, a.cache, key(ctx, "premium-features"), a.api.PremiumFeatures)
		page.Features = features
		return err
	})
	g.Go(func() error {
		plans, err := querycache.Fetch(ctx, a.cache, key(ctx, "premium-plans"), a.api.PremiumPlans)
		page.Plans = plans
		return err
	})
	err := g.Wait()

	a.show(w, r, "premium.html", "Premium", page, err)
}
