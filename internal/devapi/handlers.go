// ABOUTME: Dev API handlers for the /admin endpoints
// ABOUTME: Reads copy records out under the lock; mutations validate, apply, and audit

package devapi

import (
	"maps"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bearound/bearound-admin/internal/adminapi"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f := s.data
	f.mu.RLock()
	defer f.mu.RUnlock()

	var d adminapi.Dashboard
	now := f.now().UTC()
	today := now.Truncate(24 * time.Hour)
	for _, id := range f.userOrder {
		u := f.accounts[id].user
		d.Overview.TotalUsers++
		if u.AccountStatus == adminapi.StatusActive {
			d.Overview.ActiveUsers++
		}
		if !u.CreatedAt.Before(today) {
			d.Overview.NewUsersToday++
		}
		if u.CreatedAt.After(now.AddDate(0, 0, -7)) {
			d.Overview.NewUsersLast7Days++
		}
	}
	for _, rep := range f.reports {
		if rep.Status == "pending" {
			d.Overview.PendingReports++
		}
	}
	d.Overview.TotalConversations = d.Overview.TotalUsers * 3
	d.Overview.TotalRequests = d.Overview.TotalUsers * 5
	d.AppStatus.AppVersion = f.config.AppVersion
	d.AppStatus.MaintenanceMode = f.config.MaintenanceMode

	respondOK(w, d)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	cfg := s.data.config
	s.data.mu.RUnlock()
	respondOK(w, map[string]any{"config": cfg})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var u adminapi.ConfigUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	if u.AppName != nil && strings.TrimSpace(*u.AppName) == "" {
		respondInvalid(w, []FieldError{{Field: "appName", Message: "App name cannot be empty"}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	if u.AppName != nil {
		f.config.AppName = *u.AppName
	}
	if u.AppVersion != nil {
		f.config.AppVersion = *u.AppVersion
	}
	if u.MaintenanceMode != nil {
		f.config.MaintenanceMode = *u.MaintenanceMode
	}
	if u.MaintenanceMessage != nil {
		f.config.MaintenanceMessage = *u.MaintenanceMessage
	}
	if u.SupportContent != nil {
		f.config.SupportContent = *u.SupportContent
	}
	if u.LegalContent != nil {
		f.config.LegalContent = *u.LegalContent
	}
	f.log(actor(r), "config_updated", "config", "app", nil)

	respondOK(w, map[string]any{"config": f.config})
}

func (s *Server) handleGetFlags(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	flags := maps.Clone(s.data.flags)
	s.data.mu.RUnlock()
	respondOK(w, map[string]any{"featureFlags": flags})
}

func (s *Server) handleUpdateFlags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FeatureFlags adminapi.FeatureFlags `json:"featureFlags"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FeatureFlags == nil {
		respondInvalid(w, []FieldError{{Field: "featureFlags", Message: "Feature flags are required"}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags = req.FeatureFlags
	f.log(actor(r), "config_updated", "config", "featureFlags", nil)

	respondMessage(w, "Feature flags updated")
}

func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	l := s.data.limits
	s.data.mu.RUnlock()
	respondOK(w, l)
}

func (s *Server) handleUpdateLimits(w http.ResponseWriter, r *http.Request) {
	var l adminapi.LimitsSettings
	if !decodeBody(w, r, &l) {
		return
	}

	var errs []FieldError
	check := func(field string, v int) {
		if v < 0 {
			errs = append(errs, FieldError{Field: field, Message: "must not be negative"})
		}
	}
	check("limits.maxPhotos", l.Limits.MaxPhotos)
	check("limits.maxBioLength", l.Limits.MaxBioLength)
	check("limits.maxInterests", l.Limits.MaxInterests)
	check("limits.maxMessageLength", l.Limits.MaxMessageLength)
	check("limits.requestExpiryDays", l.Limits.RequestExpiryDays)
	check("moderation.autoSuspendReportCount", l.Moderation.AutoSuspendReportCount)
	if len(errs) > 0 {
		respondInvalid(w, errs)
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = l
	f.log(actor(r), "config_updated", "config", "limits", nil)

	respondOK(w, l)
}

func (s *Server) handleGetChatPayment(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	p := s.data.chatPayment
	s.data.mu.RUnlock()
	respondOK(w, map[string]any{"unrevealedChatPayment": p})
}

func (s *Server) handleUpdateChatPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settings adminapi.ChatPayment `json:"unrevealedChatPayment"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p := req.Settings
	if p.FreeMessageLimit < 0 || p.PricePerMessageInPaisa < 0 {
		respondInvalid(w, []FieldError{{Field: "unrevealedChatPayment", Message: "Limits and prices must not be negative"}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatPayment = p
	f.log(actor(r), "config_updated", "config", "unrevealedChatPayment", nil)

	respondOK(w, map[string]any{"unrevealedChatPayment": p})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	status := q.Get("status")
	premium := q.Get("isPremium")
	page, limit := paging(r, adminapi.DefaultLimit)

	f := s.data
	f.mu.RLock()
	var users []adminapi.User
	for _, id := range f.userOrder {
		u := f.accounts[id].user
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.Profile.Name), search) {
			continue
		}
		if status != "" && u.AccountStatus != status {
			continue
		}
		if premium != "" && strconv.FormatBool(u.IsPremium) != premium {
			continue
		}
		users = append(users, u)
	}
	f.mu.RUnlock()

	// Users carry pagination beside data, unlike the other lists.
	items, p := paginate(users, page, limit)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Pagination: p})
}

func (s *Server) handleUserDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f := s.data
	f.mu.RLock()
	defer f.mu.RUnlock()

	acct, ok := f.accounts[id]
	if !ok {
		notFound(w, "User")
		return
	}

	var d adminapi.UserDetails
	d.User = acct.user
	d.Stats.Conversations = len(acct.user.Username) % 9
	for _, rep := range f.reports {
		if rep.ReportedUser.ID == id {
			d.Stats.ReportsAgainst++
		}
		if rep.Reporter.ID == id {
			d.Stats.RequestsSent++
		}
	}
	d.Stats.RequestsReceived = d.Stats.Conversations + d.Stats.ReportsAgainst
	d.RecentPurchases = append([]adminapi.Purchase{}, f.purchases[id]...)

	respondOK(w, d)
}

func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var u adminapi.StatusUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	if !slices.Contains(adminapi.AccountStatuses, u.Status) {
		respondInvalid(w, []FieldError{{Field: "status", Message: "Status must be one of " + strings.Join(adminapi.AccountStatuses, ", ")}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[id]
	if !ok {
		notFound(w, "User")
		return
	}
	if id == actor(r) {
		respondInvalid(w, []FieldError{{Field: "status", Message: "You cannot change your own status"}})
		return
	}
	acct.user.AccountStatus = u.Status

	action := "user_suspended"
	switch u.Status {
	case adminapi.StatusDeleted:
		action = "user_deleted"
	case adminapi.StatusActive:
		action = "user_created"
	}
	f.log(actor(r), action, "user", id, map[string]any{"status": u.Status, "reason": u.Reason})

	respondOK(w, map[string]any{"user": acct.user})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := paging(r, adminapi.DefaultLimit)

	f := s.data
	f.mu.RLock()
	var out []adminapi.Report
	for _, rep := range f.reports {
		if v := q.Get("status"); v != "" && rep.Status != v {
			continue
		}
		if v := q.Get("priority"); v != "" && rep.Priority != v {
			continue
		}
		if v := q.Get("reason"); v != "" && rep.Reason != v {
			continue
		}
		out = append(out, *rep)
	}
	f.mu.RUnlock()

	items, p := paginate(out, page, limit)
	respondPage(w, items, p)
}

func (s *Server) findReport(id string) *adminapi.Report {
	for _, rep := range s.data.reports {
		if rep.ID == id {
			return rep
		}
	}
	return nil
}

func (s *Server) handleReportDetails(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	rep := s.findReport(chi.URLParam(r, "id"))
	if rep == nil {
		notFound(w, "Report")
		return
	}
	respondOK(w, map[string]any{"report": *rep})
}

func (s *Server) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	var res adminapi.Resolution
	if !decodeBody(w, r, &res) {
		return
	}
	if !slices.Contains(adminapi.ResolveActions, res.Action) {
		respondInvalid(w, []FieldError{{Field: "action", Message: "Action is required"}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	rep := s.findReport(chi.URLParam(r, "id"))
	if rep == nil {
		notFound(w, "Report")
		return
	}
	rep.Status = "resolved"
	rep.Resolution.Action = res.Action
	rep.Resolution.Notes = res.Notes
	rep.Resolution.ResolvedAt = f.now().UTC()
	rep.ReviewedBy = f.ref(actor(r))

	switch res.Action {
	case "temporary_ban", "permanent_ban":
		if acct, ok := f.accounts[rep.ReportedUser.ID]; ok {
			acct.user.AccountStatus = adminapi.StatusSuspended
		}
	}
	f.log(actor(r), "report_resolved", "report", rep.ID, map[string]any{"action": res.Action})

	respondOK(w, map[string]any{"report": *rep})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := paging(r, adminapi.DefaultLimit)

	f := s.data
	f.mu.RLock()
	var out []adminapi.Feedback
	for _, fb := range f.feedback {
		if v := q.Get("status"); v != "" && fb.Status != v {
			continue
		}
		if v := q.Get("type"); v != "" && fb.Type != v {
			continue
		}
		out = append(out, *fb)
	}
	f.mu.RUnlock()

	items, p := paginate(out, page, limit)
	respondPage(w, items, p)
}

func (s *Server) findFeedback(id string) *adminapi.Feedback {
	for _, fb := range s.data.feedback {
		if fb.ID == id {
			return fb
		}
	}
	return nil
}

func (s *Server) handleFeedbackDetails(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	fb := s.findFeedback(chi.URLParam(r, "id"))
	if fb == nil {
		notFound(w, "Feedback")
		return
	}
	respondOK(w, map[string]any{"feedback": *fb})
}

func (s *Server) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	var u adminapi.FeedbackUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	var errs []FieldError
	if u.Status != "" && !slices.Contains(adminapi.FeedbackStatuses, u.Status) {
		errs = append(errs, FieldError{Field: "status", Message: "Unknown status"})
	}
	if u.Priority != "" && !slices.Contains(adminapi.FeedbackPriorities, u.Priority) {
		errs = append(errs, FieldError{Field: "priority", Message: "Unknown priority"})
	}
	if len(errs) > 0 {
		respondInvalid(w, errs)
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	fb := s.findFeedback(chi.URLParam(r, "id"))
	if fb == nil {
		notFound(w, "Feedback")
		return
	}
	if u.Status != "" {
		fb.Status = u.Status
	}
	if u.Priority != "" {
		fb.Priority = u.Priority
	}
	if u.AdminNote != "" {
		// Copy so earlier responses keep their slice.
		fb.AdminNotes = append(slices.Clone(fb.AdminNotes), adminapi.AdminNote{
			Note:    u.AdminNote,
			AddedBy: f.ref(actor(r)),
			AddedAt: f.now().UTC(),
		})
	}
	if u.Resolution != "" {
		fb.Resolution = u.Resolution
	}
	if fb.Status == "resolved" && fb.ResolvedAt.IsZero() {
		fb.ResolvedAt = f.now().UTC()
		fb.ResolvedBy = f.ref(actor(r))
	}
	f.log(actor(r), "feedback_updated", "feedback", fb.ID, map[string]any{"status": fb.Status})

	respondOK(w, map[string]any{"feedback": *fb})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 1 {
		days = adminapi.DefaultAnalyticsDays
	}

	f := s.data
	f.mu.RLock()
	defer f.mu.RUnlock()

	since := f.now().UTC().AddDate(0, 0, -days)
	var a adminapi.Analytics
	growth := map[string]int{}
	for _, id := range f.userOrder {
		u := f.accounts[id].user
		a.Overview.TotalUsers++
		if u.IsPremium {
			a.Overview.PremiumUsers++
		}
		if u.LastActiveAt.After(since) {
			a.Overview.ActiveUsers++
		}
		if u.CreatedAt.After(since) {
			a.Overview.NewUsers++
			growth[u.CreatedAt.Format("2006-01-02")]++
		}
	}
	for date, n := range growth {
		a.Growth = append(a.Growth, adminapi.GrowthPoint{Date: date, Count: n})
	}
	sort.Slice(a.Growth, func(i, j int) bool { return a.Growth[i].Date < a.Growth[j].Date })

	a.Engagement.TotalConversations = a.Overview.TotalUsers * 3
	a.Engagement.TotalMessages = a.Overview.TotalUsers * 42
	a.Engagement.TotalRequests = a.Overview.TotalUsers * 5
	a.Engagement.NewRequests = a.Overview.NewUsers * 2

	for _, rep := range f.reports {
		a.Moderation.TotalReports++
		switch rep.Status {
		case "pending":
			a.Moderation.PendingReports++
		case "resolved":
			a.Moderation.ResolvedReports++
		}
	}
	for _, fb := range f.feedback {
		a.Moderation.TotalFeedback++
		if fb.Status == "new" {
			a.Moderation.NewFeedback++
		}
	}

	respondOK(w, a)
}

func (s *Server) handleActivityLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := paging(r, adminapi.DefaultActivityLimit)

	f := s.data
	f.mu.RLock()
	var out []adminapi.ActivityLog
	for _, entry := range f.logs {
		if v := q.Get("action"); v != "" && entry.Action != v {
			continue
		}
		if v := q.Get("entityType"); v != "" && entry.EntityType != v {
			continue
		}
		out = append(out, entry)
	}
	f.mu.RUnlock()

	items, p := paginate(out, page, limit)
	respondPage(w, items, p)
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	page, limit := paging(r, adminapi.DefaultLimit)

	f := s.data
	f.mu.RLock()
	var out []adminapi.Block
	for _, b := range f.blocks {
		if v := q.Get("reason"); v != "" && b.Reason != v {
			continue
		}
		if v := q.Get("source"); v != "" && b.Source != v {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Blocker.Label()), search) &&
			!strings.Contains(strings.ToLower(b.Blocked.Label()), search) &&
			!strings.Contains(strings.ToLower(b.Blocker.Email), search) &&
			!strings.Contains(strings.ToLower(b.Blocked.Email), search) {
			continue
		}
		out = append(out, *b)
	}
	f.mu.RUnlock()

	items, p := paginate(out, page, limit)
	respondPage(w, items, p)
}

func (s *Server) handleBlockStats(w http.ResponseWriter, r *http.Request) {
	f := s.data
	f.mu.RLock()
	defer f.mu.RUnlock()

	now := f.now().UTC()
	stats := adminapi.BlockStats{BySource: map[string]int{}}
	for _, b := range f.blocks {
		stats.TotalBlocks++
		stats.BySource[b.Source]++
		if !b.CreatedAt.Before(now.Truncate(24 * time.Hour)) {
			stats.BlocksToday++
		}
		if b.CreatedAt.After(now.AddDate(0, 0, -7)) {
			stats.BlocksLast7Days++
		}
	}
	respondOK(w, map[string]any{"stats": stats})
}

func (s *Server) handleBlockDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	for _, b := range s.data.blocks {
		if b.ID == id {
			respondOK(w, map[string]any{"block": *b})
			return
		}
	}
	notFound(w, "Block")
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		respondInvalid(w, []FieldError{{Field: "reason", Message: "Reason is required"}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := slices.IndexFunc(f.blocks, func(b *adminapi.Block) bool { return b.ID == id })
	if idx < 0 {
		notFound(w, "Block")
		return
	}
	f.blocks = slices.Delete(slices.Clone(f.blocks), idx, idx+1)
	f.log(actor(r), "config_updated", "system", id, map[string]any{"removedBlock": id, "reason": req.Reason})

	respondMessage(w, "Block removed")
}

func (s *Server) handlePremiumStatus(w http.ResponseWriter, r *http.Request) {
	f := s.data
	f.mu.RLock()
	defer f.mu.RUnlock()

	st := adminapi.PremiumStatus{IsPremiumEnabled: f.premiumEnabled}
	for _, acct := range f.accounts {
		if acct.user.IsPremium {
			st.PremiumUsersCount++
		}
	}
	for _, p := range f.plans {
		if p.IsActive {
			st.ActivePlans++
		}
	}
	respondOK(w, st)
}

func (s *Server) handlePremiumFeatures(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	out := make([]adminapi.PremiumFeature, 0, len(s.data.features))
	for _, pf := range s.data.features {
		out = append(out, *pf)
	}
	s.data.mu.RUnlock()
	respondOK(w, map[string]any{"features": out})
}

func (s *Server) handlePremiumPlans(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	out := make([]adminapi.PremiumPlan, 0, len(s.data.plans))
	for _, p := range s.data.plans {
		out = append(out, *p)
	}
	s.data.mu.RUnlock()
	respondOK(w, map[string]any{"plans": out})
}

func (s *Server) handlePremiumMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		respondInvalid(w, []FieldError{{Field: "enabled", Message: "enabled is required"}})
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()
	f.premiumEnabled = *req.Enabled
	f.log(actor(r), "config_updated", "config", "premiumMode", map[string]any{"enabled": *req.Enabled})

	respondOK(w, map[string]any{"isPremiumEnabled": f.premiumEnabled})
}

func (s *Server) findFeature(id string) *adminapi.PremiumFeature {
	for _, pf := range s.data.features {
		if pf.FeatureID == id {
			return pf
		}
	}
	return nil
}

func (s *Server) handleTogglePremiumFeature(w http.ResponseWriter, r *http.Request) {
	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	pf := s.findFeature(chi.URLParam(r, "id"))
	if pf == nil {
		notFound(w, "Feature")
		return
	}
	pf.IsEnabled = !pf.IsEnabled
	f.log(actor(r), "config_updated", "config", pf.FeatureID, map[string]any{"isEnabled": pf.IsEnabled})

	respondOK(w, map[string]any{"feature": *pf})
}

func (s *Server) handleUpdatePremiumFeature(w http.ResponseWriter, r *http.Request) {
	var u adminapi.PremiumFeatureUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	var errs []FieldError
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	}
	if u.FreeLimit < adminapi.Unlimited {
		errs = append(errs, FieldError{Field: "freeLimit", Message: "Use -1 for unlimited"})
	}
	if u.PremiumLimit < adminapi.Unlimited {
		errs = append(errs, FieldError{Field: "premiumLimit", Message: "Use -1 for unlimited"})
	}
	if len(errs) > 0 {
		respondInvalid(w, errs)
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	pf := s.findFeature(chi.URLParam(r, "id"))
	if pf == nil {
		notFound(w, "Feature")
		return
	}
	pf.Name = u.Name
	pf.Description = u.Description
	pf.FreeLimit = u.FreeLimit
	pf.PremiumLimit = u.PremiumLimit
	pf.IsEnabled = u.IsEnabled
	f.log(actor(r), "config_updated", "config", pf.FeatureID, nil)

	respondOK(w, map[string]any{"feature": *pf})
}

func (s *Server) handleUpdatePremiumPlan(w http.ResponseWriter, r *http.Request) {
	var u adminapi.PremiumPlanUpdate
	if !decodeBody(w, r, &u) {
		return
	}

	var errs []FieldError
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	}
	if u.PriceInPaisa < 0 {
		errs = append(errs, FieldError{Field: "priceInPaisa", Message: "Price must not be negative"})
	}
	if u.DurationDays < 0 {
		errs = append(errs, FieldError{Field: "durationDays", Message: "Duration must not be negative"})
	}
	if len(errs) > 0 {
		respondInvalid(w, errs)
		return
	}

	f := s.data
	f.mu.Lock()
	defer f.mu.Unlock()

	id := chi.URLParam(r, "id")
	idx := slices.IndexFunc(f.plans, func(p *adminapi.PremiumPlan) bool { return p.PlanID == id })
	if idx < 0 {
		notFound(w, "Plan")
		return
	}
	p := f.plans[idx]
	p.Name = u.Name
	p.PriceInPaisa = u.PriceInPaisa
	p.PriceDisplay = u.PriceDisplay
	p.DurationDays = u.DurationDays
	p.IsActive = u.IsActive
	f.log(actor(r), "config_updated", "config", p.PlanID, nil)

	respondOK(w, map[string]any{"plan": *p})
}
