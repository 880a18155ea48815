// ABOUTME: Mutation handlers for the dashboard forms
// ABOUTME: Every form posts, invalidates the affected queries, and redirects back

package webadmin

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/bearound/bearound-admin/internal/adminapi"
)

// Mutation toasts.
const (
	msgUserStatusUpdated  = "User status updated"
	msgReportResolved     = "Report resolved successfully"
	msgReportFailed       = "Failed to resolve report"
	msgBlockRemoved       = "Block removed successfully"
	msgBlockFailed        = "Failed to remove block"
	msgBlockReason        = "Please provide a reason for removing this block"
	msgFeedbackUpdated    = "Feedback updated successfully"
	msgFeedbackFailed     = "Failed to update feedback"
	msgFlagsUpdated       = "Feature flags updated"
	msgLimitsUpdated      = "Limits updated successfully"
	msgChatPaymentUpdated = "Chat payment settings updated successfully"
	msgConfigUpdated      = "Configuration updated"
	msgContentUpdated     = "Content updated successfully"
	msgContentFailed      = "Failed to update content"
	msgPremiumMode        = "Premium mode updated"
	msgFeatureToggled     = "Feature toggled"
	msgFeatureUpdated     = "Feature updated"
	msgPlanUpdated        = "Plan updated"
)

// mutation describes one form submission.
type mutation struct {
	back       string
	success    string
	failure    string
	invalidate [][]string
}

// mutate runs fn for a validated form post and redirects back with notices.
// Validation problems found before fn runs go through reject instead.
func (a *Admin) mutate(w http.ResponseWriter, r *http.Request, m mutation, fn func(ctx context.Context) error) {
	ctx := r.Context()
	st := stateFrom(ctx)

	err := fn(ctx)
	if a.bounceToLogin(w, r) {
		return
	}

	if err == nil {
		for _, prefix := range m.invalidate {
			a.cache.Invalidate(prefix...)
		}
		st.notify(successNotice(m.success))
	} else {
		a.logger.Warn("mutation failed", "path", r.URL.Path, "error", err)
		if m.failure != "" {
			st.notify(errorNotice(m.failure))
		}
	}

	a.queueNotices(ctx, st)
	http.Redirect(w, r, m.back, http.StatusSeeOther)
}

// reject redirects back with a single error notice.
func (a *Admin) reject(w http.ResponseWriter, r *http.Request, back, text string) {
	st := stateFrom(r.Context())
	st.notify(errorNotice(text))
	a.queueNotices(r.Context(), st)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// checkForm parses the form and validates CSRF
func (a *Admin) checkForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return false
	}
	if !a.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return false
	}
	return true
}

// returnTo picks the "return" form field when it is a local path.
func returnTo(r *http.Request, fallback string) string {
	ret := r.FormValue("return")
	if strings.HasPrefix(ret, "/") && !strings.HasPrefix(ret, "//") && !strings.Contains(ret, "\\") {
		return ret
	}
	return fallback
}

func checkbox(r *http.Request, name string) bool {
	switch r.FormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

// formInt reads a required integer field.
func formInt(r *http.Request, name, label string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(name)))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", label)
	}
	return v, nil
}

// formPaisa reads a rupee amount like "99" or "99.50" as paisa.
// maxRupees keeps paisa amounts inside an int32.
const maxRupees = math.MaxInt32 / 100.0

func formPaisa(r *http.Request, name, label string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(name)), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > maxRupees {
		return 0, fmt.Errorf("%s must be an amount in rupees", label)
	}
	return int(math.Round(v * 100)), nil
}

func (a *Admin) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")
	back := returnTo(r, "/users/"+id)

	status := r.FormValue("status")
	if !slices.Contains(adminapi.AccountStatuses, status) {
		a.reject(w, r, back, "Unknown account status")
		return
	}
	reason := strings.TrimSpace(r.FormValue("reason"))
	if reason == "" {
		reason = fmt.Sprintf("Status changed to %s by admin", status)
	}

	a.mutate(w, r, mutation{
		back:       back,
		success:    msgUserStatusUpdated,
		invalidate: [][]string{{"users"}, {"user-details", id}, {"dashboard"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateUserStatus(ctx, id, adminapi.StatusUpdate{Status: status, Reason: reason})
	})
}

func (a *Admin) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")
	back := returnTo(r, "/reports/"+id)

	action := r.FormValue("action")
	if !slices.Contains(adminapi.ResolveActions, action) {
		a.reject(w, r, back, "Please choose a resolution action")
		return
	}

	a.mutate(w, r, mutation{
		back:       back,
		success:    msgReportResolved,
		failure:    msgReportFailed,
		invalidate: [][]string{{"reports"}, {"report", id}, {"dashboard"}},
	}, func(ctx context.Context) error {
		return a.api.ResolveReport(ctx, id, adminapi.Resolution{
			Action: action,
			Notes:  strings.TrimSpace(r.FormValue("notes")),
		})
	})
}

func (a *Admin) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")

	reason := strings.TrimSpace(r.FormValue("reason"))
	if reason == "" {
		a.reject(w, r, returnTo(r, "/blocks/"+id), msgBlockReason)
		return
	}

	a.mutate(w, r, mutation{
		back:       returnTo(r, "/blocks"),
		success:    msgBlockRemoved,
		failure:    msgBlockFailed,
		invalidate: [][]string{{"blocks"}, {"blockStats"}, {"block", id}},
	}, func(ctx context.Context) error {
		return a.api.RemoveBlock(ctx, id, reason)
	})
}

func (a *Admin) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")
	back := returnTo(r, "/feedback/"+id)

	u := adminapi.FeedbackUpdate{
		Status:     r.FormValue("status"),
		Priority:   r.FormValue("priority"),
		AdminNote:  strings.TrimSpace(r.FormValue("adminNote")),
		Resolution: strings.TrimSpace(r.FormValue("resolution")),
	}
	if u.Status != "" && !slices.Contains(adminapi.FeedbackStatuses, u.Status) {
		a.reject(w, r, back, "Unknown feedback status")
		return
	}
	if u.Priority != "" && !slices.Contains(adminapi.FeedbackPriorities, u.Priority) {
		a.reject(w, r, back, "Unknown feedback priority")
		return
	}

	a.mutate(w, r, mutation{
		back:       back,
		success:    msgFeedbackUpdated,
		failure:    msgFeedbackFailed,
		invalidate: [][]string{{"feedback"}, {"dashboard"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateFeedback(ctx, id, u)
	})
}

// handleToggleFlag flips one flag and sends the whole set.
func (a *Admin) handleToggleFlag(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	flagKey := r.PathValue("key")

	a.mutate(w, r, mutation{
		back:       "/features",
		success:    msgFlagsUpdated,
		invalidate: [][]string{{"feature-flags"}},
	}, func(ctx context.Context) error {
		current, err := a.api.FeatureFlags(ctx)
		if err != nil {
			return err
		}
		return a.api.UpdateFeatureFlags(ctx, current.With(flagKey, !current[flagKey]))
	})
}

func (a *Admin) handleUpdateLimits(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	var l adminapi.LimitsSettings
	fields := []struct {
		name  string
		label string
		dst   *int
	}{
		{"maxPhotos", "Max photos", &l.Limits.MaxPhotos},
		{"maxBioLength", "Max bio length", &l.Limits.MaxBioLength},
		{"maxInterests", "Max interests", &l.Limits.MaxInterests},
		{"maxMessageLength", "Max message length", &l.Limits.MaxMessageLength},
		{"requestExpiryDays", "Request expiry days", &l.Limits.RequestExpiryDays},
		{"autoSuspendReportCount", "Auto-suspend report count", &l.Moderation.AutoSuspendReportCount},
	}
	for _, f := range fields {
		v, err := formInt(r, f.name, f.label)
		if err != nil {
			a.reject(w, r, "/limits", err.Error())
			return
		}
		*f.dst = v
	}
	l.Moderation.EnableAIModeration = checkbox(r, "enableAIModeration")

	a.mutate(w, r, mutation{
		back:       "/limits",
		success:    msgLimitsUpdated,
		invalidate: [][]string{{"limits"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateLimits(ctx, l)
	})
}

func (a *Admin) handleUpdateChatPayment(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	p := adminapi.ChatPayment{
		IsEnabled:    checkbox(r, "isEnabled"),
		PriceDisplay: strings.TrimSpace(r.FormValue("priceDisplay")),
	}
	var err error
	if p.FreeMessageLimit, err = formInt(r, "freeMessageLimit", "Free message limit"); err != nil {
		a.reject(w, r, "/limits", err.Error())
		return
	}
	if p.PricePerMessageInPaisa, err = formPaisa(r, "pricePerMessage", "Price per message"); err != nil {
		a.reject(w, r, "/limits", err.Error())
		return
	}

	a.mutate(w, r, mutation{
		back:       "/limits",
		success:    msgChatPaymentUpdated,
		invalidate: [][]string{{"unrevealed-chat-payment"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateUnrevealedChatPayment(ctx, p)
	})
}

// optional returns nil for a blank field so the server keeps its value.
func optional(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

func (a *Admin) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	maintenance := checkbox(r, "maintenanceMode")
	u := adminapi.ConfigUpdate{
		AppName:            optional(r, "appName"),
		AppVersion:         optional(r, "appVersion"),
		MaintenanceMode:    &maintenance,
		MaintenanceMessage: optional(r, "maintenanceMessage"),
	}

	a.mutate(w, r, mutation{
		back:       "/settings",
		success:    msgConfigUpdated,
		invalidate: [][]string{{"app-config"}, {"dashboard"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateConfig(ctx, u)
	})
}

func (a *Admin) handleUpdateSupportContent(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	content := adminapi.SupportContent{
		HelpFAQ:          r.FormValue("helpFAQ"),
		SafetyGuidelines: r.FormValue("safetyGuidelines"),
	}

	a.mutate(w, r, mutation{
		back:       "/content",
		success:    msgContentUpdated,
		failure:    msgContentFailed,
		invalidate: [][]string{{"app-config"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateConfig(ctx, adminapi.ConfigUpdate{SupportContent: &content})
	})
}

func (a *Admin) handleUpdateLegalContent(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}

	content := adminapi.LegalContent{
		TermsOfService:      r.FormValue("termsOfService"),
		PrivacyPolicy:       r.FormValue("privacyPolicy"),
		CommunityGuidelines: r.FormValue("communityGuidelines"),
	}

	a.mutate(w, r, mutation{
		back:       "/content",
		success:    msgContentUpdated,
		failure:    msgContentFailed,
		invalidate: [][]string{{"app-config"}},
	}, func(ctx context.Context) error {
		return a.api.UpdateConfig(ctx, adminapi.ConfigUpdate{LegalContent: &content})
	})
}

func (a *Admin) handlePremiumMode(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	enabled := r.FormValue("enabled") == "true"

	a.mutate(w, r, mutation{
		back:       "/premium",
		success:    msgPremiumMode,
		invalidate: [][]string{{"premium-status"}},
	}, func(ctx context.Context) error {
		return a.api.TogglePremiumMode(ctx, enabled)
	})
}

func (a *Admin) handleTogglePremiumFeature(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")

	a.mutate(w, r, mutation{
		back:       "/premium",
		success:    msgFeatureToggled,
		invalidate: [][]string{{"premium-features"}},
	}, func(ctx context.Context) error {
		return a.api.TogglePremiumFeature(ctx, id)
	})
}

func (a *Admin) handleUpdatePremiumFeature(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")
	retry := "/premium?edit=" + id

	u := adminapi.PremiumFeatureUpdate{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		IsEnabled:   checkbox(r, "isEnabled"),
	}
	if u.Name == "" {
		a.reject(w, r, retry, "Name is required")
		return
	}
	var err error
	if u.FreeLimit, err = formInt(r, "freeLimit", "Free limit"); err != nil {
		a.reject(w, r, retry, err.Error())
		return
	}
	if u.PremiumLimit, err = formInt(r, "premiumLimit", "Premium limit"); err != nil {
		a.reject(w, r, retry, err.Error())
		return
	}

	a.mutate(w, r, mutation{
		back:       "/premium",
		success:    msgFeatureUpdated,
		invalidate: [][]string{{"premium-features"}},
	}, func(ctx context.Context) error {
		return a.api.UpdatePremiumFeature(ctx, id, u)
	})
}

func (a *Admin) handleUpdatePremiumPlan(w http.ResponseWriter, r *http.Request) {
	if !a.checkForm(w, r) {
		return
	}
	id := r.PathValue("id")
	retry := "/premium?edit=" + id

	u := adminapi.PremiumPlanUpdate{
		Name:         strings.TrimSpace(r.FormValue("name")),
		PriceDisplay: strings.TrimSpace(r.FormValue("priceDisplay")),
		IsActive:     checkbox(r, "isActive"),
	}
	if u.Name == "" {
		a.reject(w, r, retry, "Name is required")
		return
	}
	var err error
	if u.PriceInPaisa, err = formPaisa(r, "price", "Price"); err != nil {
		a.reject(w, r, retry, err.Error())
		return
	}
	if u.DurationDays, err = formInt(r, "durationDays", "Duration"); err != nil || u.DurationDays < 0 {
		a.reject(w, r, retry, "Duration must be zero or more days")
		return
	}

	a.mutate(w, r, mutation{
		back:       "/premium",
		success:    msgPlanUpdated,
		invalidate: [][]string{{"premium-plans"}, {"premium-status"}},
	}, func(ctx context.Context) error {
		return a.api.UpdatePremiumPlan(ctx, id, u)
	})
}
