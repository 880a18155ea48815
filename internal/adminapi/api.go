// ABOUTME: Typed facade over every bearound admin endpoint
// ABOUTME: One call per method; client errors are returned unchanged

package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bearound/bearound-admin/internal/apiclient"
)

// API is the admin endpoint catalog.
type API struct {
	c apiclient.Doer
}

// New wraps a Doer, normally an *apiclient.Client.
func New(c apiclient.Doer) *API {
	return &API{c: c}
}

func (a *API) call(ctx context.Context, method, path string, query url.Values, body, out any) (*apiclient.Envelope, error) {
	env, err := a.c.Do(ctx, apiclient.Request{Method: method, Path: path, Query: query, Body: body})
	if err != nil {
		return nil, err
	}
	if err := env.Decode(out); err != nil {
		return env, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return env, nil
}

func (a *API) get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := a.call(ctx, http.MethodGet, path, query, nil, out)
	return err
}

func (a *API) send(ctx context.Context, method, path string, body any) error {
	_, err := a.call(ctx, method, path, nil, body, nil)
	return err
}

func id(prefix, v string) string {
	return prefix + "/" + url.PathEscape(v)
}

// Login posts credentials. A 2xx answer with success:false is returned
// with Success unset rather than as an error.
func (a *API) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var result LoginResult
	env, err := a.call(ctx, http.MethodPost, "/auth/login",
		nil, map[string]string{"email": email, "password": password}, &result)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Success: env.Success, Message: env.Message, Result: result}, nil
}

// Dashboard fetches headline counters.
func (a *API) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := a.get(ctx, "/admin/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Config fetches the app configuration.
func (a *API) Config(ctx context.Context) (*AppConfig, error) {
	var data struct {
		Config AppConfig `json:"config"`
	}
	if err := a.get(ctx, "/admin/config", nil, &data); err != nil {
		return nil, err
	}
	return &data.Config, nil
}

// UpdateConfig sends a partial config update.
func (a *API) UpdateConfig(ctx context.Context, u ConfigUpdate) error {
	return a.send(ctx, http.MethodPut, "/admin/config", u)
}

// FeatureFlags fetches every flag.
func (a *API) FeatureFlags(ctx context.Context) (FeatureFlags, error) {
	var data struct {
		FeatureFlags FeatureFlags `json:"featureFlags"`
	}
	if err := a.get(ctx, "/admin/features", nil, &data); err != nil {
		return nil, err
	}
	if data.FeatureFlags == nil {
		data.FeatureFlags = FeatureFlags{}
	}
	return data.FeatureFlags, nil
}

// UpdateFeatureFlags replaces the whole flag map.
func (a *API) UpdateFeatureFlags(ctx context.Context, flags FeatureFlags) error {
	return a.send(ctx, http.MethodPut, "/admin/features", map[string]any{"featureFlags": flags})
}

// Limits fetches content limits and moderation thresholds.
func (a *API) Limits(ctx context.Context) (*LimitsSettings, error) {
	var l LimitsSettings
	if err := a.get(ctx, "/admin/limits", nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLimits replaces both halves of the limits settings.
func (a *API) UpdateLimits(ctx context.Context, l LimitsSettings) error {
	return a.send(ctx, http.MethodPut, "/admin/limits", l)
}

// UnrevealedChatPayment fetches pay-per-message settings.
func (a *API) UnrevealedChatPayment(ctx context.Context) (*ChatPayment, error) {
	var data struct {
		Settings ChatPayment `json:"unrevealedChatPayment"`
	}
	if err := a.get(ctx, "/admin/unrevealed-chat-payment", nil, &data); err != nil {
		return nil, err
	}
	return &data.Settings, nil
}

// UpdateUnrevealedChatPayment replaces pay-per-message settings.
func (a *API) UpdateUnrevealedChatPayment(ctx context.Context, p ChatPayment) error {
	return a.send(ctx, http.MethodPut, "/admin/unrevealed-chat-payment",
		map[string]any{"unrevealedChatPayment": p})
}

// Users lists accounts. Pagination may sit beside data in the envelope.
func (a *API) Users(ctx context.Context, f UserFilter) (*Page[User], error) {
	var page Page[User]
	env, err := a.call(ctx, http.MethodGet, "/admin/users", f.Values(), nil, &page)
	if err != nil {
		return nil, err
	}
	if page.Pagination == (Pagination{}) && len(env.Pagination) > 0 {
		_ = json.Unmarshal(env.Pagination, &page.Pagination)
	}
	return &page, nil
}

// UserDetails fetches one account with stats and purchases.
func (a *API) UserDetails(ctx context.Context, userID string) (*UserDetails, error) {
	var d UserDetails
	if err := a.get(ctx, id("/admin/users", userID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateUserStatus changes an account status.
func (a *API) UpdateUserStatus(ctx context.Context, userID string, u StatusUpdate) error {
	return a.send(ctx, http.MethodPut, id("/admin/users", userID)+"/status", u)
}

// Reports lists moderation reports.
func (a *API) Reports(ctx context.Context, f ReportFilter) (*Page[Report], error) {
	var page Page[Report]
	if err := a.get(ctx, "/admin/reports", f.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReportDetails fetches one report.
func (a *API) ReportDetails(ctx context.Context, reportID string) (*Report, error) {
	var data struct {
		Report Report `json:"report"`
	}
	if err := a.get(ctx, id("/admin/reports", reportID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Report, nil
}

// ResolveReport closes a report with an action.
func (a *API) ResolveReport(ctx context.Context, reportID string, r Resolution) error {
	return a.send(ctx, http.MethodPost, id("/admin/reports", reportID)+"/resolve", r)
}

// Feedback lists feedback items.
func (a *API) Feedback(ctx context.Context, f FeedbackFilter) (*Page[Feedback], error) {
	var page Page[Feedback]
	if err := a.get(ctx, "/admin/feedback", f.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FeedbackDetails fetches one feedback item.
func (a *API) FeedbackDetails(ctx context.Context, feedbackID string) (*Feedback, error) {
	var data struct {
		Feedback Feedback `json:"feedback"`
	}
	if err := a.get(ctx, id("/admin/feedback", feedbackID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Feedback, nil
}

// UpdateFeedback changes status, priority, note or resolution.
func (a *API) UpdateFeedback(ctx context.Context, feedbackID string, u FeedbackUpdate) error {
	return a.send(ctx, http.MethodPut, id("/admin/feedback", feedbackID), u)
}

// Analytics fetches aggregate metrics for a window.
func (a *API) Analytics(ctx context.Context, f AnalyticsFilter) (*Analytics, error) {
	var an Analytics
	if err := a.get(ctx, "/admin/analytics", f.Values(), &an); err != nil {
		return nil, err
	}
	return &an, nil
}

// ActivityLogs lists audit entries.
func (a *API) ActivityLogs(ctx context.Context, f ActivityFilter) (*Page[ActivityLog], error) {
	var page Page[ActivityLog]
	if err := a.get(ctx, "/admin/activity-logs", f.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Blocks lists blocks.
func (a *API) Blocks(ctx context.Context, f BlockFilter) (*Page[Block], error) {
	var page Page[Block]
	if err := a.get(ctx, "/admin/blocks", f.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// BlockDetails fetches one block. The block may be wrapped in data.block.
func (a *API) BlockDetails(ctx context.Context, blockID string) (*Block, error) {
	var raw json.RawMessage
	if err := a.get(ctx, id("/admin/blocks", blockID), nil, &raw); err != nil {
		return nil, err
	}
	var wrapped struct {
		Block *Block `json:"block"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Block != nil {
		return wrapped.Block, nil
	}
	var b Block
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("GET /admin/blocks/%s: decoding data: %w", blockID, err)
	}
	return &b, nil
}

// RemoveBlock deletes a block. The API requires a reason.
func (a *API) RemoveBlock(ctx context.Context, blockID, reason string) error {
	return a.send(ctx, http.MethodDelete, id("/admin/blocks", blockID), map[string]string{"reason": reason})
}

// BlockStats fetches block counters.
func (a *API) BlockStats(ctx context.Context) (*BlockStats, error) {
	var data struct {
		Stats BlockStats `json:"stats"`
	}
	if err := a.get(ctx, "/admin/blocks/stats", nil, &data); err != nil {
		return nil, err
	}
	return &data.Stats, nil
}

// PremiumStatus fetches whether premium is on and its counters.
func (a *API) PremiumStatus(ctx context.Context) (*PremiumStatus, error) {
	var s PremiumStatus
	if err := a.get(ctx, "/admin/premium/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// PremiumFeatures lists gated features.
func (a *API) PremiumFeatures(ctx context.Context) ([]PremiumFeature, error) {
	var data struct {
		Features []PremiumFeature `json:"features"`
	}
	if err := a.get(ctx, "/admin/premium/features", nil, &data); err != nil {
		return nil, err
	}
	return data.Features, nil
}

// PremiumPlans lists plans.
func (a *API) PremiumPlans(ctx context.Context) ([]PremiumPlan, error) {
	var data struct {
		Plans []PremiumPlan `json:"plans"`
	}
	if err := a.get(ctx, "/admin/premium/plans", nil, &data); err != nil {
		return nil, err
	}
	return data.Plans, nil
}

// TogglePremiumMode switches premium gating on or off.
func (a *API) TogglePremiumMode(ctx context.Context, enabled bool) error {
	return a.send(ctx, http.MethodPut, "/admin/premium/mode", map[string]bool{"enabled": enabled})
}

// TogglePremiumFeature flips one feature.
func (a *API) TogglePremiumFeature(ctx context.Context, featureID string) error {
	return a.send(ctx, http.MethodPost, id("/admin/premium/features", featureID)+"/toggle", nil)
}

// UpdatePremiumFeature edits one feature.
func (a *API) UpdatePremiumFeature(ctx context.Context, featureID string, u PremiumFeatureUpdate) error {
	return a.send(ctx, http.MethodPut, id("/admin/premium/features", featureID), u)
}

// UpdatePremiumPlan edits one plan.
func (a *API) UpdatePremiumPlan(ctx context.Context, planID string, u PremiumPlanUpdate) error {
	return a.send(ctx, http.MethodPut, id("/admin/premium/plans", planID), u)
}
