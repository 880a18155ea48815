// ABOUTME: Response models for the admin endpoints
// ABOUTME: Lenient decoders for populated references and list payloads

package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bearound/bearound-admin/internal/session"
)

// Pagination is the list metadata the API returns next to data.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Current returns the page number, whichever field carried it.
func (p Pagination) Current() int {
	if p.CurrentPage > 0 {
		return p.CurrentPage
	}
	if p.Page > 0 {
		return p.Page
	}
	return 1
}

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool {
	return p.HasNextPage || (p.TotalPages > 0 && p.Current() < p.TotalPages)
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.HasPrevPage || p.Current() > 1
}

// Page is a list result.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// UnmarshalJSON accepts a bare array or {"data": [...], "pagination": {...}}.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &p.Items)
	}
	var wrapped struct {
		Data       []T         `json:"data"`
		Pagination *Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	p.Items = wrapped.Data
	if wrapped.Pagination != nil {
		p.Pagination = *wrapped.Pagination
	}
	return nil
}

// UserRef is a user reference that may be an id or a populated document.
type UserRef struct {
	ID       string `json:"_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"-"`
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &u.ID)
	}
	var doc struct {
		ID       string `json:"_id"`
		AltID    string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Profile  struct {
			Name string `json:"name"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return fmt.Errorf("decoding user reference: %w", err)
	}
	u.ID = doc.ID
	if u.ID == "" {
		u.ID = doc.AltID
	}
	u.Email = doc.Email
	u.Username = doc.Username
	u.Name = doc.Profile.Name
	if u.Name == "" {
		u.Name = doc.Name
	}
	return nil
}

// Label is the best short human name for the reference.
func (u UserRef) Label() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	case u.ID != "":
		return u.ID
	default:
		return "unknown"
	}
}

// LoginResult is the data of a successful /auth/login.
type LoginResult struct {
	User   session.User `json:"user"`
	Tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken,omitempty"`
	} `json:"tokens"`
}

// LoginResponse keeps the envelope flag and message next to the data.
type LoginResponse struct {
	Success bool
	Message string
	Result  LoginResult
}

// Dashboard is /admin/dashboard.
type Dashboard struct {
	Overview struct {
		TotalUsers         int `json:"totalUsers"`
		ActiveUsers        int `json:"activeUsers"`
		NewUsersToday      int `json:"newUsersToday"`
		NewUsersLast7Days  int `json:"newUsersLast7Days"`
		TotalConversations int `json:"totalConversations"`
		TotalRequests      int `json:"totalRequests"`
		PendingReports     int `json:"pendingReports"`
	} `json:"overview"`
	AppStatus struct {
		AppVersion      string `json:"appVersion"`
		MaintenanceMode bool   `json:"maintenanceMode"`
	} `json:"appStatus"`
}

// SupportContent holds the in-app help texts.
type SupportContent struct {
	HelpFAQ          string `json:"helpFAQ,omitempty"`
	SafetyGuidelines string `json:"safetyGuidelines,omitempty"`
}

// LegalContent holds the legal texts.
type LegalContent struct {
	TermsOfService      string `json:"termsOfService,omitempty"`
	PrivacyPolicy       string `json:"privacyPolicy,omitempty"`
	CommunityGuidelines string `json:"communityGuidelines,omitempty"`
}

// AppConfig is the data.config of /admin/config.
type AppConfig struct {
	AppName            string         `json:"appName"`
	AppVersion         string         `json:"appVersion"`
	MaintenanceMode    bool           `json:"maintenanceMode"`
	MaintenanceMessage string         `json:"maintenanceMessage"`
	SupportContent     SupportContent `json:"supportContent"`
	LegalContent       LegalContent   `json:"legalContent"`
}

// ConfigUpdate is a partial PUT /admin/config body. Nil fields are omitted.
type ConfigUpdate struct {
	AppName            *string         `json:"appName,omitempty"`
	AppVersion         *string         `json:"appVersion,omitempty"`
	MaintenanceMode    *bool           `json:"maintenanceMode,omitempty"`
	MaintenanceMessage *string         `json:"maintenanceMessage,omitempty"`
	SupportContent     *SupportContent `json:"supportContent,omitempty"`
	LegalContent       *LegalContent   `json:"legalContent,omitempty"`
}

// FeatureFlagKeys is the display order of known flags.
var FeatureFlagKeys = []string{
	"enableGoogleAuth",
	"enableAnonymousMessaging",
	"enableIdentityReveal",
	"enableSearch",
	"enableDiscovery",
	"enableNotifications",
	"enableProfileSharing",
}

// FeatureFlags maps flag keys to their state.
type FeatureFlags map[string]bool

// With returns a copy with key set to enabled.
func (f FeatureFlags) With(key string, enabled bool) FeatureFlags {
	out := make(FeatureFlags, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[key] = enabled
	return out
}

// Limits is the limits object of /admin/limits.
type Limits struct {
	MaxPhotos         int `json:"maxPhotos"`
	MaxBioLength      int `json:"maxBioLength"`
	MaxInterests      int `json:"maxInterests"`
	MaxMessageLength  int `json:"maxMessageLength"`
	RequestExpiryDays int `json:"requestExpiryDays"`
}

// Moderation is the moderation object of /admin/limits.
type Moderation struct {
	AutoSuspendReportCount int  `json:"autoSuspendReportCount"`
	EnableAIModeration     bool `json:"enableAIModeration"`
}

// LimitsSettings is both halves of /admin/limits.
type LimitsSettings struct {
	Limits     Limits     `json:"limits"`
	Moderation Moderation `json:"moderation"`
}

// ChatPayment is the unrevealed chat payment setting.
type ChatPayment struct {
	IsEnabled              bool   `json:"isEnabled"`
	FreeMessageLimit       int    `json:"freeMessageLimit"`
	PricePerMessageInPaisa int    `json:"pricePerMessageInPaisa"`
	PriceDisplay           string `json:"priceDisplay,omitempty"`
}

// User account statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// AccountStatuses lists the values UpdateUserStatus accepts.
var AccountStatuses = []string{StatusActive, StatusSuspended, StatusDeleted}

// User is an account row.
type User struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Role          string    `json:"role,omitempty"`
	AccountStatus string    `json:"accountStatus"`
	IsPremium     bool      `json:"isPremium"`
	Profile       Profile   `json:"profile"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActiveAt  time.Time `json:"lastActiveAt,omitempty"`
}

// Profile is the public part of a user.
type Profile struct {
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Purchase is one premium purchase.
type Purchase struct {
	ID          string    `json:"_id"`
	PackName    string    `json:"packName"`
	PricePaid   int       `json:"pricePaid"`
	PurchasedAt time.Time `json:"purchasedAt"`
	Status      string    `json:"status"`
}

// UserDetails is /admin/users/{id}.
type UserDetails struct {
	User  User `json:"user"`
	Stats struct {
		Conversations    int `json:"conversations"`
		RequestsSent     int `json:"requestsSent"`
		RequestsReceived int `json:"requestsReceived"`
		ReportsAgainst   int `json:"reportsAgainst"`
	} `json:"stats"`
	RecentPurchases []Purchase `json:"recentPurchases"`
}

// StatusUpdate is the PUT /admin/users/{id}/status body.
type StatusUpdate struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ReportReasons are the moderation categories.
var ReportReasons = []string{
	"harassment", "hate_speech", "inappropriate_content", "spam",
	"fake_profile", "underage", "scam", "violence", "self_harm",
	"impersonation", "other",
}

// ResolveActions are the outcomes a moderator can pick.
var ResolveActions = []string{
	"no_action", "warning", "content_removed", "temporary_ban", "permanent_ban",
}

// ReportStatuses and ReportPriorities drive the report filters.
var (
	ReportStatuses   = []string{"pending", "reviewing", "resolved", "dismissed", "escalated"}
	ReportPriorities = []string{"low", "medium", "high", "critical"}
)

// Report is a moderation report.
type Report struct {
	ID              string  `json:"_id"`
	Reporter        UserRef `json:"reporter"`
	ReportedUser    UserRef `json:"reportedUser"`
	Reason          string  `json:"reason"`
	Description     string  `json:"description"`
	Priority        string  `json:"priority"`
	Status          string  `json:"status"`
	ReportedContent struct {
		Type            string `json:"type"`
		ContentSnapshot string `json:"contentSnapshot"`
	} `json:"reportedContent"`
	Resolution struct {
		Action     string    `json:"action"`
		Notes      string    `json:"notes"`
		ResolvedAt time.Time `json:"resolvedAt,omitempty"`
	} `json:"resolution"`
	ReviewedBy        UserRef         `json:"reviewedBy"`
	AutoActionTaken   bool            `json:"autoActionTaken"`
	AutoActionDetails json.RawMessage `json:"autoActionDetails,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Resolution is the POST /admin/reports/{id}/resolve body.
type Resolution struct {
	Action string `json:"action"`
	Notes  string `json:"notes,omitempty"`
}

// Feedback enumerations.
var (
	FeedbackTypes      = []string{"general", "bug", "feature", "safety", "other"}
	FeedbackStatuses   = []string{"new", "read", "in_progress", "resolved", "closed"}
	FeedbackPriorities = []string{"low", "medium", "high", "urgent"}
)

// AdminNote is a note attached to feedback.
type AdminNote struct {
	Note    string    `json:"note"`
	AddedBy UserRef   `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// Feedback is a user feedback item.
type Feedback struct {
	ID         string      `json:"_id"`
	User       UserRef     `json:"user"`
	Type       string      `json:"type"`
	Subject    string      `json:"subject"`
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	Priority   string      `json:"priority"`
	AdminNotes []AdminNote `json:"adminNotes"`
	Resolution string      `json:"resolution"`
	ResolvedAt time.Time   `json:"resolvedAt,omitempty"`
	ResolvedBy UserRef     `json:"resolvedBy"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// FeedbackUpdate is the PUT /admin/feedback/{id} body.
type FeedbackUpdate struct {
	Status     string `json:"status,omitempty"`
	Priority   string `json:"priority,omitempty"`
	AdminNote  string `json:"adminNote,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// Analytics is /admin/analytics.
type Analytics struct {
	Overview struct {
		TotalUsers   int `json:"totalUsers"`
		NewUsers     int `json:"newUsers"`
		ActiveUsers  int `json:"activeUsers"`
		PremiumUsers int `json:"premiumUsers"`
	} `json:"overview"`
	Engagement struct {
		TotalConversations int `json:"totalConversations"`
		TotalMessages      int `json:"totalMessages"`
		TotalRequests      int `json:"totalRequests"`
		NewRequests        int `json:"newRequests"`
	} `json:"engagement"`
	Moderation struct {
		TotalReports    int `json:"totalReports"`
		PendingReports  int `json:"pendingReports"`
		ResolvedReports int `json:"resolvedReports"`
		TotalFeedback   int `json:"totalFeedback"`
		NewFeedback     int `json:"newFeedback"`
	} `json:"moderation"`
	Growth []GrowthPoint `json:"growth"`
}

// GrowthPoint is one day of signups.
type GrowthPoint struct {
	Date  string `json:"_id"`
	Count int    `json:"count"`
}

// ActivityLog is an audit entry.
type ActivityLog struct {
	ID         string          `json:"_id"`
	Actor      UserRef         `json:"actor"`
	ActorType  string          `json:"actorType"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Details    json.RawMessage `json:"details,omitempty"`
	Result     string          `json:"result"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Block is one user blocking another.
type Block struct {
	ID        string    `json:"_id"`
	Blocker   UserRef   `json:"blocker"`
	Blocked   UserRef   `json:"blocked"`
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Block filter enumerations.
var (
	BlockReasons = []string{"harassment", "spam", "inappropriate", "fake_profile", "other", "not_specified"}
	BlockSources = []string{"chat", "profile", "request", "search", "feed"}
)

// Activity log filter enumerations.
var (
	ActivityActions     = []string{"user_created", "user_suspended", "user_deleted", "report_resolved", "config_updated", "feedback_updated"}
	ActivityEntityTypes = []string{"user", "report", "config", "feedback", "system"}
)

// AnalyticsWindows are the selectable day ranges.
var AnalyticsWindows = []int{7, 30, 90, 365}

// BlockStats is /admin/blocks/stats data.stats.
type BlockStats struct {
	TotalBlocks     int            `json:"totalBlocks"`
	BlocksToday     int            `json:"blocksToday"`
	BlocksLast7Days int            `json:"blocksLast7Days"`
	BySource        map[string]int `json:"bySource"`
}

// PremiumStatus is /admin/premium/status.
type PremiumStatus struct {
	IsPremiumEnabled  bool `json:"isPremiumEnabled"`
	PremiumUsersCount int  `json:"premiumUsersCount"`
	ActivePlans       int  `json:"activePlans"`
}

// Unlimited marks a limit with no cap.
const Unlimited = -1

// PremiumFeature is one gated capability.
type PremiumFeature struct {
	FeatureID    string `json:"featureId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	IsEnabled    bool   `json:"isEnabled"`
	FreeLimit    int    `json:"freeLimit"`
	PremiumLimit int    `json:"premiumLimit"`
}

// PremiumFeatureUpdate is the PUT /admin/premium/features/{id} body.
type PremiumFeatureUpdate struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	FreeLimit    int    `json:"freeLimit"`
	PremiumLimit int    `json:"premiumLimit"`
	IsEnabled    bool   `json:"isEnabled"`
}

// PremiumPlan is a purchasable plan. Zero DurationDays means lifetime.
type PremiumPlan struct {
	PlanID       string `json:"planId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DurationDays int    `json:"durationDays"`
	PriceInPaisa int    `json:"priceInPaisa"`
	PriceDisplay string `json:"priceDisplay"`
	Savings      string `json:"savings,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// PremiumPlanUpdate is the PUT /admin/premium/plans/{id} body.
type PremiumPlanUpdate struct {
	Name         string `json:"name"`
	PriceInPaisa int    `json:"priceInPaisa"`
	PriceDisplay string `json:"priceDisplay"`
	DurationDays int    `json:"durationDays"`
	IsActive     bool   `json:"isActive"`
}
