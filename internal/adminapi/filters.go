// ABOUTME: Filter and pagination state for list endpoints
// ABOUTME: Parses from request queries and renders to API query parameters

package adminapi

import (
	"net/url"
	"strconv"
	"strings"
)

// Default page sizes.
const (
	DefaultLimit         = 20
	DefaultActivityLimit = 50
	DefaultAnalyticsDays = 30
)

// Paging is the page/limit pair shared by list filters.
type Paging struct {
	Page  int
	Limit int
}

func parsePaging(q url.Values, defLimit int) Paging {
	p := Paging{Page: atoiDefault(q.Get("page"), 1), Limit: atoiDefault(q.Get("limit"), defLimit)}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = defLimit
	}
	return p
}

func (p Paging) put(v url.Values) {
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func setIf(v url.Values, key, val string) {
	if val = strings.TrimSpace(val); val != "" {
		v.Set(key, val)
	}
}

// UserFilter drives /admin/users. Premium is "", "premium" or "free".
type UserFilter struct {
	Paging
	Search  string
	Status  string
	Premium string
}

// ParseUserFilter reads a filter from a page query. "all" means unset.
func ParseUserFilter(q url.Values) UserFilter {
	f := UserFilter{
		Paging:  parsePaging(q, DefaultLimit),
		Search:  q.Get("search"),
		Status:  q.Get("status"),
		Premium: q.Get("premium"),
	}
	if f.Status == "all" {
		f.Status = ""
	}
	if f.Premium != "premium" && f.Premium != "free" {
		f.Premium = ""
	}
	return f
}

// Values renders the API query.
func (f UserFilter) Values() url.Values {
	v := url.Values{}
	f.put(v)
	setIf(v, "search", f.Search)
	setIf(v, "status", f.Status)
	switch f.Premium {
	case "premium":
		v.Set("isPremium", "true")
	case "free":
		v.Set("isPremium", "false")
	}
	return v
}

// ReportFilter drives /admin/reports.
type ReportFilter struct {
	Paging
	Status   string
	Priority string
	Reason   string
}

func ParseReportFilter(q url.Values) ReportFilter {
	return ReportFilter{
		Paging:   parsePaging(q, DefaultLimit),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Reason:   q.Get("reason"),
	}
}

func (f ReportFilter) Values() url.Values {
	v := url.Values{}
	f.put(v)
	setIf(v, "status", f.Status)
	setIf(v, "priority", f.Priority)
	setIf(v, "reason", f.Reason)
	return v
}

// BlockFilter drives /admin/blocks.
type BlockFilter struct {
	Paging
	Reason string
	Source string
	Search string
}

func ParseBlockFilter(q url.Values) BlockFilter {
	return BlockFilter{
		Paging: parsePaging(q, DefaultLimit),
		Reason: q.Get("reason"),
		Source: q.Get("source"),
		Search: q.Get("search"),
	}
}

func (f BlockFilter) Values() url.Values {
	v := url.Values{}
	f.put(v)
	setIf(v, "reason", f.Reason)
	setIf(v, "source", f.Source)
	setIf(v, "search", f.Search)
	return v
}

// FeedbackFilter drives /admin/feedback.
type FeedbackFilter struct {
	Paging
	Status string
	Type   string
}

func ParseFeedbackFilter(q url.Values) FeedbackFilter {
	return FeedbackFilter{
		Paging: parsePaging(q, DefaultLimit),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}
}

func (f FeedbackFilter) Values() url.Values {
	v := url.Values{}
	f.put(v)
	setIf(v, "status", f.Status)
	setIf(v, "type", f.Type)
	return v
}

// ActivityFilter drives /admin/activity-logs.
type ActivityFilter struct {
	Paging
	Action     string
	EntityType string
}

func ParseActivityFilter(q url.Values) ActivityFilter {
	return ActivityFilter{
		Paging:     parsePaging(q, DefaultActivityLimit),
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
	}
}

func (f ActivityFilter) Values() url.Values {
	v := url.Values{}
	f.put(v)
	setIf(v, "action", f.Action)
	setIf(v, "entityType", f.EntityType)
	return v
}

// AnalyticsFilter drives /admin/analytics.
type AnalyticsFilter struct {
	Days int
}

func ParseAnalyticsFilter(q url.Values) AnalyticsFilter {
	days := atoiDefault(q.Get("days"), DefaultAnalyticsDays)
	if days < 1 {
		days = DefaultAnalyticsDays
	}
	return AnalyticsFilter{Days: days}
}

func (f AnalyticsFilter) Values() url.Values {
	return url.Values{"days": {strconv.Itoa(f.Days)}}
}
