// ABOUTME: In-memory data set served by the dev API
// ABOUTME: Seeded deterministically so pages and tests see the same accounts and queues

package devapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bearound/bearound-admin/internal/adminapi"
)

const adminRole = "admin"

// Seed credentials.
const (
	SeedAdminEmail     = "admin@bearound.dev"
	SeedAdminPassword  = "admin123"
	SeedMemberEmail    = "member@bearound.dev"
	SeedMemberPassword = "member123"
)

// seedAppUsers is how many ordinary accounts the fixture creates.
const seedAppUsers = 24

type account struct {
	user         adminapi.User
	passwordHash []byte
}

// fixture holds every record the dev API serves. All access goes through mu.
type fixture struct {
	mu  sync.RWMutex
	now func() time.Time

	accounts  map[string]*account
	userOrder []string
	purchases map[string][]adminapi.Purchase

	reports  []*adminapi.Report
	feedback []*adminapi.Feedback
	blocks   []*adminapi.Block
	logs     []adminapi.ActivityLog

	config         adminapi.AppConfig
	flags          adminapi.FeatureFlags
	limits         adminapi.LimitsSettings
	chatPayment    adminapi.ChatPayment
	premiumEnabled bool
	features       []*adminapi.PremiumFeature
	plans          []*adminapi.PremiumPlan
}

var (
	seedNames = []string{
		"Aarav", "Diya", "Kabir", "Isha", "Vihaan", "Anaya", "Reyansh", "Myra",
		"Arjun", "Saanvi", "Ayaan", "Kiara", "Dhruv", "Aadhya", "Rohan", "Meera",
	}
	seedContent = []string{
		"Hey, send me your number or else",
		"Buy followers cheap at totally-legit.example",
		"This profile uses someone else's photos",
		"Repeated unwanted messages after being asked to stop",
	}
)

func newFixture(now func() time.Time, cost int) (*fixture, error) {
	f := &fixture{
		now:       now,
		accounts:  map[string]*account{},
		purchases: map[string][]adminapi.Purchase{},
	}
	base := now().UTC().Truncate(time.Hour)

	if err := f.addAccount("admin-1", SeedAdminEmail, "bearound_admin", adminRole, SeedAdminPassword, cost, base.AddDate(-1, 0, 0)); err != nil {
		return nil, err
	}
	if err := f.addAccount("member-1", SeedMemberEmail, "bearound_member", "user", SeedMemberPassword, cost, base.AddDate(0, -6, 0)); err != nil {
		return nil, err
	}

	for i := 1; i <= seedAppUsers; i++ {
		name := seedNames[(i-1)%len(seedNames)]
		u := adminapi.User{
			ID:            fmt.Sprintf("user-%02d", i),
			Email:         fmt.Sprintf("%s%02d@example.com", strings.ToLower(name), i),
			Username:      fmt.Sprintf("%s_%02d", strings.ToLower(name), i),
			Role:          "user",
			AccountStatus: adminapi.StatusActive,
			IsPremium:     i%5 == 0,
			Profile:       adminapi.Profile{Name: name, Bio: "Here for good conversations."},
			CreatedAt:     base.AddDate(0, 0, -i*3),
			LastActiveAt:  base.Add(-time.Duration(i) * time.Hour),
		}
		if i%7 == 0 {
			u.AccountStatus = adminapi.StatusSuspended
		}
		f.accounts[u.ID] = &account{user: u}
		f.userOrder = append(f.userOrder, u.ID)
		if u.IsPremium {
			f.purchases[u.ID] = []adminapi.Purchase{{
				ID:          fmt.Sprintf("purchase-%02d", i),
				PackName:    "Monthly",
				PricePaid:   9900,
				PurchasedAt: u.CreatedAt.Add(48 * time.Hour),
				Status:      "completed",
			}}
		}
	}

	statuses := []string{"pending", "pending", "reviewing", "resolved", "escalated"}
	for i := 0; i < 8; i++ {
		r := &adminapi.Report{
			ID:          fmt.Sprintf("report-%02d", i+1),
			Reporter:    f.ref(fmt.Sprintf("user-%02d", i+1)),
			Reason:      adminapi.ReportReasons[i%len(adminapi.ReportReasons)],
			Description: "Reported from the app.",
			Priority:    adminapi.ReportPriorities[i%len(adminapi.ReportPriorities)],
			Status:      statuses[i%len(statuses)],
			CreatedAt:   base.Add(-time.Duration(i*5) * time.Hour),
		}
		r.ReportedUser = f.ref(fmt.Sprintf("user-%02d", i+9))
		r.ReportedContent.Type = "message"
		r.ReportedContent.ContentSnapshot = seedContent[i%len(seedContent)]
		if r.Status == "resolved" {
			r.Resolution.Action = "warning"
			r.Resolution.Notes = "First offence."
			r.Resolution.ResolvedAt = r.CreatedAt.Add(2 * time.Hour)
			r.ReviewedBy = f.ref("admin-1")
		}
		f.reports = append(f.reports, r)
	}

	subjects := []string{
		"App crashes when opening chat", "Please add dark mode", "Someone is harassing me",
		"Love the app!", "Payment went through but no premium", "Search shows deleted users",
	}
	for i, subject := range subjects {
		fb := &adminapi.Feedback{
			ID:        fmt.Sprintf("feedback-%02d", i+1),
			User:      f.ref(fmt.Sprintf("user-%02d", i+2)),
			Type:      adminapi.FeedbackTypes[i%len(adminapi.FeedbackTypes)],
			Subject:   subject,
			Message:   "**" + subject + "**\n\nSent from the in-app feedback form.",
			Status:    adminapi.FeedbackStatuses[i%3],
			CreatedAt: base.Add(-time.Duration(i*7) * time.Hour),
		}
		f.feedback = append(f.feedback, fb)
	}

	for i := 0; i < 10; i++ {
		f.blocks = append(f.blocks, &adminapi.Block{
			ID:        fmt.Sprintf("block-%02d", i+1),
			Blocker:   f.ref(fmt.Sprintf("user-%02d", i+1)),
			Blocked:   f.ref(fmt.Sprintf("user-%02d", seedAppUsers-i)),
			Reason:    adminapi.BlockReasons[i%len(adminapi.BlockReasons)],
			Source:    adminapi.BlockSources[i%len(adminapi.BlockSources)],
			CreatedAt: base.Add(-time.Duration(i*20) * time.Hour),
		})
	}

	f.config = adminapi.AppConfig{
		AppName:            "Bearound",
		AppVersion:         "1.4.0",
		MaintenanceMessage: "We'll be right back.",
		SupportContent: adminapi.SupportContent{
			HelpFAQ:          "## How do I reveal my identity?\n\nOpen the chat and tap **Reveal**.",
			SafetyGuidelines: "Never share personal details with people you have not met.",
		},
		LegalContent: adminapi.LegalContent{
			TermsOfService:      "# Terms of Service\n\nBe kind.",
			PrivacyPolicy:       "# Privacy Policy\n\nWe keep as little as we can.",
			CommunityGuidelines: "# Community Guidelines\n\nNo harassment, no spam.",
		},
	}
	f.flags = adminapi.FeatureFlags{}
	for i, k := range adminapi.FeatureFlagKeys {
		f.flags[k] = i%3 != 2
	}
	f.limits = adminapi.LimitsSettings{
		Limits: adminapi.Limits{
			MaxPhotos:         6,
			MaxBioLength:      500,
			MaxInterests:      10,
			MaxMessageLength:  1000,
			RequestExpiryDays: 7,
		},
		Moderation: adminapi.Moderation{AutoSuspendReportCount: 5, EnableAIModeration: true},
	}
	f.chatPayment = adminapi.ChatPayment{FreeMessageLimit: 3, PricePerMessageInPaisa: 500, PriceDisplay: "₹5"}
	f.features = []*adminapi.PremiumFeature{
		{FeatureID: "unlimited_requests", Name: "Unlimited requests", Description: "Send as many chat requests as you like", Category: "messaging", IsEnabled: true, FreeLimit: 5, PremiumLimit: adminapi.Unlimited},
		{FeatureID: "profile_views", Name: "See who viewed you", Description: "List of recent profile visitors", Category: "discovery", IsEnabled: true, FreeLimit: 0, PremiumLimit: adminapi.Unlimited},
		{FeatureID: "profile_boost", Name: "Profile boost", Description: "Appear first in discovery for an hour", Category: "discovery", IsEnabled: false, FreeLimit: 0, PremiumLimit: 3},
	}
	f.plans = []*adminapi.PremiumPlan{
		{PlanID: "monthly", Name: "Monthly", Description: "Billed every month", DurationDays: 30, PriceInPaisa: 9900, PriceDisplay: "₹99", IsActive: true},
		{PlanID: "yearly", Name: "Yearly", Description: "Billed every year", DurationDays: 365, PriceInPaisa: 79900, PriceDisplay: "₹799", Savings: "33% off", IsActive: true},
		{PlanID: "lifetime", Name: "Lifetime", Description: "Pay once", DurationDays: 0, PriceInPaisa: 199900, PriceDisplay: "₹1,999", IsActive: false},
	}

	f.log("admin-1", "config_updated", "config", "app", map[string]any{"appVersion": "1.4.0"})
	return f, nil
}

func (f *fixture) addAccount(id, email, username, role, password string, cost int, created time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}
	f.accounts[id] = &account{
		user: adminapi.User{
			ID:            id,
			Email:         email,
			Username:      username,
			Role:          role,
			AccountStatus: adminapi.StatusActive,
			Profile:       adminapi.Profile{Name: username},
			CreatedAt:     created,
		},
		passwordHash: hash,
	}
	f.userOrder = append(f.userOrder, id)
	return nil
}

// ref builds a populated user reference. Callers hold mu or are seeding.
func (f *fixture) ref(id string) adminapi.UserRef {
	acct, ok := f.accounts[id]
	if !ok {
		return adminapi.UserRef{ID: id}
	}
	return adminapi.UserRef{ID: id, Email: acct.user.Email, Username: acct.user.Username, Name: acct.user.Profile.Name}
}

func (f *fixture) account(id string) (adminapi.User, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	acct, ok := f.accounts[id]
	if !ok {
		return adminapi.User{}, false
	}
	return acct.user, true
}

// authenticate checks credentials. The same error covers unknown emails and
// wrong passwords.
func (f *fixture) authenticate(email, password string) (adminapi.User, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, acct := range f.accounts {
		if !strings.EqualFold(acct.user.Email, email) || acct.passwordHash == nil {
			continue
		}
		if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
			return adminapi.User{}, false
		}
		return acct.user, true
	}
	return adminapi.User{}, false
}

// log records an audit entry. Callers hold mu or are seeding.
func (f *fixture) log(actorID, action, entityType, entityID string, details map[string]any) {
	entry := adminapi.ActivityLog{
		ID:         uuid.NewString(),
		Actor:      f.ref(actorID),
		ActorType:  "admin",
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Result:     "success",
		CreatedAt:  f.now().UTC(),
	}
	if details != nil {
		entry.Details = mustJSON(details)
	}
	// Newest first.
	f.logs = append([]adminapi.ActivityLog{entry}, f.logs...)
}
