// ABOUTME: Login and logout handlers for the dashboard
// ABOUTME: Only admin-role users get a persisted session; the browser id rotates on login

package webadmin

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/session"
)

// Login view texts.
const (
	msgLoginFailed      = "Login failed"
	msgLoginRejected    = "Login failed. Please check your credentials."
	msgNotAdmin         = "You do not have admin access"
	msgLoginSuccess     = "Login successful!"
	msgMissingFields    = "Email and password are required"
	msgInvalidForm      = "Invalid form data"
	msgInvalidCSRFRetry = "Invalid request, please try again"
)

type loginPage struct {
	Email string
}

func errorNotice(text string) apiclient.Notice {
	return apiclient.Notice{Level: apiclient.LevelError, Text: text}
}

func successNotice(text string) apiclient.Notice {
	return apiclient.Notice{Level: apiclient.LevelSuccess, Text: text}
}

// handleLoginPage renders the login page
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r.Context())

	// If already logged in, redirect to dashboard
	if err := st.sessions.Rehydrate(r.Context()); err == nil && st.sessions.Snapshot().IsAdmin() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	a.render(w, r, http.StatusOK, "login.html", "Login", loginPage{}, "")
}

// handleLogin processes login form submission
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := stateFrom(ctx)

	if err := r.ParseForm(); err != nil {
		st.notify(errorNotice(msgInvalidForm))
		a.render(w, r, http.StatusBadRequest, "login.html", "Login", loginPage{}, "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	page := loginPage{Email: email}

	if !a.validateCSRF(r) {
		st.notify(errorNotice(msgInvalidCSRFRetry))
		a.render(w, r, http.StatusForbidden, "login.html", "Login", page, "")
		return
	}

	password := r.FormValue("password")
	if email == "" || password == "" {
		st.notify(errorNotice(msgMissingFields))
		a.render(w, r, http.StatusOK, "login.html", "Login", page, "")
		return
	}

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		// The client stays quiet about these on the login view.
		switch apiclient.Classify(err) {
		case apiclient.AuthExpired, apiclient.ValidationFailed:
			re, _ := apiclient.AsResponse(err)
			st.notify(errorNotice(re.Summary(msgLoginFailed)))
		}
		a.render(w, r, http.StatusOK, "login.html", "Login", page, "")
		return
	}

	if !res.Success || res.Result.Tokens.AccessToken == "" {
		st.notify(errorNotice(msgLoginRejected))
		a.render(w, r, http.StatusOK, "login.html", "Login", page, "")
		return
	}

	user := res.Result.User
	if user.Role != session.AdminRole {
		a.logger.Info("rejected non-admin login", "user_id", user.ID, "role", user.Role)
		st.notify(errorNotice(msgNotAdmin))
		a.render(w, r, http.StatusOK, "login.html", "Login", page, "")
		return
	}

	// New browser id so a planted cookie cannot ride the new session.
	oldBID := st.browserID
	newBID := uuid.NewString()
	sessions := a.sessionStore(newBID)
	if err := sessions.SetAuth(ctx, user, res.Result.Tokens.AccessToken); err != nil {
		a.logger.Error("failed to persist session", "error", err)
		st.notify(errorNotice(msgLoginFailed))
		a.render(w, r, http.StatusOK, "login.html", "Login", page, "")
		return
	}

	if err := st.sessions.Logout(ctx); err != nil {
		a.logger.Warn("failed to clear previous session", "error", err)
	}
	a.cache.DropScope(oldBID)

	st.browserID = newBID
	st.sessions = sessions
	a.setBrowserCookie(w, r, newBID)

	st.notify(successNotice(msgLoginSuccess))
	a.queueNotices(ctx, st)

	a.logger.Info("admin login successful", "user_id", user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout logs out the current browser
func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := stateFrom(ctx)

	if err := r.ParseForm(); err == nil {
		// Validate CSRF - but don't block logout if invalid
		if !a.validateCSRF(r) {
			a.logger.Warn("logout request with invalid CSRF token")
		}
	}

	if err := st.sessions.Logout(ctx); err != nil {
		a.logger.Warn("failed to clear session", "error", err)
	}
	a.cache.DropScope(st.browserID)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
