// ABOUTME: Table and value formatting for CLI output
// ABOUTME: tabwriter tables, thousands separators, and rupee prices

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bearound/bearound-admin/internal/adminapi"
)

var printer = message.NewPrinter(language.English)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func header(w io.Writer, cells ...string) {
	bold := color.New(color.Bold)
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = bold.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}

func rupees(paisa int) string {
	return printer.Sprintf("₹%.2f", float64(paisa)/100)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func limit(n int) string {
	if n == adminapi.Unlimited {
		return "unlimited"
	}
	return count(n)
}

func onOff(b bool) string {
	if b {
		return color.GreenString("on")
	}
	return color.HiBlackString("off")
}

func statusText(s string) string {
	switch s {
	case adminapi.StatusActive, "resolved":
		return color.GreenString(s)
	case adminapi.StatusSuspended, "pending", "new":
		return color.YellowString(s)
	case adminapi.StatusDeleted, "escalated":
		return color.RedString(s)
	default:
		return s
	}
}

func pager(w io.Writer, p adminapi.Pagination) {
	if p.TotalPages == 0 {
		return
	}
	fmt.Fprintf(w, "\nPage %d of %d (%s total)\n", p.Current(), p.TotalPages, count(p.Total))
}

// parseSwitch accepts on/off style values.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "enable", "enabled", "1":
		return true, nil
	case "off", "false", "no", "disable", "disabled", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
