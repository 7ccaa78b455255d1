// Package render builds the HTML bodies and inline keyboards shown to
// operators. Everything interpolated from the backend is HTML-escaped.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
)

const (
	descriptionPreview = 200
	usernameButtonLen  = 20
)

type Options struct {
	Currency      string
	MaxTextLength int
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = "TJS"
	}
	if o.MaxTextLength <= 0 {
		o.MaxTextLength = 4000
	}
	return o
}

func button(text string, a model.Action) adapter.InlineButton {
	return adapter.InlineButton{Text: text, Data: a.String()}
}

func row(b ...adapter.InlineButton) []adapter.InlineButton { return b }

func esc(s string) string { return html.EscapeString(s) }

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n < 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// MainMenu is shown on /start and /help and by menu_main.
func MainMenu() (string, [][]adapter.InlineButton) {
	text := "👑 <b>ADMIN PANEL</b>\n\nChoose an action:"
	rows := [][]adapter.InlineButton{
		row(button("👥 Users", model.NewAction(model.DomainMenu, model.VerbUsers, ""))),
		row(button("📦 Products awaiting review", model.NewAction(model.DomainMenu, model.VerbProducts, ""))),
		row(button("📊 Statistics", model.NewAction(model.DomainMenu, model.VerbStats, ""))),
	}
	return text, rows
}

func HelpText() string {
	return "<b>Commands</b>\n\n" +
		"/users - list newest users\n" +
		"/stats - user statistics\n" +
		"/pending - products awaiting review\n" +
		"/warn &lt;id&gt; [reason] - warn a user\n" +
		"/unwarn &lt;id&gt; - clear warnings\n" +
		"/ban &lt;id&gt; - block a user\n" +
		"/unban &lt;id&gt; - unblock a user\n" +
		"/del &lt;id&gt; - delete a user\n" +
		"/audit user|product &lt;id&gt; - moderation history"
}

// AuditHistory lists recorded decisions for one entity.
func AuditHistory(domainName string, id model.EntityID, entries []*model.AuditEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📜 <b>History of %s %s</b>\n\n", esc(domainName), esc(id.String()))
	if len(entries) == 0 {
		b.WriteString("No audit entries")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s by <code>%d</code>: %s",
			e.CreatedAt.Format("2006-01-02 15:04"), esc(e.Verb), e.OperatorID, esc(e.Outcome))
		if e.Detail != "" {
			b.WriteString(" (" + esc(e.Detail) + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func backToMain() []adapter.InlineButton {
	return row(button("🔙 Main menu", model.NewAction(model.DomainMenu, model.VerbMain, "")))
}

// Stats renders totals for the sampled users.
func Stats(s model.UserStats, at time.Time) (string, [][]adapter.InlineButton) {
	text := fmt.Sprintf("📊 <b>STATISTICS</b>\n\n"+
		"👥 Total users: %d\n"+
		"🚫 Blocked: %d\n"+
		"⚠️ With warnings: %d\n"+
		"✅ Active: %d\n\n"+
		"🕐 Updated: %s",
		s.Total, s.Blocked, s.Warned, s.Active, at.Format("15:04:05"))
	return text, [][]adapter.InlineButton{backToMain()}
}

func Notice(text string) string { return esc(text) }
