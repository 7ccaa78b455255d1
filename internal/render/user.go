package render

import (
	"fmt"
	"strings"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
)

func statusGlyph(u *model.ManagedUser) string {
	switch u.Status() {
	case model.UserBlocked:
		return "🚫"
	case model.UserWarned:
		return "⚠️"
	default:
		return "✅"
	}
}

func listStatus(u *model.ManagedUser) string {
	switch u.Status() {
	case model.UserBlocked:
		return "🚫 blocked"
	case model.UserWarned:
		return fmt.Sprintf("⚠️ %d warning(s)", u.Warnings)
	default:
		return "✅ active"
	}
}

// UserList renders one entry and one button per user. Entries that would
// push the text over the length cap are dropped from the text but keep their
// button.
func UserList(users []*model.ManagedUser, opts Options) (string, [][]adapter.InlineButton) {
	opts = opts.withDefaults()
	if len(users) == 0 {
		return "👥 <b>USERS</b>\n\nNo users found.", [][]adapter.InlineButton{backToMain()}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 <b>USERS</b> (total %d):\n\n", len(users))
	truncated := false
	rows := make([][]adapter.InlineButton, 0, len(users)+1)
	for i, u := range users {
		name := orNA(u.Username)
		entry := fmt.Sprintf("%d. %s <b>%s</b>\n   📧 %s\n\n", i+1, listStatus(u), esc(name), esc(orNA(u.Email)))
		if !truncated && len([]rune(b.String()))+len([]rune(entry)) <= opts.MaxTextLength-4 {
			b.WriteString(entry)
		} else {
			truncated = true
		}
		label := fmt.Sprintf("%d. %s %s", i+1, Truncate(name, usernameButtonLen), statusGlyph(u))
		rows = append(rows, row(button(label, model.NewAction(model.DomainUser, model.VerbSelect, u.ID))))
	}
	if truncated {
		b.WriteString("…")
	}
	rows = append(rows, backToMain())
	return b.String(), rows
}

// UserCard renders the detail view with block XOR unblock.
func UserCard(u *model.ManagedUser) (string, [][]adapter.InlineButton) {
	created := "N/A"
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.Format("2006-01-02")
	}
	status := "✅ Active"
	if u.Blocked {
		status = "🚫 Blocked"
	}
	text := fmt.Sprintf("👤 <b>USER</b>\n\n"+
		"🆔 ID: <code>%s</code>\n"+
		"📛 Name: %s\n"+
		"📧 Email: %s\n"+
		"📱 Phone: %s\n"+
		"📅 Registered: %s\n"+
		"📊 Status: %s\n"+
		"⚠️ Warnings: %d\n\n"+
		"Choose an action:",
		esc(u.ID.String()), esc(orNA(u.Username)), esc(orNA(u.Email)), esc(orNA(u.Phone)),
		created, status, u.Warnings)

	block := button("🚫 Block", model.NewAction(model.DomainUser, model.VerbBlock, u.ID))
	if u.Blocked {
		block = button("✅ Unblock", model.NewAction(model.DomainUser, model.VerbUnblock, u.ID))
	}
	rows := [][]adapter.InlineButton{
		row(block),
		row(
			button("⚠️ Warn", model.NewAction(model.DomainUser, model.VerbWarn, u.ID)),
			button("✅ Clear warnings", model.NewAction(model.DomainUser, model.VerbUnwarn, u.ID)),
		),
		row(button("🗑 Delete", model.NewAction(model.DomainUser, model.VerbDelete, u.ID))),
		row(button("🔙 Back", model.NewAction(model.DomainUser, model.VerbBack, ""))),
	}
	return text, rows
}

// UserDeleted is the terminal card after a delete.
func UserDeleted(id model.EntityID) (string, [][]adapter.InlineButton) {
	text := fmt.Sprintf("🗑 <b>USER DELETED</b>\n\nID: <code>%s</code>\n\n✅ The user was removed from the system", esc(id.String()))
	return text, [][]adapter.InlineButton{
		row(button("🔙 Back to list", model.NewAction(model.DomainUser, model.VerbList, ""))),
	}
}
