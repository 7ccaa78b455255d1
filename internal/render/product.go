package render

import (
	"fmt"
	"strings"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
)

const (
	PublishedMarker = "✅ <b>PUBLISHED</b>"
	RejectedMarker  = "❌ <b>REJECTED</b>"

	markerSep = "\n\n"
)

// Telegram hands message text back without entities, so markers are also
// recognised in their plain form.
var markers = []string{
	PublishedMarker, RejectedMarker,
	"✅ PUBLISHED", "❌ REJECTED",
}

func MarkerFor(s model.ModerationState) string {
	switch s {
	case model.Published:
		return PublishedMarker
	case model.Rejected:
		return RejectedMarker
	}
	return ""
}

// StripMarkers removes any trailing terminal markers from body.
func StripMarkers(body string) string {
	for {
		trimmed := false
		for _, m := range markers {
			if strings.HasSuffix(body, markerSep+m) {
				body = strings.TrimSuffix(body, markerSep+m)
				trimmed = true
			} else if body == m {
				body = ""
				trimmed = true
			}
		}
		if !trimmed {
			return body
		}
	}
}

// WithMarker replaces whatever terminal marker body carries with marker, so
// applying it twice yields the same text.
func WithMarker(body, marker string) string {
	body = StripMarkers(body)
	if marker == "" {
		return body
	}
	if body == "" {
		return marker
	}
	return body + markerSep + marker
}

// ProductCard renders the moderation notification body.
func ProductCard(p *model.Product, opts Options) string {
	opts = opts.withDefaults()
	var b strings.Builder
	b.WriteString("⚡️ <b>NEW PRODUCT FOR REVIEW!</b>\n\n")
	fmt.Fprintf(&b, "📦 <b>%s</b>\n", esc(orNA(p.Title)))
	fmt.Fprintf(&b, "💰 Price: %s %s\n\n", esc(orNA(p.Price)), esc(opts.Currency))
	if d := strings.TrimSpace(p.Description); d != "" {
		short := Truncate(d, descriptionPreview)
		if short != d {
			short += "..."
		}
		fmt.Fprintf(&b, "📝 %s\n\n", esc(short))
	}
	fmt.Fprintf(&b, "🆔 ID: <code>%s</code>", esc(p.ID.String()))
	return b.String()
}

func ProductKeyboard(id model.EntityID) [][]adapter.InlineButton {
	return [][]adapter.InlineButton{row(
		button("✅ Approve", model.NewAction(model.DomainProduct, model.VerbApprove, id)),
		button("❌ Reject", model.NewAction(model.DomainProduct, model.VerbReject, id)),
	)}
}

// PendingList lists products awaiting review with one review button each.
// Entries that do not fit the length cap are left out of the text whole.
func PendingList(products []*model.Product, opts Options) (string, [][]adapter.InlineButton) {
	opts = opts.withDefaults()
	if len(products) == 0 {
		return "📦 <b>PRODUCTS AWAITING REVIEW</b>\n\nNothing to review.", [][]adapter.InlineButton{backToMain()}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📦 <b>PRODUCTS AWAITING REVIEW</b> (%d):\n\n", len(products))
	truncated := false
	rows := make([][]adapter.InlineButton, 0, len(products)+1)
	for i, p := range products {
		entry := fmt.Sprintf("%d. <b>%s</b> - %s %s\n", i+1, esc(orNA(p.Title)), esc(orNA(p.Price)), esc(opts.Currency))
		if !truncated && len([]rune(b.String()))+len([]rune(entry)) <= opts.MaxTextLength-4 {
			b.WriteString(entry)
		} else {
			truncated = true
		}
		label := fmt.Sprintf("%d. %s", i+1, Truncate(orNA(p.Title), usernameButtonLen))
		rows = append(rows, row(button(label, model.NewAction(model.DomainProduct, model.VerbReview, p.ID))))
	}
	if truncated {
		b.WriteString("…")
	}
	rows = append(rows, backToMain())
	return b.String(), rows
}

// ProductStatus is sent as a fresh message when no notification could be
// edited.
func ProductStatus(id model.EntityID, s model.ModerationState) string {
	return fmt.Sprintf("📦 Product <code>%s</code>\n\n%s", esc(id.String()), MarkerFor(s))
}
