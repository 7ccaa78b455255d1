package application

import (
	"context"
	"fmt"
	"strings"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/infra/logging"
	"yakmarket-admin-bot/internal/infra/metrics"
	"yakmarket-admin-bot/internal/render"
)

type commandHandler func(ctx context.Context, m *Message, args []string) error

func (c *Console) commands() map[string]commandHandler {
	return map[string]commandHandler{
		"start":   c.cmdStart,
		"help":    c.cmdHelp,
		"users":   c.cmdUsers,
		"stats":   c.cmdStats,
		"pending": c.cmdPending,
		"warn":    c.cmdWarn,
		"unwarn":  c.cmdUserMutation("unwarn", "✅ Warnings of user %s cleared", c.users.Unwarn),
		"ban":     c.cmdUserMutation("ban", "🚫 User %s blocked", c.users.Block),
		"unban":   c.cmdUserMutation("unban", "✅ User %s unblocked", c.users.Unblock),
		"del":     c.cmdDelete,
		"audit":   c.cmdAudit,
	}
}

// parseCommand splits "/cmd@bot a b" into "cmd" and its arguments.
func parseCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), fields[1:], true
}

// HandleMessage serves text commands from operators. Everyone else gets no
// reply at all.
func (c *Console) HandleMessage(ctx context.Context, m *Message) error {
	ctx = logging.WithTgID(ctx, m.OperatorID)
	log := logging.With(ctx, c.log)

	if !c.gate.Allowed(m.OperatorID) {
		metrics.IncAccessDenied("message")
		log.Warn().Int64("chat_id", m.ChatID).Msg("message from non-operator ignored")
		return nil
	}
	if m.ChatID == 0 {
		m.ChatID = m.OperatorID
	}
	name, args, ok := parseCommand(m.Text)
	if !ok {
		return nil
	}
	if !c.allow(ctx, m.OperatorID, "command") {
		return c.reply(ctx, m.ChatID, render.Notice(ToastRateLimited), nil)
	}

	h, known := c.cmds[name]
	if !known {
		metrics.IncTelegramCommand("unknown")
		return c.reply(ctx, m.ChatID, render.HelpText(), nil)
	}
	metrics.IncTelegramCommand(name)
	if err := h(ctx, m, args); err != nil {
		log.Warn().Err(err).Str("command", name).Msg("command failed")
		return c.reply(ctx, m.ChatID, render.Notice(failureToast(err)), nil)
	}
	return nil
}

func (c *Console) cmdStart(ctx context.Context, m *Message, _ []string) error {
	text, rows := render.MainMenu()
	return c.reply(ctx, m.ChatID, text, rows)
}

func (c *Console) cmdHelp(ctx context.Context, m *Message, _ []string) error {
	text, rows := render.MainMenu()
	return c.reply(ctx, m.ChatID, render.HelpText()+"\n\n"+text, rows)
}

func (c *Console) cmdUsers(ctx context.Context, m *Message, _ []string) error {
	users, err := c.users.List(ctx)
	if err != nil {
		return err
	}
	text, rows := render.UserList(users, c.opts.Render)
	return c.reply(ctx, m.ChatID, text, rows)
}

func (c *Console) cmdStats(ctx context.Context, m *Message, _ []string) error {
	stats, err := c.users.Stats(ctx)
	if err != nil {
		return err
	}
	text, rows := render.Stats(stats, c.now())
	return c.reply(ctx, m.ChatID, text, rows)
}

func (c *Console) cmdPending(ctx context.Context, m *Message, _ []string) error {
	products, err := c.products.Pending(ctx, c.opts.PendingLimit)
	if err != nil {
		return err
	}
	text, rows := render.PendingList(products, c.opts.Render)
	return c.reply(ctx, m.ChatID, text, rows)
}

func usage(format string) string {
	return render.Notice("Usage: " + format)
}

func (c *Console) cmdWarn(ctx context.Context, m *Message, args []string) error {
	if len(args) == 0 {
		return c.reply(ctx, m.ChatID, usage("/warn <user_id> [reason]"), nil)
	}
	id := model.EntityID(args[0])
	reason := strings.Join(args[1:], " ")
	ctx = logging.WithEntityID(ctx, id.String())
	u, err := c.users.Warn(ctx, m.OperatorID, id, reason)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("⚠️ User %s warned", render.Notice(id.String()))
	if u != nil {
		text += fmt.Sprintf(" (now %d)", u.Warnings)
	}
	if reason != "" {
		text += "\n📝 Reason: " + render.Notice(reason)
	}
	c.refreshUserView(ctx, m.ChatID, u)
	return c.reply(ctx, m.ChatID, text, nil)
}

func (c *Console) cmdUserMutation(name, done string, mutate userMutator) commandHandler {
	return func(ctx context.Context, m *Message, args []string) error {
		if len(args) == 0 {
			return c.reply(ctx, m.ChatID, usage("/"+name+" <user_id>"), nil)
		}
		id := model.EntityID(args[0])
		ctx = logging.WithEntityID(ctx, id.String())
		u, err := mutate(ctx, m.OperatorID, id)
		if err != nil {
			return err
		}
		c.refreshUserView(ctx, m.ChatID, u)
		return c.reply(ctx, m.ChatID, fmt.Sprintf(done, render.Notice(id.String())), nil)
	}
}

func (c *Console) cmdDelete(ctx context.Context, m *Message, args []string) error {
	if len(args) == 0 {
		return c.reply(ctx, m.ChatID, usage("/del <user_id>"), nil)
	}
	id := model.EntityID(args[0])
	ctx = logging.WithEntityID(ctx, id.String())
	if err := c.users.Delete(ctx, m.OperatorID, id); err != nil {
		return err
	}
	return c.reply(ctx, m.ChatID, fmt.Sprintf("🗑 User %s deleted", render.Notice(id.String())), nil)
}

const auditHistoryLimit = 10

func (c *Console) cmdAudit(ctx context.Context, m *Message, args []string) error {
	if len(args) < 2 {
		return c.reply(ctx, m.ChatID, usage("/audit user|product <id>"), nil)
	}
	domainName := strings.ToLower(args[0])
	if domainName != model.DomainUser && domainName != model.DomainProduct {
		return c.reply(ctx, m.ChatID, usage("/audit user|product <id>"), nil)
	}
	if c.opts.History == nil {
		return c.reply(ctx, m.ChatID, render.Notice("Audit log is not configured"), nil)
	}
	id := model.EntityID(args[1])
	entries, err := c.opts.History.ListByEntity(ctx, domainName, id, auditHistoryLimit)
	if err != nil {
		return fmt.Errorf("audit history of %s %s: %w: %v", domainName, id, domain.ErrBackendUnavailable, err)
	}
	return c.reply(ctx, m.ChatID, render.AuditHistory(domainName, id, entries), nil)
}

// refreshUserView redraws a card this chat already has open for the user.
func (c *Console) refreshUserView(ctx context.Context, chatID int64, u *model.ManagedUser) {
	if u == nil {
		return
	}
	ref, ok, err := c.registry.UserView(ctx, u.ID, chatID)
	if err != nil || !ok {
		return
	}
	if err := c.showUserCard(ctx, chatID, &ref, u); err != nil {
		logging.With(ctx, c.log).Warn().Err(err).Msg("open user card not refreshed")
	}
}
