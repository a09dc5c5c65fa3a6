package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	cmap "github.com/orcaman/concurrent-map/v2"

	keepalive "github.com/Imtiaz-Official/iso-toolkit-telegram-bot"
)

// Sender is the part of the Telegram API the gateway needs for replies.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Config holds gateway settings.
type Config struct {
	// OwnerID is always authorized and is the only user who may manage
	// access. Zero means no owner; every command is then refused.
	OwnerID int64

	// AllowedUsers are additional user IDs authorized at startup.
	AllowedUsers []int64

	// WakeRetryDelay is the pause before the second wake attempt.
	WakeRetryDelay time.Duration
}

// Gateway receives bot commands over long polling and dispatches them to
// the scheduler. Unauthorized users are silently ignored.
type Gateway struct {
	bot            *tgbotapi.BotAPI
	sender         Sender
	sched          *keepalive.Scheduler
	ownerID        int64
	wakeRetryDelay time.Duration
	allowed        cmap.ConcurrentMap[string, struct{}]
	logger         *slog.Logger
}

// New creates a Gateway on top of a connected Telegram bot.
func New(bot *tgbotapi.BotAPI, sched *keepalive.Scheduler, cfg Config, logger *slog.Logger) *Gateway {
	g := newGateway(bot, sched, cfg, logger)
	g.bot = bot
	return g
}

func newGateway(sender Sender, sched *keepalive.Scheduler, cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WakeRetryDelay <= 0 {
		cfg.WakeRetryDelay = 5 * time.Second
	}

	g := &Gateway{
		sender:         sender,
		sched:          sched,
		ownerID:        cfg.OwnerID,
		wakeRetryDelay: cfg.WakeRetryDelay,
		allowed:        cmap.New[struct{}](),
		logger:         logger,
	}
	for _, id := range cfg.AllowedUsers {
		g.allowed.Set(userKey(id), struct{}{})
	}
	return g
}

// Run polls for updates until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := g.bot.GetUpdatesChan(u)

	g.logger.Info("command gateway started", "bot", g.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			g.bot.StopReceivingUpdates()
			g.logger.Info("command gateway stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			g.handleUpdate(ctx, update)
		}
	}
}

func (g *Gateway) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() || msg.From == nil {
		return
	}

	userID := msg.From.ID
	if !g.authorized(userID) {
		g.logger.Info("ignoring unauthorized command",
			"user_id", userID,
			"command", msg.Command(),
		)
		return
	}

	var reply string
	switch msg.Command() {
	case "start", "help":
		reply = g.helpText()
	case "check":
		reply = g.handleCheck(ctx)
	case "wake":
		reply = g.handleWake(ctx)
	case "status":
		reply = g.handleStatus()
	case "stats":
		reply = g.handleStats()
	case "allow":
		reply = g.handleAllow(userID, msg.CommandArguments())
	case "deny":
		reply = g.handleDeny(userID, msg.CommandArguments())
	case "users":
		reply = g.handleUsers(userID)
	default:
		return
	}

	if reply == "" {
		return
	}
	if _, err := g.sender.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		g.logger.Error("failed to send reply", "error", err, "command", msg.Command())
	}
}

func (g *Gateway) authorized(userID int64) bool {
	if g.ownerID != 0 && userID == g.ownerID {
		return true
	}
	return g.allowed.Has(userKey(userID))
}

func (g *Gateway) handleCheck(ctx context.Context) string {
	snap := g.sched.TriggerCheck(ctx)
	return formatCheck(snap, g.sched.Target())
}

// handleWake pings the target and, if that fails, pauses and tries once
// more. A deployment that was spun down often answers the second request.
func (g *Gateway) handleWake(ctx context.Context) string {
	var snap keepalive.Snapshot
	op := func() error {
		snap = g.sched.TriggerCheck(ctx)
		if !snap.Up() {
			return fmt.Errorf("wake ping failed: %s", snap.LastReason)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.wakeRetryDelay), 1),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		g.logger.Warn("wake failed", "error", err)
	}

	return formatWake(snap, g.sched.Target())
}

func (g *Gateway) handleStatus() string {
	return formatStatus(g.sched.Status(), g.sched.Checking(), g.sched.Running(), g.sched.Target(), g.sched.Interval())
}

func (g *Gateway) handleStats() string {
	return formatStats(g.sched.Status(), time.Now())
}

func (g *Gateway) handleAllow(userID int64, args string) string {
	if userID != g.ownerID {
		return "Owner only command."
	}

	target, err := parseUserID(args)
	if err != nil {
		return "Usage: /allow <user_id>"
	}
	if !g.allowed.SetIfAbsent(userKey(target), struct{}{}) {
		return fmt.Sprintf("User %d is already authorized.", target)
	}

	g.logger.Info("granted access", "user_id", target)
	return fmt.Sprintf("User %d has been granted access.", target)
}

func (g *Gateway) handleDeny(userID int64, args string) string {
	if userID != g.ownerID {
		return "Owner only command."
	}

	target, err := parseUserID(args)
	if err != nil {
		return "Usage: /deny <user_id>"
	}
	if target == g.ownerID {
		return "Cannot revoke the owner's access."
	}
	if !g.allowed.Has(userKey(target)) {
		return fmt.Sprintf("User %d is not in the allowed list.", target)
	}
	g.allowed.Remove(userKey(target))

	g.logger.Info("revoked access", "user_id", target)
	return fmt.Sprintf("Access revoked from user %d.", target)
}

func (g *Gateway) handleUsers(userID int64) string {
	if userID != g.ownerID {
		return "Owner only command."
	}

	keys := g.allowed.Keys()
	sort.Strings(keys)

	text := fmt.Sprintf("Authorized users:\nOwner: %d\n", g.ownerID)
	if len(keys) == 0 {
		text += "No additional users allowed. Use /allow <user_id> to grant access."
	} else {
		text += fmt.Sprintf("Allowed (%d):\n", len(keys))
		for _, k := range keys {
			text += "  " + k + "\n"
		}
	}
	return text
}

func (g *Gateway) helpText() string {
	return fmt.Sprintf(`I keep %s awake.

Commands:
/check - Check if the site is online
/wake - Wake up the site
/status - Show bot and site status
/stats - Show ping statistics
/allow <user_id> - Grant access (owner only)
/deny <user_id> - Revoke access (owner only)
/users - List authorized users (owner only)
/help - Show this message

Auto-ping runs every %v.`, g.sched.Target(), g.sched.Interval())
}

func parseUserID(args string) (int64, error) {
	fields := splitArgs(args)
	if len(fields) != 1 {
		return 0, fmt.Errorf("expected exactly one user id")
	}
	return strconv.ParseInt(fields[0], 10, 64)
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
