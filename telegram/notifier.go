package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	keepalive "github.com/Imtiaz-Official/iso-toolkit-telegram-bot"
)

// Notifier delivers alert messages to the owner's chat.
type Notifier struct {
	sender Sender
	chatID int64
}

// NewNotifier creates a Notifier sending to the given chat.
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{
		sender: sender,
		chatID: chatID,
	}
}

// Send delivers a single text message. Delivery is best-effort: the
// caller logs and swallows errors.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.chatID == 0 {
		return fmt.Errorf("no owner chat configured")
	}

	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	return nil
}

// Compile-time check.
var _ keepalive.Notifier = (*Notifier)(nil)
