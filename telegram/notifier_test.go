package telegram

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierSend(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, ownerID)

	err := n.Send(context.Background(), "site appears down")
	require.NoError(t, err)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "site appears down", msgs[0])
	assert.Equal(t, ownerID, sender.sent[0].ChatID)
}

func TestNotifierNoChatConfigured(t *testing.T) {
	n := NewNotifier(&fakeSender{}, 0)

	err := n.Send(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNotifierSendError(t *testing.T) {
	sender := &fakeSender{err: fmt.Errorf("telegram unreachable")}
	n := NewNotifier(sender, ownerID)

	err := n.Send(context.Background(), "hello")
	assert.ErrorContains(t, err, "telegram unreachable")
}

func TestNotifierCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, ownerID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Send(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.messages(), "nothing is sent on a dead context")
}
