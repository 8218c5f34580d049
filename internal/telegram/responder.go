package telegram

import (
	"context"
	"log"
	"strings"

	"reclamos/internal/metrics"
	"reclamos/internal/render"
)

// LatestRenderer produces the display lines of the most recent complaint.
type LatestRenderer interface {
	RenderLatest(ctx context.Context) []string
}

// LineSender delivers lines to a chat, one message per line.
type LineSender interface {
	SendLines(ctx context.Context, chatID string, lines []string) error
}

// KeywordResponder answers the complaint keyword with the latest complaint.
//
// Flow on a matching message:
//  1. Acknowledge ("One moment, looking up your complaint...")
//  2. Send the rendered lines of the most recent complaint
//
// Other messages are ignored.
type KeywordResponder struct {
	keyword  string
	sender   LineSender
	renderer LatestRenderer
}

// NewKeywordResponder creates a responder for keyword.
func NewKeywordResponder(keyword string, sender LineSender, renderer LatestRenderer) *KeywordResponder {
	return &KeywordResponder{
		keyword:  strings.TrimSpace(keyword),
		sender:   sender,
		renderer: renderer,
	}
}

// Matches reports whether text triggers the responder.
// Matching ignores case and surrounding whitespace.
func (k *KeywordResponder) Matches(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), k.keyword)
}

// HandleMessage implements MessageHandler.
func (k *KeywordResponder) HandleMessage(ctx context.Context, msg IncomingMessage) error {
	if msg.Chat == nil || !k.Matches(msg.Text) {
		return nil
	}

	chatID := ChatDestination(msg.Chat.ID)
	log.Printf("🤖 Keyword %q from chat %s", k.keyword, chatID)
	metrics.BotTriggers.Inc()

	if err := k.sender.SendLines(ctx, chatID, []string{render.LookupAcknowledge}); err != nil {
		return err
	}
	return k.sender.SendLines(ctx, chatID, k.renderer.RenderLatest(ctx))
}
