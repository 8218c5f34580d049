// Package telegram provides the messaging channel for the reclamos service.
//
// This package handles:
//   - Sending rendered complaints as plain-text messages
//   - Sending photos (by URL or uploaded PNG card)
//   - Long polling for updates and answering the complaint keyword
//   - Notifying an ops chat about every accepted complaint
//
// Architecture:
//   - Client: bot token, ops chat ID and the HTTP client
//   - Update loop: background goroutine long polling getUpdates
//   - WorkerPool: answers incoming messages concurrently
//   - KeywordResponder: the "reclamo" flow
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reclamos/internal/api"
	"reclamos/internal/complaint"
	"reclamos/internal/config"
	apperrors "reclamos/internal/errors"
	"reclamos/internal/metrics"
	"reclamos/internal/render"
)

// pollTimeout is the long polling timeout passed to getUpdates, in seconds.
const pollTimeout = 30

// pollGrace is how long getUpdates may run past pollTimeout before the
// request is abandoned.
const pollGrace = 10 * time.Second

// Client represents a Telegram bot client.
//
// A nil *Client is valid: notifications are skipped and dispatch fails with
// a DispatchError, so the rest of the service runs without a bot.
type Client struct {
	BotToken  string
	ChatID    string // Ops chat for intake notifications, optional
	APIURL    string
	DebugMode bool

	// RequestTimeout bounds every call except getUpdates
	RequestTimeout time.Duration

	httpClient *http.Client
}

// Message types for Telegram API

// Message represents a Telegram text message for sending.
type Message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// PhotoMessage sends a photo by URL with an optional caption.
type PhotoMessage struct {
	ChatID  string `json:"chat_id"`
	Photo   string `json:"photo"`
	Caption string `json:"caption,omitempty"`
}

// Update represents a Telegram update from getUpdates.
type Update struct {
	UpdateID int              `json:"update_id"`
	Message  *IncomingMessage `json:"message,omitempty"`
}

// IncomingMessage represents a received Telegram message.
type IncomingMessage struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat,omitempty"`
	Text      string `json:"text"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// User represents a Telegram user.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// apiResponse is the envelope of every Bot API response.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// sentMessage is the part of a sent message we read back.
type sentMessage struct {
	MessageID int `json:"message_id"`
}

// NewClient creates a new Telegram client from configuration.
//
// Configuration:
//   - TELEGRAM_BOT_TOKEN: Bot API token from @BotFather
//   - TELEGRAM_CHAT_ID: Ops chat receiving intake notifications (optional)
//   - DEBUG_MODE: If "true", skip actual API calls
//
// Returns:
//   - *Client: Configured Telegram client, or nil if no token is set
func NewClient(cfg *config.Config) *Client {
	if !cfg.TelegramEnabled() {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set. Telegram bot disabled.")
		return nil
	}

	if cfg.TelegramChatID == "" {
		log.Println("   → TELEGRAM_CHAT_ID not set, intake notifications disabled")
	}
	if cfg.DebugMode {
		log.Println("🐛 DEBUG MODE ENABLED - API calls will be simulated")
	}

	log.Println("✓ Telegram configured successfully")

	// Deadlines are set per request (see requestContext), so the shared
	// client carries none: a long poll must not lengthen a send.
	return &Client{
		BotToken:       cfg.TelegramBotToken,
		ChatID:         cfg.TelegramChatID,
		APIURL:         cfg.TelegramAPIURL,
		DebugMode:      cfg.DebugMode,
		RequestTimeout: cfg.HTTPTimeout,
		httpClient:     api.NewHTTPClient(0),
	}
}

// requestContext derives the deadline for one Bot API call.
//
// getUpdates is held open by Telegram for pollTimeout seconds; every other
// method gets RequestTimeout (30s when unset).
func (c *Client) requestContext(ctx context.Context, method string) (context.Context, context.CancelFunc) {
	if method == "getUpdates" {
		return context.WithTimeout(ctx, pollTimeout*time.Second+pollGrace)
	}
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.APIURL, c.BotToken, method)
}

// doRequest sends a JSON request to the Bot API and returns the result field.
func (c *Client) doRequest(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := c.requestContext(ctx, method)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// doMultipart uploads a file to the Bot API.
func (c *Client) doMultipart(ctx context.Context, method string, fields map[string]string, fileField, fileName string, file []byte) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	ctx, cancel := c.requestContext(ctx, method)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !result.OK {
		return nil, fmt.Errorf("Telegram API error (HTTP %d): %s", resp.StatusCode, result.Description)
	}

	return result.Result, nil
}

// SendMessage sends a plain-text message and returns its message ID.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (int, error) {
	if c.DebugMode {
		log.Printf("   🐛 [debug] sendMessage to %s: %q", chatID, text)
		metrics.DispatchTotal.WithLabelValues("text", "success").Inc()
		return 0, nil
	}

	result, err := c.doRequest(ctx, "sendMessage", Message{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	metrics.DispatchTotal.WithLabelValues("text", metrics.Result(err)).Inc()
	if err != nil {
		return 0, err
	}

	var sent sentMessage
	_ = json.Unmarshal(result, &sent)
	return sent.MessageID, nil
}

// SendLines sends each line as its own message, in order.
//
// Stops at the first failure and returns it as a DispatchError.
func (c *Client) SendLines(ctx context.Context, chatID string, lines []string) error {
	if c == nil {
		return apperrors.NewDispatchError(chatID, fmt.Errorf("telegram not configured"))
	}

	for _, line := range lines {
		if _, err := c.SendMessage(ctx, chatID, line); err != nil {
			return apperrors.NewDispatchError(chatID, err)
		}
	}
	return nil
}

// Dispatch delivers a message to a destination chat.
//
// With a media URL the message becomes the caption of a photo.
//
// Returns:
//   - error: *errors.DispatchError on failure
func (c *Client) Dispatch(ctx context.Context, destination, message, mediaURL string) error {
	if c == nil {
		return apperrors.NewDispatchError(destination, fmt.Errorf("telegram not configured"))
	}

	if mediaURL == "" {
		if _, err := c.SendMessage(ctx, destination, message); err != nil {
			return apperrors.NewDispatchError(destination, err)
		}
		return nil
	}

	if c.DebugMode {
		log.Printf("   🐛 [debug] sendPhoto to %s: %s %q", destination, mediaURL, message)
		metrics.DispatchTotal.WithLabelValues("photo", "success").Inc()
		return nil
	}

	_, err := c.doRequest(ctx, "sendPhoto", PhotoMessage{
		ChatID:  destination,
		Photo:   mediaURL,
		Caption: message,
	})
	metrics.DispatchTotal.WithLabelValues("photo", metrics.Result(err)).Inc()
	if err != nil {
		return apperrors.NewDispatchError(destination, err)
	}
	return nil
}

// SendCard uploads a PNG as a photo with a caption.
func (c *Client) SendCard(ctx context.Context, chatID, caption string, png []byte) error {
	if c == nil {
		return apperrors.NewDispatchError(chatID, fmt.Errorf("telegram not configured"))
	}

	if c.DebugMode {
		log.Printf("   🐛 [debug] sendPhoto upload to %s (%d bytes)", chatID, len(png))
		metrics.DispatchTotal.WithLabelValues("photo", "success").Inc()
		return nil
	}

	_, err := c.doMultipart(ctx, "sendPhoto", map[string]string{
		"chat_id": chatID,
		"caption": caption,
	}, "photo", "complaint.png", png)
	metrics.DispatchTotal.WithLabelValues("photo", metrics.Result(err)).Inc()
	if err != nil {
		return apperrors.NewDispatchError(chatID, err)
	}
	return nil
}

// Notify sends an accepted complaint to the ops chat: the full-detail text
// followed by the summary card.
//
// Skipped when the client or the ops chat is not configured.
func (c *Client) Notify(ctx context.Context, record complaint.Record) error {
	if c == nil || c.ChatID == "" {
		return nil
	}

	log.Printf("   📨 Notifying ops chat about complaint %s...", record.Reference)

	if _, err := c.SendMessage(ctx, c.ChatID, strings.Join(render.Detail(record), "\n")); err != nil {
		return apperrors.NewDispatchError(c.ChatID, err)
	}

	card, err := render.Card(record)
	if err != nil {
		// The text already went out; a missing card is not worth failing for
		log.Printf("   ⚠️  Failed to render complaint card: %v", err)
		return nil
	}
	if err := c.SendCard(ctx, c.ChatID, record.Reference, card); err != nil {
		return err
	}

	log.Println("   ✓ Ops chat notified")
	return nil
}

// getUpdates fetches new updates using long polling.
//
// Parameters:
//   - offset: Update ID to start from (acknowledges earlier updates)
func (c *Client) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message"},
	}

	result, err := c.doRequest(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// HandleUpdates listens for incoming messages and hands them to a worker
// pool running handler. It blocks until ctx is cancelled.
//
// Update processing loop:
//  1. Long poll for updates
//  2. Submit each message to the pool
//  3. Advance the offset to acknowledge processed updates
//  4. Repeat until the context is cancelled
func (c *Client) HandleUpdates(ctx context.Context, handler MessageHandler, workers int) {
	if c == nil {
		log.Println("⚠️  Telegram not configured, update handler disabled")
		return
	}
	if c.DebugMode {
		log.Println("🐛 DEBUG MODE - not polling Telegram for updates")
		<-ctx.Done()
		return
	}

	pool := NewWorkerPool(ctx, handler, workers)
	defer pool.Close()

	log.Println("✓ Starting Telegram update handler...")
	offset := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Telegram update handler stopped")
			return
		default:
		}

		updates, err := c.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("⚠️  Error getting Telegram updates: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.Message != nil {
				pool.Submit(*update.Message)
			}
			offset = update.UpdateID + 1
		}
	}
}

// ChatDestination formats a chat ID as a dispatch destination.
func ChatDestination(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
