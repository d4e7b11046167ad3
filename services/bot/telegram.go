package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sjsage522/hotdealbot/internal/deal"
	"sjsage522/hotdealbot/logger"
	"sjsage522/hotdealbot/services/store"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier is the outbound surface the worker needs: actionable deal alerts
// and plain system notices.
type Notifier interface {
	SendDealAlert(dealID uint64, text string) error
	SendSystemMessage(text string) error
}

// TelegramBot sends triage alerts with inline status buttons and handles the
// operator's commands and button callbacks over the Bot HTTP API. Every
// inbound update from a sender other than the configured admin is silently
// dropped.
type TelegramBot struct {
	apiBase string
	token   string
	adminID string
	store   store.DealStore
	client  *http.Client
	log     *logger.Logger
}

var _ Notifier = (*TelegramBot)(nil)

// NewTelegramBot wires the bot. An empty apiBase falls back to the public
// Telegram API; tests point it at an httptest server.
func NewTelegramBot(apiBase, token, adminID string, st store.DealStore) *TelegramBot {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &TelegramBot{
		apiBase: apiBase,
		token:   token,
		adminID: adminID,
		store:   st,
		// Long polling holds the connection up to 25s; leave headroom.
		client: &http.Client{Timeout: 35 * time.Second},
		log:    logger.ForBot(),
	}
}

// Telegram update payload shapes, reduced to the fields this bot reads.

type tgUser struct {
	ID int64 `json:"id"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgMessage struct {
	MessageID int64   `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      tgChat  `json:"chat"`
	Text      string  `json:"text"`
}

type tgCallbackQuery struct {
	ID      string     `json:"id"`
	From    *tgUser    `json:"from"`
	Message *tgMessage `json:"message"`
	Data    string     `json:"data"`
}

type tgUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *tgMessage       `json:"message"`
	CallbackQuery *tgCallbackQuery `json:"callback_query"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// SendDealAlert posts the alert message to the admin chat with the two triage
// buttons attached. The callback payload carries the deal id and the target
// status.
func (b *TelegramBot) SendDealAlert(dealID uint64, text string) error {
	keyboard := map[string]any{
		"inline_keyboard": [][]map[string]string{{
			{"text": "✅ 업로드 완료", "callback_data": fmt.Sprintf("status_UPLOADED_%d", dealID)},
			{"text": "⏳ 보류", "callback_data": fmt.Sprintf("status_PENDING_%d", dealID)},
		}},
	}
	markup, err := json.Marshal(keyboard)
	if err != nil {
		return fmt.Errorf("marshal keyboard: %w", err)
	}

	form := url.Values{}
	form.Set("chat_id", b.adminID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")
	form.Set("reply_markup", string(markup))

	_, err = b.call(context.Background(), "sendMessage", form)
	return err
}

// SendSystemMessage posts a plain notice (e.g. the per-cycle "no updates"
// liveness signal) to the admin chat.
func (b *TelegramBot) SendSystemMessage(text string) error {
	form := url.Values{}
	form.Set("chat_id", b.adminID)
	form.Set("text", text)

	_, err := b.call(context.Background(), "sendMessage", form)
	return err
}

// Poll runs the getUpdates long-poll loop until the context is cancelled.
// Transport errors back off briefly and the loop continues; inbound handling
// never kills the listener.
func (b *TelegramBot) Poll(ctx context.Context) error {
	// Drop a webhook left over from a previous deployment; getUpdates and
	// webhooks are mutually exclusive.
	if _, err := b.call(ctx, "deleteWebhook", url.Values{"drop_pending_updates": {"true"}}); err != nil {
		b.log.Warn().Err(err).Msg("deleteWebhook failed")
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.fetchUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Error().Err(err).Msg("getUpdates failed")
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.dispatch(ctx, u)
		}
	}
}

func (b *TelegramBot) fetchUpdates(ctx context.Context, offset int64) ([]tgUpdate, error) {
	form := url.Values{}
	form.Set("timeout", "25")
	if offset > 0 {
		form.Set("offset", strconv.FormatInt(offset, 10))
	}

	resp, err := b.call(ctx, "getUpdates", form)
	if err != nil {
		return nil, err
	}

	var updates []tgUpdate
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (b *TelegramBot) dispatch(ctx context.Context, u tgUpdate) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

// handleMessage handles operator commands. Only /pending is supported.
func (b *TelegramBot) handleMessage(ctx context.Context, msg *tgMessage) {
	if msg.From == nil || !b.isAdmin(msg.From.ID) {
		return
	}

	if !strings.HasPrefix(msg.Text, "/pending") {
		return
	}

	pending, err := b.store.ListByStatus(deal.StatusPending)
	if err != nil {
		b.log.Error().Err(err).Msg("listing pending deals failed")
		return
	}

	if len(pending) == 0 {
		if err := b.SendSystemMessage("보류 중인 핫딜이 없습니다."); err != nil {
			b.log.Error().Err(err).Msg("sending pending reply failed")
		}
		return
	}

	var sb strings.Builder
	sb.WriteString("⏳ **보류 중인 핫딜 목록**\n\n")
	for _, d := range pending {
		sb.WriteString(fmt.Sprintf("- [%s](%s) (점수: %g)\n", d.Title, d.URL, d.TotalScore))
	}

	form := url.Values{}
	form.Set("chat_id", b.adminID)
	form.Set("text", sb.String())
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	if _, err := b.call(ctx, "sendMessage", form); err != nil {
		b.log.Error().Err(err).Msg("sending pending list failed")
	}
}

// handleCallback applies the tapped status transition. On success the button
// row is removed from the alert so the same message cannot be actioned twice;
// on failure the operator sees an alert and the buttons stay.
func (b *TelegramBot) handleCallback(ctx context.Context, cb *tgCallbackQuery) {
	if cb.From == nil || !b.isAdmin(cb.From.ID) {
		return
	}

	action, dealID, err := parseCallbackData(cb.Data)
	if err != nil {
		b.log.Warn().Str("data", cb.Data).Err(err).Msg("unparseable callback payload")
		return
	}

	ok, err := b.store.SetStatus(dealID, action)
	if err != nil {
		b.log.Error().Err(err).Uint64("deal_id", dealID).Msg("status update failed")
	}

	if err != nil || !ok {
		b.answerCallback(ctx, cb.ID, "상태 업데이트에 실패했습니다. DB를 확인하십시오.", true)
		return
	}

	statusText := "보류됨"
	if action == deal.StatusUploaded {
		statusText = "업로드 완료"
	}
	b.answerCallback(ctx, cb.ID, fmt.Sprintf("상태가 '%s'(으)로 변경되었습니다.", statusText), false)

	if cb.Message != nil {
		b.removeKeyboard(ctx, cb.Message.Chat.ID, cb.Message.MessageID)
	}
}

// parseCallbackData splits a "status_<TARGET>_<id>" payload.
func parseCallbackData(data string) (deal.Status, uint64, error) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[0] != "status" {
		return "", 0, fmt.Errorf("unexpected callback data %q", data)
	}

	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parse deal id: %w", err)
	}

	return deal.Status(parts[1]), id, nil
}

func (b *TelegramBot) answerCallback(ctx context.Context, callbackID, text string, showAlert bool) {
	form := url.Values{}
	form.Set("callback_query_id", callbackID)
	form.Set("text", text)
	if showAlert {
		form.Set("show_alert", "true")
	}

	if _, err := b.call(ctx, "answerCallbackQuery", form); err != nil {
		b.log.Error().Err(err).Msg("answerCallbackQuery failed")
	}
}

func (b *TelegramBot) removeKeyboard(ctx context.Context, chatID, messageID int64) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("reply_markup", `{"inline_keyboard":[]}`)

	if _, err := b.call(ctx, "editMessageReplyMarkup", form); err != nil {
		b.log.Error().Err(err).Msg("removing inline keyboard failed")
	}
}

func (b *TelegramBot) isAdmin(userID int64) bool {
	return strconv.FormatInt(userID, 10) == b.adminID
}

// call posts a form-encoded request to one Bot API method and decodes the
// standard response envelope.
func (b *TelegramBot) call(ctx context.Context, method string, form url.Values) (*apiResponse, error) {
	if b.token == "" || b.adminID == "" {
		return nil, fmt.Errorf("telegram bot misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", b.apiBase, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram %s error: %s", method, parsed.Description)
	}

	return &parsed, nil
}
