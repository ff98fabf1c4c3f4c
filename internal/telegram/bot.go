package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cookdna/internal/app"
	"cookdna/internal/config"
	"cookdna/internal/feed"
	"cookdna/internal/metrics"
	"cookdna/internal/pantry"
	"cookdna/internal/personality"
	"cookdna/internal/planner"
	"cookdna/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	sessionTTL = 24 * time.Hour
	// commandTimeout bounds the work done for one chat message.
	commandTimeout = 30 * time.Second
)

// Service is the part of the application the bot drives.
type Service interface {
	Onboard(ctx context.Context, userID string, selection personality.Archetype) (personality.Profile, error)
	BuildFeed(ctx context.Context, userID string, req app.FeedRequest) ([]feed.Card, error)
	ProposePlan(ctx context.Context, userID string, req app.PlanRequest) (planner.WeeklyPlanProposal, error)
	SwapDay(ctx context.Context, userID string, p planner.WeeklyPlanProposal, index int, req app.PlanRequest) (planner.WeeklyPlanProposal, error)
	AcceptPlan(ctx context.Context, userID string, p planner.WeeklyPlanProposal, items []pantry.Item) (*shopping.ShoppingList, error)
	RecordCooks(ctx context.Context, userID string, cooks []app.Cook) (app.CookResult, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API and the personalisation service.
type Bot struct {
	api      sender
	service  Service
	sessions *SessionRepository
	cfg      *config.Config
	started  time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, service Service, sessions *SessionRepository) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("Authorized on Telegram")

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Info().Str("response", resp.Description).Msg("Webhook set")
	}

	return &Bot{
		api:      api,
		service:  service,
		sessions: sessions,
		cfg:      cfg,
		started:  time.Now(),
	}, nil
}

// RegisterHandlers registers the webhook, health and metrics endpoints on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", b.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
}

func (b *Bot) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(metrics.GetSysHealth(b.cfg.DatabasePath, b.started)); err != nil {
		log.Error().Err(err).Msg("Failed to write health response")
	}
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("Error parsing update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.cfg.IsAllowedUser(msg.From.ID) {
		log.Warn().Int64("user_id", msg.From.ID).Str("username", msg.From.UserName).Msg("Unauthorized access attempt")
		return
	}

	go b.processMessage(msg)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	userID := strconv.FormatInt(msg.From.ID, 10)
	for _, text := range b.handleText(ctx, userID, msg.Text) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		reply.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(reply); err != nil {
			log.Error().Err(err).Str("user", userID).Msg("Failed to send reply")
		}
	}
}

// handleText runs one chat command and returns the Markdown replies.
func (b *Bot) handleText(ctx context.Context, userID, text string) []string {
	cmd, args := parseCommand(text)
	logger := log.With().Str("user", userID).Str("command", cmd).Logger()

	var (
		replies []string
		err     error
	)
	switch cmd {
	case "start":
		replies, err = b.handleStart(ctx, userID, args)
	case "feed":
		replies, err = b.handleFeed(ctx, userID)
	case "plan":
		replies, err = b.handlePlan(ctx, userID, args)
	case "swap":
		replies, err = b.handleSwap(ctx, userID, args)
	case "accept":
		replies, err = b.handleAccept(ctx, userID)
	case "cooked":
		replies, err = b.handleCooked(ctx, userID, args)
	default:
		return []string{helpText}
	}

	var usage usageError
	switch {
	case errors.As(err, &usage):
		return []string{string(usage)}
	case errors.Is(err, app.ErrNotOnboarded):
		return []string{"🧬 Tell me how you cook first: " + archetypeUsage}
	case errors.Is(err, planner.ErrNoAlternative):
		return []string{"🤷 Nothing else fits that day. The plan is unchanged."}
	case err != nil:
		logger.Error().Err(err).Msg("Command failed")
		return []string{"❌ Something went wrong. Please try again."}
	}
	return replies
}

// usageError is shown to the user verbatim.
type usageError string

func (e usageError) Error() string { return string(e) }

func (b *Bot) handleStart(ctx context.Context, userID, args string) ([]string, error) {
	if args == "" {
		return nil, usageError("👋 Welcome! " + archetypeUsage)
	}
	a, err := personality.ParseArchetype(args)
	if err != nil {
		return nil, usageError("🤔 I don't know that one. " + archetypeUsage)
	}
	p, err := b.service.Onboard(ctx, userID, a)
	if err != nil {
		return nil, err
	}
	return []string{formatProfile(p), helpText}, nil
}

func (b *Bot) handleFeed(ctx context.Context, userID string) ([]string, error) {
	cards, err := b.service.BuildFeed(ctx, userID, app.FeedRequest{})
	if err != nil {
		return nil, err
	}
	return []string{formatFeed(cards, feedPreviewCards)}, nil
}

func (b *Bot) handlePlan(ctx context.Context, userID, args string) ([]string, error) {
	modes, err := parseDayModes(args)
	if err != nil {
		return nil, err
	}
	req := PlanArgs{DayModes: modes}
	p, err := b.service.ProposePlan(ctx, userID, req.request())
	if err != nil {
		return nil, err
	}
	req.WeekStart = p.WeekStart
	data := SessionContextData{Proposal: p, Request: req}
	if _, err := b.sessions.Create(ctx, userID, sessionTypePlan, stateProposed, data, sessionTTL); err != nil {
		return nil, err
	}
	return []string{formatPlan(p)}, nil
}

func (b *Bot) handleSwap(ctx context.Context, userID, args string) ([]string, error) {
	session, data, err := b.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	index, ok := dayIndex(data.Proposal, args)
	if !ok {
		return nil, usageError("📅 Which day? For example `/swap wed`.")
	}

	swapped, err := b.service.SwapDay(ctx, userID, data.Proposal, index, data.Request.request())
	if err != nil {
		return nil, err
	}
	data.Proposal = swapped
	data.Swaps++
	if err := b.sessions.Update(ctx, session.ID, stateSwapped, data); err != nil {
		return nil, err
	}
	return []string{formatPlan(swapped)}, nil
}

func (b *Bot) handleAccept(ctx context.Context, userID string) ([]string, error) {
	session, data, err := b.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := b.service.AcceptPlan(ctx, userID, data.Proposal, nil)
	if err != nil {
		return nil, err
	}
	if err := b.sessions.Delete(ctx, session.ID); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Failed to close plan session")
	}
	return []string{"✅ *Plan locked in!*", formatShoppingList(list)}, nil
}

func (b *Bot) handleCooked(ctx context.Context, userID, args string) ([]string, error) {
	const usage = usageError("🍳 Usage: `/cooked <recipe-id> <minutes> [rating 1-5]`")
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return nil, usage
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil || minutes <= 0 {
		return nil, usage
	}
	rating := 0
	if len(fields) == 3 {
		rating, err = strconv.Atoi(fields[2])
		if err != nil || rating < 1 || rating > 5 {
			return nil, usage
		}
	}

	res, err := b.service.RecordCooks(ctx, userID, []app.Cook{{RecipeID: fields[0], Minutes: minutes, Rating: rating}})
	if err != nil {
		return nil, err
	}
	return []string{formatCookResult(res)}, nil
}

func (b *Bot) activePlan(ctx context.Context, userID string) (*Session, SessionContextData, error) {
	session, err := b.sessions.GetActive(ctx, userID, sessionTypePlan)
	if err != nil {
		return nil, SessionContextData{}, err
	}
	if session == nil {
		return nil, SessionContextData{}, usageError("🗓 No plan in progress. Send /plan first.")
	}
	data, err := session.GetContextData()
	if err != nil {
		return nil, SessionContextData{}, fmt.Errorf("failed to read session %d: %w", session.ID, err)
	}
	return session, data, nil
}

// parseCommand splits "/swap@cookdna_bot wed" into "swap" and "wed".
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args, _ := strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// dayIndex finds the plan day matching a weekday name, a three letter
// abbreviation or a 1-based position in the plan.
func dayIndex(p planner.WeeklyPlanProposal, arg string) (int, bool) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		return n - 1, n >= 1 && n <= len(p.Days)
	}
	if dow, ok := weekday(arg); ok {
		for i, d := range p.Days {
			if d.DayOfWeek == dow {
				return i, true
			}
		}
	}
	return 0, false
}

// weekday parses a lower-case weekday name or a prefix of three letters or more.
func weekday(arg string) (int, bool) {
	for dow := time.Sunday; dow <= time.Saturday; dow++ {
		name := strings.ToLower(dow.String())
		if name == arg || (len(arg) >= 3 && strings.HasPrefix(name, arg)) {
			return int(dow), true
		}
	}
	return 0, false
}

// parseDayModes reads "/plan" arguments such as "wed=skip sat=go_nuts".
func parseDayModes(args string) (map[int]planner.DayMode, error) {
	const usage = usageError("🗓 Usage: `/plan [day=mode ...]` with modes usual, mix_it_up, go_nuts, skip or leftover.")
	fields := strings.Fields(strings.ToLower(args))
	if len(fields) == 0 {
		return nil, nil
	}
	modes := make(map[int]planner.DayMode, len(fields))
	for _, f := range fields {
		day, name, ok := strings.Cut(f, "=")
		if !ok {
			return nil, usage
		}
		dow, ok := weekday(day)
		if !ok {
			return nil, usage
		}
		mode, err := planner.ParseDayMode(name)
		if err != nil {
			return nil, usage
		}
		modes[dow] = mode
	}
	return modes, nil
}
