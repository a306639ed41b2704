package handler

import (
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finbot/internal/domain"
	"finbot/internal/i18n"
	"finbot/internal/repository"
	"finbot/internal/service"
)

// tfunc renders a catalogue key in a fixed language.
type tfunc = func(key string, args ...any) string

// botAPI is the slice of the telebot surface the handler drives outside a
// per-update context: registering routes and editing menu messages by ID.
type botAPI interface {
	Handle(endpoint any, h tele.HandlerFunc, m ...tele.MiddlewareFunc)
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
	Edit(msg tele.Editable, what any, opts ...any) (*tele.Message, error)
	EditReplyMarkup(msg tele.Editable, markup *tele.ReplyMarkup) (*tele.Message, error)
}

// Handler manages all bot interactions.
type Handler struct {
	bot          botAPI
	users        repository.UserRepository
	wallets      *service.WalletService
	categories   *service.CategoryService
	transactions *service.TransactionService
	registrar    *service.Registrar
	stats        *service.StatsService
	catalog      *i18n.Catalog
	logger       *zap.Logger

	// Per-user turn serialization: two concurrent events from the same
	// user would race on the expectation read-modify-write otherwise.
	// Cross-user events run in parallel.
	userLocks map[int64]*sync.Mutex
	lockMux   sync.Mutex
}

// NewHandler creates a new handler instance.
func NewHandler(
	bot botAPI,
	users repository.UserRepository,
	wallets *service.WalletService,
	categories *service.CategoryService,
	transactions *service.TransactionService,
	registrar *service.Registrar,
	stats *service.StatsService,
	catalog *i18n.Catalog,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		users:        users,
		wallets:      wallets,
		categories:   categories,
		transactions: transactions,
		registrar:    registrar,
		stats:        stats,
		catalog:      catalog,
		logger:       logger,
		userLocks:    make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers.
func (h *Handler) RegisterHandlers() {
	h.bot.Handle("/start", h.handleCommand)
	h.bot.Handle("/help", h.handleCommand)
	h.bot.Handle("/wallets", h.handleCommand)
	h.bot.Handle("/categories", h.handleCommand)
	h.bot.Handle("/transactions", h.handleCommand)
	h.bot.Handle("/stats", h.handleCommand)

	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// lockUser serializes turns of a single user. The returned function
// releases the lock.
func (h *Handler) lockUser(telegramID int64) func() {
	h.lockMux.Lock()
	lock, exists := h.userLocks[telegramID]
	if !exists {
		lock = &sync.Mutex{}
		h.userLocks[telegramID] = lock
	}
	h.lockMux.Unlock()

	lock.Lock()
	return lock.Unlock
}

// loadUser fetches the user's fresh state. Always called after the user
// lock is held so the expectation read below cannot be stale.
func (h *Handler) loadUser(c tele.Context) (*domain.User, error) {
	return h.users.GetByTelegramID(c.Sender().ID)
}

// translate binds the catalogue to the user's language.
func (h *Handler) translate(u *domain.User) tfunc {
	return h.catalog.Func(u.Language)
}

// saveState persists the user's whole conversation state. Every mutation
// commits before the reply goes out, so a restart between turns is safe.
func (h *Handler) saveState(u *domain.User) error {
	return h.users.UpdateExpectation(u.ID, u.Expectation)
}

// rememberPrompt stores the prompt's message ID after it was sent, used to
// detect stray replies to outdated prompts.
func (h *Handler) rememberPrompt(u *domain.User, msg *tele.Message) {
	if msg == nil {
		return
	}
	u.Expectation.Message = msg.ID
	if err := h.saveState(u); err != nil {
		h.logger.Warn("failed to store prompt message id", zap.Error(err))
	}
}

// cleanCallbackData removes all non-printable characters from callback
// data.
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError deals with c.Edit failures: an already-modified message
// only needs the callback acknowledged, anything else falls back to
// sending a new message.
func (h *Handler) handleEditError(err error, c tele.Context) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		c.Respond()
		return nil
	}

	h.logger.Warn("failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", c.Sender().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// respondOrSend edits the message behind a callback or sends a new one for
// plain messages.
func (h *Handler) respondOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		if err := c.Edit(text, markup); err != nil {
			if handled := h.handleEditError(err, c); handled == nil {
				return nil
			}
			return c.Send(text, markup)
		}
		return c.Respond()
	}
	return c.Send(text, markup)
}
