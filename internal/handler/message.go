package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finbot/internal/domain"
	"finbot/internal/service"
)

// handleCommand handles the registered slash commands. A command always
// interrupts whatever sub-flow was in progress: expectation and pending
// transaction are discarded unconditionally.
func (h *Handler) handleCommand(c tele.Context) error {
	unlock := h.lockUser(c.Sender().ID)
	defer unlock()

	u, err := h.loadUser(c)
	if err != nil || u == nil {
		h.logger.Error("failed to load user", zap.Error(err))
		return nil
	}

	if !u.HasLanguage() {
		return h.sendLanguageSelection(c)
	}

	u.Expectation.Reset()
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to reset state", zap.Error(err))
		return c.Send(h.translate(u)("generic_error"))
	}

	T := h.translate(u)
	command := strings.Fields(c.Text())[0]
	switch command {
	case "/start":
		return h.sendMainMenu(c, u, T)
	case "/help":
		return c.Send(T("help"))
	case "/wallets":
		return h.sendWalletsMenu(c, u, T, 1, 0)
	case "/categories":
		return h.sendCategoriesMenu(c, u, T)
	case "/transactions":
		now := time.Now()
		return h.sendTransactionsMenu(c, u, T, now.Year(), int(now.Month()), 1, 0)
	case "/stats":
		return h.sendStats(c, u, T)
	}
	return c.Send(T("unknown_command"))
}

// handleText handles all free-text messages based on the user's current
// expectation.
func (h *Handler) handleText(c tele.Context) error {
	unlock := h.lockUser(c.Sender().ID)
	defer unlock()

	u, err := h.loadUser(c)
	if err != nil || u == nil {
		h.logger.Error("failed to load user", zap.Error(err))
		return nil
	}

	if !u.HasLanguage() {
		return h.sendLanguageSelection(c)
	}

	T := h.translate(u)
	text := strings.TrimSpace(c.Text())

	// Unregistered commands still interrupt sub-flows.
	if strings.HasPrefix(text, "/") {
		u.Expectation.Reset()
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to reset state", zap.Error(err))
			return c.Send(T("generic_error"))
		}
		return c.Send(T("unknown_command"))
	}

	switch u.Expectation.Expect.Type {
	case "", domain.ExpectNone:
		return h.handleTransactionInput(c, u, T, text)
	case domain.ExpectNewCategory:
		return h.handleNewCategoryInput(c, u, T, text)
	case domain.ExpectNewWallet:
		return h.handleNewWalletInput(c, u, T, text)
	case domain.ExpectEditCategory:
		return h.handleEditCategoryInput(c, u, T, text)
	case domain.ExpectEditWallet:
		return h.handleEditWalletInput(c, u, T, text)
	case domain.ExpectEditTransaction:
		return h.handleEditTransactionInput(c, u, T, text)
	case domain.ExpectRescheduleTransaction:
		return h.handleRescheduleInput(c, u, T, text)
	case domain.ExpectNewCategoryAlias, domain.ExpectNewWalletAlias:
		// Alias confirmation is button-driven; free text is a stray
		// reply, the expectation stays put.
		return c.Send(T("alias_use_buttons_hint"))
	case domain.ExpectPage:
		return h.handlePageJumpInput(c, u, T, text)
	default:
		h.logger.Error("unexpected expectation type",
			zap.String("type", string(u.Expectation.Expect.Type)),
			zap.Int64("telegram_id", u.TelegramID),
		)
		return nil
	}
}

// handleTransactionInput parses an idle-state message as a transaction
// attempt and feeds it to the registrar.
func (h *Handler) handleTransactionInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	pending, err := domain.ParseTransactionLine(text)
	if err != nil {
		// Validation failures leave state untouched; the reply names the
		// first failing check.
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("error_empty_message"))
		case errors.Is(err, domain.ErrMissingInfo):
			return c.Send(T("error_missing_info"))
		case errors.Is(err, domain.ErrNonNumericSum):
			return c.Send(T("error_non_numeric_sum"))
		case errors.Is(err, domain.ErrSignRequired):
			return c.Send(T("error_sign_required"))
		}
		return c.Send(T("generic_error"))
	}

	return h.registerPending(c, u, T, pending)
}

// handleNewCategoryInput treats the reply as the name for the category
// being created.
func (h *Handler) handleNewCategoryInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	category, err := h.categories.Create(u, text)
	if err != nil {
		// The expectation is retained: the user is re-prompted with a
		// specific message and can try another name.
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("got_empty_message_for_category"))
		case errors.Is(err, domain.ErrMultiWordName):
			return c.Send(T("multiple_word_category_name_error"))
		case errors.Is(err, domain.ErrNameTaken):
			return c.Send(T("non_unique_category_name_error"))
		}
		h.logger.Error("failed to create category", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	if err := c.Send(T("category_created", category.Name)); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

// parseWalletLine parses "currency initSum [name]" used by the wallet
// creation and edit flows.
func parseWalletLine(text, fallbackName string) (currency string, initSum decimal.Decimal, name string, err error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "", decimal.Zero, "", domain.ErrMissingInfo
	}

	currency = parts[0]
	initSum, parseErr := decimal.NewFromString(strings.ReplaceAll(parts[1], ",", "."))
	if parseErr != nil {
		return "", decimal.Zero, "", domain.ErrNonNumericSum
	}

	name = fallbackName
	if len(parts) > 2 {
		name = strings.Join(parts[2:], " ")
	}
	if name == "" {
		return "", decimal.Zero, "", domain.ErrEmptyMessage
	}
	return currency, initSum, name, nil
}

// handleNewWalletInput treats the reply as "currency initSum [name]" for
// the wallet being created. The name falls back to the originally typed
// wallet text when the creation was triggered by a pending transaction.
func (h *Handler) handleNewWalletInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	currency, initSum, name, err := parseWalletLine(text, u.Expectation.Expect.Data.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingInfo):
			return c.Send(T("wallet_creation_format_hint"))
		case errors.Is(err, domain.ErrNonNumericSum):
			return c.Send(T("non_numerical_init_sum_error"))
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("unspecified_wallet_name_error"))
		}
		return c.Send(T("generic_error"))
	}

	wallet, err := h.wallets.Create(u, name, currency, initSum)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedCurrency):
			return c.Send(T("unsupported_currency_error", currency))
		case errors.Is(err, domain.ErrNameTaken):
			return c.Send(T("non_unique_wallet_name_error"))
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("unspecified_wallet_name_error"))
		}
		h.logger.Error("failed to create wallet", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	if err := c.Send(T("wallet_created", wallet.Name, wallet.Currency,
		domain.FormatAmount(wallet.InitSum))); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

// handleEditCategoryInput renames the category held in the expectation
// payload.
func (h *Handler) handleEditCategoryInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	id, err := domain.ParseHexID(u.Expectation.Expect.Data.EntityID)
	if err != nil {
		h.logger.Error("bad entity id in expectation", zap.Error(err))
		return nil
	}

	category, err := h.categories.Rename(u, id, text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("got_empty_message_for_category"))
		case errors.Is(err, domain.ErrMultiWordName):
			return c.Send(T("multiple_word_category_name_error"))
		case errors.Is(err, domain.ErrNameTaken):
			return c.Send(T("non_unique_category_name_error"))
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDeleted):
			return c.Send(T("category_action_ownership_check_failed"))
		}
		h.logger.Error("failed to rename category", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	if err := c.Send(T("category_edited_successfully", category.Name)); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

// handleEditWalletInput applies "currency initSum name" to the wallet held
// in the expectation payload.
func (h *Handler) handleEditWalletInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	id, err := domain.ParseHexID(u.Expectation.Expect.Data.EntityID)
	if err != nil {
		h.logger.Error("bad entity id in expectation", zap.Error(err))
		return nil
	}

	currency, initSum, name, err := parseWalletLine(text, "")
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingInfo):
			return c.Send(T("got_empty_message_for_wallet"))
		case errors.Is(err, domain.ErrNonNumericSum):
			return c.Send(T("non_numerical_init_sum_error"))
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("unspecified_wallet_name_error"))
		}
		return c.Send(T("generic_error"))
	}

	wallet, err := h.wallets.Edit(u, id, name, currency, initSum)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedCurrency):
			return c.Send(T("unsupported_currency_error", currency))
		case errors.Is(err, domain.ErrNameTaken):
			return c.Send(T("non_unique_wallet_name_error"))
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDeleted):
			return c.Send(T("wallet_action_ownership_check_failed"))
		}
		h.logger.Error("failed to edit wallet", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	if err := c.Send(T("wallet_edited_successfully", wallet.Name,
		wallet.Currency, domain.FormatAmount(wallet.InitSum))); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

// handleEditTransactionInput replaces the transaction held in the
// expectation payload with a freshly parsed tuple.
func (h *Handler) handleEditTransactionInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	id, err := domain.ParseHexID(u.Expectation.Expect.Data.EntityID)
	if err != nil {
		h.logger.Error("bad entity id in expectation", zap.Error(err))
		return nil
	}

	pending, err := domain.ParseTransactionLine(text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			return c.Send(T("error_empty_message"))
		case errors.Is(err, domain.ErrMissingInfo):
			return c.Send(T("error_missing_info"))
		case errors.Is(err, domain.ErrNonNumericSum):
			return c.Send(T("error_non_numeric_sum"))
		case errors.Is(err, domain.ErrSignRequired):
			return c.Send(T("error_sign_required"))
		}
		return c.Send(T("generic_error"))
	}

	res, err := h.registrar.Replace(u, id, pending)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryUnresolved):
			return c.Send(T("edit_transaction_unknown_category"))
		case errors.Is(err, service.ErrWalletUnresolved):
			return c.Send(T("edit_transaction_unknown_wallet"))
		case errors.Is(err, domain.ErrNotFound):
			return c.Send(T("transaction_action_ownership_check_failed"))
		}
		h.logger.Error("failed to replace transaction", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	u.Expectation.Reset()
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to reset state", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	return c.Send(T("transaction_registered",
		domain.FormatAmount(res.Transaction.Sum),
		res.Category.Name,
		res.Wallet.Name,
		domain.FormatAmount(res.Wallet.Balance()),
		res.Wallet.Currency,
	))
}

// handleRescheduleInput parses "YYYY-MM-DD [HH:MM]" and moves the
// transaction held in the expectation payload.
func (h *Handler) handleRescheduleInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	id, err := domain.ParseHexID(u.Expectation.Expect.Data.EntityID)
	if err != nil {
		h.logger.Error("bad entity id in expectation", zap.Error(err))
		return nil
	}

	when, err := parseRescheduleDate(text)
	if err != nil {
		return c.Send(T("reschedule_format_hint"))
	}

	if err := h.registrar.Reschedule(u, id, when.Unix()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Send(T("transaction_action_ownership_check_failed"))
		}
		h.logger.Error("failed to reschedule transaction", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	if err := c.Send(T("transaction_rescheduled", when.UTC().Format("2006-01-02 15:04"))); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

func parseRescheduleDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if t, err := time.ParseInLocation("2006-01-02 15:04", text, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", text, time.UTC)
}

// handlePageJumpInput interprets a bare number as a jump within the menu
// the page expectation was stored for. A parsed number consumes the
// expectation before the menu renders, so the next free-text message is a
// transaction again.
func (h *Handler) handlePageJumpInput(c tele.Context, u *domain.User, T tfunc, text string) error {
	page, err := strconv.Atoi(text)
	if err != nil {
		return c.Send(T("page_jump_hint"))
	}

	data := u.Expectation.Expect.Data
	u.Expectation.Reset()
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to reset state", zap.Error(err))
		return c.Send(T("generic_error"))
	}

	switch data.Kind {
	case domain.KindWallet:
		return h.sendWalletsMenu(c, u, T, page, data.MsgID)
	default:
		return h.sendTransactionsMenu(c, u, T, data.Year, data.Month, page, data.MsgID)
	}
}
