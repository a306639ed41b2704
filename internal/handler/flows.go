package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finbot/internal/domain"
	"finbot/internal/service"
)

// languageOptions lists the selectable languages in button order. Only
// codes with a loaded locale file are offered.
var languageOptions = []struct {
	Code  string
	Label string
}{
	{"en", "🇬🇧 English"},
	{"uk", "🇺🇦 Українська"},
	{"ru", "🇷🇺 Русский"},
}

// sendLanguageSelection asks a user without a language to pick one. The
// prompt itself is rendered in the default language since nothing else is
// known yet.
func (h *Handler) sendLanguageSelection(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, opt := range languageOptions {
		if !h.catalog.Has(opt.Code) {
			continue
		}
		rows = append(rows, markup.Row(markup.Data(opt.Label, "lang_"+opt.Code)))
	}
	markup.Inline(rows...)

	T := h.catalog.Func("")
	return c.Send(T("choose_language"), markup)
}

// registerPending runs one registration attempt for the tuple and turns
// the registrar's outcome into the next prompt. State is always persisted
// before the reply goes out.
func (h *Handler) registerPending(c tele.Context, u *domain.User, T tfunc, pending domain.PendingTransaction) error {
	res, err := h.registrar.Register(u, pending)
	if err != nil {
		h.logger.Error("failed to register transaction",
			zap.Error(err),
			zap.Int64("telegram_id", u.TelegramID),
		)
		return c.Send(T("generic_error"))
	}

	switch res.Outcome {
	case service.OutcomeCommitted:
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

	case service.OutcomeAwaitingCategoryCreation:
		u.Expectation.SetPending(pending)
		u.Expectation.SetExpectation(domain.ExpectNewCategory, domain.ExpectData{Name: pending.Category})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Send(T("generic_error"))
		}
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(
			markup.Data(T("approve_button"), "category_approve"),
			markup.Data(T("cancel_button"), "category_cancel"),
		))
		msg, err := h.bot.Send(c.Recipient(), T("unknown_category_prompt", pending.Category), markup)
		if err != nil {
			return err
		}
		h.rememberPrompt(u, msg)
		return nil

	case service.OutcomeAwaitingWalletCreation:
		u.Expectation.SetPending(pending)
		u.Expectation.SetExpectation(domain.ExpectNewWallet, domain.ExpectData{Name: pending.Wallet})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Send(T("generic_error"))
		}
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(
			markup.Data(T("cancel_button"), "wallet_cancel"),
		))
		msg, err := h.bot.Send(c.Recipient(), T("unknown_wallet_prompt", pending.Wallet), markup)
		if err != nil {
			return err
		}
		h.rememberPrompt(u, msg)
		return nil

	case service.OutcomeAwaitingCategoryAliasConfirm:
		u.Expectation.SetPending(pending)
		u.Expectation.SetExpectation(domain.ExpectNewCategoryAlias, domain.ExpectData{
			Typed:    pending.Category,
			EntityID: domain.HexID(res.Match.EntityID),
			Name:     res.Match.Name,
		})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Send(T("generic_error"))
		}
		markup := aliasConfirmMarkup(T, "categoryalias")
		msg, err := h.bot.Send(c.Recipient(),
			T("category_alias_prompt", pending.Category, res.Match.Name), markup)
		if err != nil {
			return err
		}
		h.rememberPrompt(u, msg)
		return nil

	case service.OutcomeAwaitingWalletAliasConfirm:
		u.Expectation.SetPending(pending)
		u.Expectation.SetExpectation(domain.ExpectNewWalletAlias, domain.ExpectData{
			Typed:    pending.Wallet,
			EntityID: domain.HexID(res.Match.EntityID),
			Name:     res.Match.Name,
		})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Send(T("generic_error"))
		}
		markup := aliasConfirmMarkup(T, "walletalias")
		msg, err := h.bot.Send(c.Recipient(),
			T("wallet_alias_prompt", pending.Wallet, res.Match.Name), markup)
		if err != nil {
			return err
		}
		h.rememberPrompt(u, msg)
		return nil
	}

	h.logger.Error("unexpected registrar outcome", zap.Int("outcome", int(res.Outcome)))
	return c.Send(T("generic_error"))
}

// aliasConfirmMarkup builds the three-way keyboard of an alias
// confirmation: accept the suggestion, create a fresh entity instead, or
// abandon the transaction.
func aliasConfirmMarkup(T tfunc, prefix string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data(T("alias_approve_button"), prefix+"_approve")),
		markup.Row(markup.Data(T("alias_new_button"), prefix+"_new")),
		markup.Row(markup.Data(T("cancel_button"), prefix+"_cancel")),
	)
	return markup
}

// finishSubFlow closes a completed expectation. A surviving pending
// transaction means the sub-flow was entered mid-registration, so the
// original tuple is re-registered against the freshly updated entity set.
func (h *Handler) finishSubFlow(c tele.Context, u *domain.User, T tfunc) error {
	pending := u.Expectation.Pending
	u.Expectation.Reset()
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to reset state", zap.Error(err))
		return c.Send(T("generic_error"))
	}
	if pending != nil {
		return h.registerPending(c, u, T, *pending)
	}
	return nil
}

// abandonFlow drops the whole conversation state, including any pending
// transaction, and acknowledges with the given message.
func (h *Handler) abandonFlow(c tele.Context, u *domain.User, text string) error {
	u.Expectation.Reset()
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to reset state", zap.Error(err))
	}
	return h.respondOrSend(c, text, nil)
}
