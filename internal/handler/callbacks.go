package handler

import (
	"errors"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finbot/internal/domain"
)

// handleCallback dispatches every inline button press. Callback data is
// parsed once into a domain.Command; malformed tokens are acknowledged and
// dropped without touching state.
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	unlock := h.lockUser(c.Sender().ID)
	defer unlock()

	u, err := h.loadUser(c)
	if err != nil || u == nil {
		h.logger.Error("failed to load user", zap.Error(err))
		return c.Respond()
	}

	token := callback.Unique
	if token == "" {
		token = cleanCallbackData(callback.Data)
	}

	cmd, err := domain.ParseCommand(token)
	if err != nil {
		h.logger.Warn("malformed callback token",
			zap.String("token", token),
			zap.Int64("telegram_id", u.TelegramID),
		)
		return c.Respond()
	}

	if cmd.Kind == domain.CmdLang {
		return h.applyLanguage(c, u, cmd.Lang)
	}
	if !u.HasLanguage() {
		c.Respond()
		return h.sendLanguageSelection(c)
	}

	T := h.translate(u)
	switch cmd.Kind {
	case domain.CmdNone:
		return c.Respond()

	case domain.CmdCategoryApprove:
		return h.approveCategoryCreation(c, u, T)
	case domain.CmdCategoryCancel, domain.CmdWalletCancel,
		domain.CmdCategoryAliasCancel, domain.CmdWalletAliasCancel:
		return h.abandonFlow(c, u, T("flow_cancelled"))

	case domain.CmdCategoryAliasApprove:
		return h.approveAlias(c, u, T, domain.KindCategory, domain.ExpectNewCategoryAlias)
	case domain.CmdWalletAliasApprove:
		return h.approveAlias(c, u, T, domain.KindWallet, domain.ExpectNewWalletAlias)
	case domain.CmdCategoryAliasNew:
		return h.declineAlias(c, u, T, domain.KindCategory)
	case domain.CmdWalletAliasNew:
		return h.declineAlias(c, u, T, domain.KindWallet)

	case domain.CmdAddCategory:
		return h.startCategoryCreation(c, u, T)
	case domain.CmdAddWallet:
		return h.startWalletCreation(c, u, T)

	case domain.CmdMenu:
		return h.openMenu(c, u, T, cmd.Menu)

	case domain.CmdAction:
		return h.dispatchAction(c, u, T, cmd)

	case domain.CmdPage:
		return h.dispatchPage(c, u, T, cmd)

	case domain.CmdExport:
		return h.dispatchExport(c, u, T, cmd.Export)
	}

	h.logger.Warn("unhandled callback command",
		zap.String("token", token),
		zap.Int64("telegram_id", u.TelegramID),
	)
	return c.Respond()
}

// applyLanguage stores the chosen language and sends the tutorial. This is
// the only callback allowed before a language is set.
func (h *Handler) applyLanguage(c tele.Context, u *domain.User, lang string) error {
	if !h.catalog.Has(lang) {
		h.logger.Warn("unknown language chosen", zap.String("lang", lang))
		return c.Respond()
	}

	if err := h.users.UpdateLanguage(u.ID, lang); err != nil {
		h.logger.Error("failed to store language", zap.Error(err))
		return c.Respond()
	}
	u.Language = lang

	T := h.translate(u)
	c.Respond(&tele.CallbackResponse{Text: T("language_set_popup")})
	if err := c.Edit(T("language_set_message")); err != nil {
		h.handleEditError(err, c)
	}
	return c.Send(T("tutorial"))
}

// approveCategoryCreation creates the category under the originally typed
// name. The button lives on the "unknown category" prompt, so a missing
// expectation means the prompt is stale.
func (h *Handler) approveCategoryCreation(c tele.Context, u *domain.User, T tfunc) error {
	if u.Expectation.Expect.Type != domain.ExpectNewCategory {
		return c.Respond(&tele.CallbackResponse{Text: T("stale_button_popup")})
	}

	name := u.Expectation.Expect.Data.Name
	category, err := h.categories.Create(u, name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMultiWordName):
			c.Respond()
			return c.Send(T("multiple_word_category_name_error"))
		case errors.Is(err, domain.ErrNameTaken):
			c.Respond()
			return c.Send(T("non_unique_category_name_error"))
		}
		h.logger.Error("failed to create category", zap.Error(err))
		c.Respond()
		return c.Send(T("generic_error"))
	}

	if err := h.respondOrSend(c, T("category_created", category.Name), nil); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

// approveAlias records the suggested synonym and resumes the pending
// transaction, which now resolves through the fresh alias.
func (h *Handler) approveAlias(c tele.Context, u *domain.User, T tfunc, kind domain.EntityKind, want domain.ExpectType) error {
	if u.Expectation.Expect.Type != want {
		return c.Respond(&tele.CallbackResponse{Text: T("stale_button_popup")})
	}

	data := u.Expectation.Expect.Data
	target, err := domain.ParseHexID(data.EntityID)
	if err != nil {
		h.logger.Error("bad entity id in expectation", zap.Error(err))
		return c.Respond()
	}

	if err := h.registrar.ConfirmAlias(u, kind, data.Typed, target); err != nil {
		h.logger.Error("failed to record alias", zap.Error(err))
		c.Respond()
		return c.Send(T("generic_error"))
	}

	if err := h.respondOrSend(c, T("alias_saved", data.Typed, data.Name), nil); err != nil {
		return err
	}
	return h.finishSubFlow(c, u, T)
}

// declineAlias rejects the suggestion and switches to the corresponding
// creation flow for the typed text, pending transaction preserved.
func (h *Handler) declineAlias(c tele.Context, u *domain.User, T tfunc, kind domain.EntityKind) error {
	data := u.Expectation.Expect.Data
	switch kind {
	case domain.KindCategory:
		if u.Expectation.Expect.Type != domain.ExpectNewCategoryAlias {
			return c.Respond(&tele.CallbackResponse{Text: T("stale_button_popup")})
		}
		u.Expectation.SetExpectation(domain.ExpectNewCategory, domain.ExpectData{Name: data.Typed})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(
			markup.Data(T("approve_button"), "category_approve"),
			markup.Data(T("cancel_button"), "category_cancel"),
		))
		return h.respondOrSend(c, T("unknown_category_prompt", data.Typed), markup)

	default:
		if u.Expectation.Expect.Type != domain.ExpectNewWalletAlias {
			return c.Respond(&tele.CallbackResponse{Text: T("stale_button_popup")})
		}
		u.Expectation.SetExpectation(domain.ExpectNewWallet, domain.ExpectData{Name: data.Typed})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(markup.Data(T("cancel_button"), "wallet_cancel")))
		return h.respondOrSend(c, T("unknown_wallet_prompt", data.Typed), markup)
	}
}

// startCategoryCreation begins the explicit add flow from the categories
// menu. No pending transaction is involved.
func (h *Handler) startCategoryCreation(c tele.Context, u *domain.User, T tfunc) error {
	u.Expectation.Reset()
	u.Expectation.SetExpectation(domain.ExpectNewCategory, domain.ExpectData{})
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to save state", zap.Error(err))
		return c.Respond()
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(T("cancel_button"), "category_cancel")))
	return h.respondOrSend(c, T("category_creation_prompt"), markup)
}

// startWalletCreation begins the explicit add flow from the wallets menu.
func (h *Handler) startWalletCreation(c tele.Context, u *domain.User, T tfunc) error {
	u.Expectation.Reset()
	u.Expectation.SetExpectation(domain.ExpectNewWallet, domain.ExpectData{})
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to save state", zap.Error(err))
		return c.Respond()
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(T("cancel_button"), "wallet_cancel")))
	return h.respondOrSend(c, T("wallet_creation_prompt"), markup)
}

// openMenu navigates to a named menu. Menu buttons double as cancel
// buttons, so the conversation state is always reset first.
func (h *Handler) openMenu(c tele.Context, u *domain.User, T tfunc, menu string) error {
	u.Expectation.Reset()
	if err := h.saveState(u); err != nil {
		h.logger.Error("failed to reset state", zap.Error(err))
		return c.Respond()
	}

	switch menu {
	case "main":
		return h.sendMainMenu(c, u, T)
	case "wallets":
		return h.sendWalletsMenu(c, u, T, 1, 0)
	case "categories":
		return h.sendCategoriesMenu(c, u, T)
	case "transactions":
		now := time.Now()
		return h.sendTransactionsMenu(c, u, T, now.Year(), int(now.Month()), 1, 0)
	case "stats":
		return h.sendStats(c, u, T)
	}

	h.logger.Warn("unknown menu", zap.String("menu", menu))
	return c.Respond()
}

// dispatchAction routes an entity action button by its prefix and verb.
func (h *Handler) dispatchAction(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	switch cmd.Entity {
	case domain.PrefixWallet:
		return h.walletAction(c, u, T, cmd)
	case domain.PrefixCategory:
		return h.categoryAction(c, u, T, cmd)
	case domain.PrefixTransaction:
		return h.transactionAction(c, u, T, cmd)
	}
	return c.Respond()
}

// dispatchPage routes pagination buttons. A token without a concrete page
// number is the jump button: it arms the page expectation, with the
// token's month context, so the next numeric reply navigates.
func (h *Handler) dispatchPage(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	if !cmd.HasPage {
		data := domain.ExpectData{MsgID: cmd.MsgID, Year: cmd.Year, Month: cmd.Month}
		switch cmd.Entity {
		case domain.PrefixWallet:
			data.Kind = domain.KindWallet
		case domain.PrefixTransaction:
			data.Kind = ""
		default:
			return c.Respond()
		}
		u.Expectation.Reset()
		u.Expectation.SetExpectation(domain.ExpectPage, data)
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		c.Respond()
		return c.Send(T("page_jump_hint"))
	}

	switch cmd.Entity {
	case domain.PrefixWallet:
		return h.sendWalletsMenu(c, u, T, cmd.Page, cmd.MsgID)
	case domain.PrefixTransaction:
		year, month := cmd.Year, cmd.Month
		if month == 0 {
			now := time.Now()
			year, month = now.Year(), int(now.Month())
		}
		return h.sendTransactionsMenu(c, u, T, year, month, cmd.Page, cmd.MsgID)
	}
	return c.Respond()
}

// dispatchExport renders and sends the requested CSV document.
func (h *Handler) dispatchExport(c tele.Context, u *domain.User, T tfunc, kind string) error {
	var (
		data     []byte
		filename string
		err      error
	)
	switch kind {
	case "wallets":
		data, filename, err = h.wallets.ExportCSV(u)
	case "transactions":
		data, filename, err = h.transactions.ExportCSV(u)
	default:
		return c.Respond()
	}
	if err != nil {
		h.logger.Error("failed to export csv",
			zap.Error(err),
			zap.String("kind", kind),
		)
		c.Respond()
		return c.Send(T("generic_error"))
	}

	c.Respond()
	return h.sendDocument(c, data, filename)
}
