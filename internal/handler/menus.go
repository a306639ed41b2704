package handler

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"finbot/internal/domain"
	"finbot/internal/service"
)

const statsHistoryShown = 12

// sendMainMenu renders the top-level navigation menu.
func (h *Handler) sendMainMenu(c tele.Context, u *domain.User, T tfunc) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data(T("menu_wallets_button"), "menu_wallets")),
		markup.Row(markup.Data(T("menu_categories_button"), "menu_categories")),
		markup.Row(markup.Data(T("menu_transactions_button"), "menu_transactions")),
		markup.Row(markup.Data(T("menu_stats_button"), "menu_stats")),
	)
	return h.respondOrSend(c, T("main_menu"), markup)
}

// renderMenu delivers a menu whose pagination tokens embed the menu
// message's own ID. For a fresh menu the ID is unknown until the message
// is sent, so the menu goes out with inert placeholders first and the
// keyboard is swapped in a second step.
func (h *Handler) renderMenu(c tele.Context, msgID int, text string, build func(msgID int) *tele.ReplyMarkup) error {
	if c.Callback() != nil && c.Callback().Message != nil {
		return h.respondOrSend(c, text, build(c.Callback().Message.ID))
	}

	if msgID != 0 {
		stored := tele.StoredMessage{
			MessageID: strconv.Itoa(msgID),
			ChatID:    c.Chat().ID,
		}
		if _, err := h.bot.Edit(stored, text, build(msgID)); err == nil {
			return nil
		}
		// The referenced menu is gone, fall through to a fresh send.
	}

	msg, err := h.bot.Send(c.Recipient(), text, build(0))
	if err != nil {
		return err
	}
	if _, err := h.bot.EditReplyMarkup(msg, build(msg.ID)); err != nil {
		h.logger.Warn("failed to arm pagination keyboard", zap.Error(err))
	}
	return nil
}

// pageNavRow builds the prev / jump / next pagination row. With msgID
// still unknown every button is an inert placeholder.
func pageNavRow(markup *tele.ReplyMarkup, prefix string, msgID, page, pageCount int, suffix string) tele.Row {
	if msgID == 0 {
		label := fmt.Sprintf("%d/%d", page, pageCount)
		return markup.Row(
			markup.Data("⬅️", "none"),
			markup.Data(label, "none"),
			markup.Data("➡️", "none"),
		)
	}

	base := "page_" + prefix + "_" + domain.EncodeHexMsgID(msgID)
	row := tele.Row{}
	if page > 1 {
		row = append(row, markup.Data("⬅️", fmt.Sprintf("%s_%d%s", base, page-1, suffix)))
	}
	// Page 0 is the jump button; the suffix keeps the month context so a
	// jump lands in the month being browsed.
	row = append(row, markup.Data(fmt.Sprintf("%d/%d", page, pageCount),
		fmt.Sprintf("%s_0%s", base, suffix)))
	if page < pageCount {
		row = append(row, markup.Data("➡️", fmt.Sprintf("%s_%d%s", base, page+1, suffix)))
	}
	return row
}

// sendWalletsMenu renders one page of the wallets menu.
func (h *Handler) sendWalletsMenu(c tele.Context, u *domain.User, T tfunc, page, msgID int) error {
	list, err := h.wallets.List(u, page)
	if err != nil {
		h.logger.Error("failed to list wallets", zap.Error(err))
		return h.respondOrSend(c, T("generic_error"), nil)
	}

	var text string
	if list.Total == 0 {
		text = T("menu_wallets_empty")
	} else {
		text = T("menu_wallets_template", list.Total, list.DeletedCount)
	}

	build := func(msgID int) *tele.ReplyMarkup {
		markup := &tele.ReplyMarkup{}
		var rows []tele.Row
		for _, w := range list.Wallets {
			label := fmt.Sprintf("%s %s — %s %s", w.Icon, w.Name,
				domain.FormatAmount(w.Balance()), w.Currency)
			rows = append(rows, markup.Row(
				markup.Data(label, "action_wv_"+domain.HexID(w.ID)),
			))
		}
		if list.PageCount > 1 {
			rows = append(rows, pageNavRow(markup, "w", msgID, list.Page, list.PageCount, ""))
		}
		rows = append(rows,
			markup.Row(markup.Data(T("add_wallet_button"), "add_wallet")),
			markup.Row(markup.Data(T("export_button"), "export_wallets")),
			markup.Row(markup.Data(T("back_to_main_menu_button"), "menu_main")),
		)
		markup.Inline(rows...)
		return markup
	}

	return h.renderMenu(c, msgID, text, build)
}

// sendCategoriesMenu renders the categories menu. Categories are few
// enough to never paginate.
func (h *Handler) sendCategoriesMenu(c tele.Context, u *domain.User, T tfunc) error {
	list, err := h.categories.List(u)
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		return h.respondOrSend(c, T("generic_error"), nil)
	}

	var text string
	if len(list.Categories) == 0 {
		text = T("menu_categories_empty")
	} else {
		text = T("menu_categories_template", len(list.Categories), list.DeletedCount)
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, cat := range list.Categories {
		label := fmt.Sprintf("%s %s (%d)", cat.Icon, cat.Name, cat.TransactionCount)
		rows = append(rows, markup.Row(
			markup.Data(label, "action_cv_"+domain.HexID(cat.ID)),
		))
	}
	rows = append(rows,
		markup.Row(markup.Data(T("add_category_button"), "add_category")),
		markup.Row(markup.Data(T("back_to_main_menu_button"), "menu_main")),
	)
	markup.Inline(rows...)

	return h.respondOrSend(c, text, markup)
}

// sendTransactionsMenu renders one page of a calendar month's
// transactions.
func (h *Handler) sendTransactionsMenu(c tele.Context, u *domain.User, T tfunc, year, month, page, msgID int) error {
	if year == 0 || month == 0 {
		now := time.Now()
		year, month = now.Year(), int(now.Month())
	}

	list, err := h.transactions.ListMonth(u, year, month, page)
	if err != nil {
		h.logger.Error("failed to list transactions", zap.Error(err))
		return h.respondOrSend(c, T("generic_error"), nil)
	}

	monthLabel := fmt.Sprintf("%04d-%02d", year, month)
	var text string
	if list.Total == 0 {
		text = T("menu_transactions_empty", monthLabel)
	} else {
		text = T("menu_transactions_template", monthLabel, list.Total)
	}

	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}
	nextYear, nextMonth := year, month+1
	if nextMonth == 13 {
		nextYear, nextMonth = year+1, 1
	}

	build := func(msgID int) *tele.ReplyMarkup {
		markup := &tele.ReplyMarkup{}
		var rows []tele.Row
		for _, row := range list.Rows {
			date := time.Unix(row.Transaction.Datetime, 0).UTC().Format("02.01")
			label := fmt.Sprintf("%s  %s %s  %s", date,
				domain.FormatAmount(row.Transaction.Sum), row.WalletCurrency,
				row.CategoryName)
			rows = append(rows, markup.Row(
				markup.Data(label, "action_tv_"+domain.HexID(row.Transaction.ID)),
			))
		}

		suffix := fmt.Sprintf("_%d_%d", year, month)
		if list.PageCount > 1 {
			rows = append(rows, pageNavRow(markup, "t", msgID, list.Page, list.PageCount, suffix))
		}

		if msgID == 0 {
			rows = append(rows, markup.Row(
				markup.Data(T("previous_month_button"), "none"),
				markup.Data(T("next_month_button"), "none"),
			))
		} else {
			base := "page_t_" + domain.EncodeHexMsgID(msgID)
			rows = append(rows, markup.Row(
				markup.Data(T("previous_month_button"),
					fmt.Sprintf("%s_1_%d_%d", base, prevYear, prevMonth)),
				markup.Data(T("next_month_button"),
					fmt.Sprintf("%s_1_%d_%d", base, nextYear, nextMonth)),
			))
		}

		rows = append(rows,
			markup.Row(markup.Data(T("export_button"), "export_transactions")),
			markup.Row(markup.Data(T("back_to_main_menu_button"), "menu_main")),
		)
		markup.Inline(rows...)
		return markup
	}

	return h.renderMenu(c, msgID, text, build)
}

// walletAction handles the per-wallet action buttons.
func (h *Handler) walletAction(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	switch cmd.Action {
	case domain.ActionView:
		return h.sendWalletView(c, u, T, cmd)

	case domain.ActionEdit:
		wallet, err := h.wallets.CheckOwnership(u, cmd.ID)
		if err != nil {
			return h.entityGone(c, u, T, err, "wallet_action_ownership_check_failed")
		}
		u.Expectation.Reset()
		u.Expectation.SetExpectation(domain.ExpectEditWallet,
			domain.ExpectData{EntityID: domain.HexID(cmd.ID)})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		markup := backMarkup(T, "menu_wallets")
		return h.respondOrSend(c, T("wallet_edit_prompt", wallet.Name,
			wallet.Currency, domain.FormatAmount(wallet.InitSum)), markup)

	case domain.ActionConfirm:
		wallet, err := h.wallets.CheckOwnership(u, cmd.ID)
		if err != nil {
			return h.entityGone(c, u, T, err, "wallet_action_ownership_check_failed")
		}
		markup := confirmDeleteMarkup(T, 'w', cmd.ID)
		return h.respondOrSend(c, T("wallet_delete_confirm", wallet.Name), markup)

	case domain.ActionDelete:
		if err := h.wallets.Delete(u, cmd.ID); err != nil {
			return h.entityGone(c, u, T, err, "wallet_action_ownership_check_failed")
		}
		if err := h.respondOrSend(c, T("wallet_deleted"), nil); err != nil {
			return err
		}
		return h.sendWalletsMenu(c, u, T, 1, 0)
	}
	return c.Respond()
}

// categoryAction handles the per-category action buttons.
func (h *Handler) categoryAction(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	switch cmd.Action {
	case domain.ActionView:
		return h.sendCategoryView(c, u, T, cmd)

	case domain.ActionEdit:
		category, err := h.categories.CheckOwnership(u, cmd.ID)
		if err != nil {
			return h.entityGone(c, u, T, err, "category_action_ownership_check_failed")
		}
		u.Expectation.Reset()
		u.Expectation.SetExpectation(domain.ExpectEditCategory,
			domain.ExpectData{EntityID: domain.HexID(cmd.ID)})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		markup := backMarkup(T, "menu_categories")
		return h.respondOrSend(c, T("category_edit_prompt", category.Name), markup)

	case domain.ActionConfirm:
		category, err := h.categories.CheckOwnership(u, cmd.ID)
		if err != nil {
			return h.entityGone(c, u, T, err, "category_action_ownership_check_failed")
		}
		markup := confirmDeleteMarkup(T, 'c', cmd.ID)
		return h.respondOrSend(c, T("category_delete_confirm", category.Name), markup)

	case domain.ActionDelete:
		if err := h.categories.Delete(u, cmd.ID); err != nil {
			return h.entityGone(c, u, T, err, "category_action_ownership_check_failed")
		}
		if err := h.respondOrSend(c, T("category_deleted"), nil); err != nil {
			return err
		}
		return h.sendCategoriesMenu(c, u, T)
	}
	return c.Respond()
}

// transactionAction handles the per-transaction action buttons.
func (h *Handler) transactionAction(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	switch cmd.Action {
	case domain.ActionView:
		return h.sendTransactionView(c, u, T, cmd)

	case domain.ActionEdit:
		if _, err := h.transactions.Get(u, cmd.ID); err != nil {
			return h.entityGone(c, u, T, err, "transaction_action_ownership_check_failed")
		}
		u.Expectation.Reset()
		u.Expectation.SetExpectation(domain.ExpectEditTransaction,
			domain.ExpectData{EntityID: domain.HexID(cmd.ID)})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		return h.respondOrSend(c, T("transaction_edit_prompt"), backMarkup(T, "menu_transactions"))

	case domain.ActionReschedule:
		if _, err := h.transactions.Get(u, cmd.ID); err != nil {
			return h.entityGone(c, u, T, err, "transaction_action_ownership_check_failed")
		}
		u.Expectation.Reset()
		u.Expectation.SetExpectation(domain.ExpectRescheduleTransaction,
			domain.ExpectData{EntityID: domain.HexID(cmd.ID)})
		if err := h.saveState(u); err != nil {
			h.logger.Error("failed to save state", zap.Error(err))
			return c.Respond()
		}
		return h.respondOrSend(c, T("reschedule_format_hint"), backMarkup(T, "menu_transactions"))

	case domain.ActionConfirm:
		row, err := h.transactions.ViewRow(u, cmd.ID)
		if err != nil {
			return h.entityGone(c, u, T, err, "transaction_action_ownership_check_failed")
		}
		markup := confirmDeleteMarkup(T, 't', cmd.ID)
		return h.respondOrSend(c, T("transaction_delete_confirm",
			domain.FormatAmount(row.Transaction.Sum), row.WalletCurrency,
			row.CategoryName), markup)

	case domain.ActionDelete:
		if err := h.registrar.Remove(u, cmd.ID); err != nil {
			return h.entityGone(c, u, T, err, "transaction_action_ownership_check_failed")
		}
		if err := h.respondOrSend(c, T("transaction_deleted"), nil); err != nil {
			return err
		}
		return h.sendTransactionsMenu(c, u, T, 0, 0, 1, 0)
	}
	return c.Respond()
}

// sendWalletView renders the per-wallet menu with its recent transactions
// and learned aliases.
func (h *Handler) sendWalletView(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	view, err := h.wallets.View(u, cmd.ID)
	if err != nil {
		return h.entityGone(c, u, T, err, "wallet_action_ownership_check_failed")
	}

	var b strings.Builder
	b.WriteString(T("wallet_view_header", view.Wallet.Icon, view.Wallet.Name,
		domain.FormatAmount(view.Wallet.Balance()), view.Wallet.Currency,
		view.Wallet.TransactionCount))
	b.WriteString("\n")
	writeTransactionLines(&b, T, view.Transactions, view.TransactionsSkipped)
	writeAliasLines(&b, T, view.Aliases, view.AliasesSkipped)

	hexID := domain.HexID(cmd.ID)
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data(T("edit_button"), "action_we_"+hexID),
			markup.Data(T("delete_button"), "action_wc_"+hexID),
		),
		markup.Row(markup.Data(T("universal_back_button"), "menu_wallets")),
	)
	return h.respondOrSend(c, b.String(), markup)
}

// sendCategoryView renders the per-category menu.
func (h *Handler) sendCategoryView(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	view, err := h.categories.View(u, cmd.ID)
	if err != nil {
		return h.entityGone(c, u, T, err, "category_action_ownership_check_failed")
	}

	var b strings.Builder
	b.WriteString(T("category_view_header", view.Category.Icon,
		view.Category.Name, view.Category.TransactionCount))
	b.WriteString("\n")
	writeTransactionLines(&b, T, view.Transactions, view.TransactionsSkipped)
	writeAliasLines(&b, T, view.Aliases, view.AliasesSkipped)

	hexID := domain.HexID(cmd.ID)
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data(T("edit_button"), "action_ce_"+hexID),
			markup.Data(T("delete_button"), "action_cc_"+hexID),
		),
		markup.Row(markup.Data(T("universal_back_button"), "menu_categories")),
	)
	return h.respondOrSend(c, b.String(), markup)
}

// sendTransactionView renders the per-transaction menu.
func (h *Handler) sendTransactionView(c tele.Context, u *domain.User, T tfunc, cmd domain.Command) error {
	row, err := h.transactions.ViewRow(u, cmd.ID)
	if err != nil {
		return h.entityGone(c, u, T, err, "transaction_action_ownership_check_failed")
	}

	date := time.Unix(row.Transaction.Datetime, 0).UTC().Format("2006-01-02 15:04")
	text := T("transaction_view", date,
		domain.FormatAmount(row.Transaction.Sum), row.WalletCurrency,
		row.CategoryName, row.WalletName, row.Transaction.Comment)

	hexID := domain.HexID(cmd.ID)
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data(T("edit_button"), "action_te_"+hexID),
			markup.Data(T("reschedule_button"), "action_tr_"+hexID),
		),
		markup.Row(markup.Data(T("delete_button"), "action_tc_"+hexID)),
		markup.Row(markup.Data(T("universal_back_button"), "menu_transactions")),
	)
	return h.respondOrSend(c, text, markup)
}

// sendStats renders the yearly balance history and category distribution
// as a text summary in the user's main currency.
func (h *Handler) sendStats(c tele.Context, u *domain.User, T tfunc) error {
	history, currency, err := h.stats.BalanceHistory(u)
	if err != nil {
		h.logger.Error("failed to compute balance history", zap.Error(err))
		return h.respondOrSend(c, T("generic_error"), nil)
	}
	income, expense, _, err := h.stats.CategoryDistribution(u)
	if err != nil {
		h.logger.Error("failed to compute category distribution", zap.Error(err))
		return h.respondOrSend(c, T("generic_error"), nil)
	}

	var b strings.Builder
	b.WriteString(T("stats_header", currency))
	b.WriteString("\n\n")

	b.WriteString(T("stats_balance_section"))
	b.WriteString("\n")
	points := history
	if len(points) > statsHistoryShown {
		points = points[len(points)-statsHistoryShown:]
	}
	for _, p := range points {
		b.WriteString(fmt.Sprintf("%s  %s %s\n",
			p.Date.Format("2006-01-02"), p.Total.StringFixed(2), currency))
	}

	b.WriteString("\n")
	b.WriteString(T("stats_income_section"))
	b.WriteString("\n")
	if len(income) == 0 {
		b.WriteString(T("stats_no_data"))
		b.WriteString("\n")
	}
	for _, share := range income {
		b.WriteString(fmt.Sprintf("%s  %s %s\n",
			share.Name, share.Total.StringFixed(2), currency))
	}

	b.WriteString("\n")
	b.WriteString(T("stats_expense_section"))
	b.WriteString("\n")
	if len(expense) == 0 {
		b.WriteString(T("stats_no_data"))
		b.WriteString("\n")
	}
	for _, share := range expense {
		b.WriteString(fmt.Sprintf("%s  %s %s\n",
			share.Name, share.Total.StringFixed(2), currency))
	}

	markup := backMarkup(T, "menu_main")
	return h.respondOrSend(c, b.String(), markup)
}

// sendDocument delivers a generated file to the chat.
func (h *Handler) sendDocument(c tele.Context, data []byte, filename string) error {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: filename,
	}
	return c.Send(doc)
}

// entityGone maps ownership failures to user-visible replies. Anything
// else is logged as a server-side failure.
func (h *Handler) entityGone(c tele.Context, u *domain.User, T tfunc, err error, key string) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDeleted) {
		return h.respondOrSend(c, T(key), nil)
	}
	h.logger.Error("entity action failed",
		zap.Error(err),
		zap.Int64("telegram_id", u.TelegramID),
	)
	return h.respondOrSend(c, T("generic_error"), nil)
}

func writeTransactionLines(b *strings.Builder, T tfunc, rows []service.TransactionRow, skipped int) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(T("view_recent_transactions"))
	b.WriteString("\n")
	for _, row := range rows {
		date := time.Unix(row.Transaction.Datetime, 0).UTC().Format("02.01.2006")
		b.WriteString(fmt.Sprintf("%s %s  %s %s  %s\n", signIndicator(row.Transaction.Sum),
			date, domain.FormatAmount(row.Transaction.Sum), row.WalletCurrency,
			row.CategoryName))
	}
	if skipped > 0 {
		b.WriteString(T("view_more_transactions", skipped))
		b.WriteString("\n")
	}
}

func writeAliasLines(b *strings.Builder, T tfunc, aliases []string, skipped int) {
	if len(aliases) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(T("view_aliases"))
	b.WriteString("\n")
	b.WriteString(strings.Join(aliases, ", "))
	b.WriteString("\n")
	if skipped > 0 {
		b.WriteString(T("view_more_aliases", skipped))
		b.WriteString("\n")
	}
}

func signIndicator(sum decimal.Decimal) string {
	switch {
	case sum.IsPositive():
		return "🟩"
	case sum.IsNegative():
		return "🟥"
	default:
		return "🟨"
	}
}

func backMarkup(T tfunc, target string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(T("universal_back_button"), target)))
	return markup
}

// confirmDeleteMarkup is the two-step delete keyboard: the approve button
// carries the destructive verb, cancel returns to the entity view.
func confirmDeleteMarkup(T tfunc, prefix byte, id uuid.UUID) *tele.ReplyMarkup {
	hexID := domain.HexID(id)
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data(T("delete_approve_button"),
			fmt.Sprintf("action_%cd_%s", prefix, hexID))),
		markup.Row(markup.Data(T("cancel_button"),
			fmt.Sprintf("action_%cv_%s", prefix, hexID))),
	)
	return markup
}
