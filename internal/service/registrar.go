package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

// Outcome tells the dispatcher what the registrar needs next.
type Outcome int

const (
	OutcomeCommitted Outcome = iota
	OutcomeAwaitingCategoryCreation
	OutcomeAwaitingWalletCreation
	OutcomeAwaitingCategoryAliasConfirm
	OutcomeAwaitingWalletAliasConfirm
)

// Errors returned by the replace flow when a referenced name does not
// resolve to an existing entity.
var (
	ErrCategoryUnresolved = errors.New("category does not resolve to an existing entity")
	ErrWalletUnresolved   = errors.New("wallet does not resolve to an existing entity")
)

// Result carries the registrar outcome plus the data the dispatcher needs
// to either render the confirmation summary or build the next prompt. Sub-
// flow continuation is driven by this explicit value, never by shared
// mutable state.
type Result struct {
	Outcome Outcome

	// Set when Outcome == OutcomeCommitted.
	Transaction *domain.Transaction
	Wallet      *domain.Wallet
	Category    *domain.Category

	// Set for the alias-confirmation outcomes.
	Match Match
}

// Registrar orchestrates transaction registration: name resolution,
// hand-off to the creation and alias sub-flows, and the final atomic
// commit of the transaction row plus wallet and category counters.
type Registrar struct {
	store    repository.Store
	resolver *Resolver
	logger   *zap.Logger
	now      func() int64
}

// NewRegistrar creates a transaction registrar.
func NewRegistrar(store repository.Store, resolver *Resolver, logger *zap.Logger) *Registrar {
	return &Registrar{
		store:    store,
		resolver: resolver,
		logger:   logger,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// Register attempts to commit the pending transaction. The category is
// resolved first: a category prompt always takes priority over a wallet
// prompt, so a brand-new user is asked about the category before the
// wallet is ever mentioned.
func (s *Registrar) Register(user *domain.User, p domain.PendingTransaction) (Result, error) {
	catMatch, err := s.resolver.Resolve(user, domain.KindCategory, p.Category)
	if err != nil {
		return Result{}, err
	}
	switch catMatch.Resolution {
	case ResolutionFuzzy:
		return Result{Outcome: OutcomeAwaitingCategoryAliasConfirm, Match: catMatch}, nil
	case ResolutionNone:
		return Result{Outcome: OutcomeAwaitingCategoryCreation}, nil
	}

	walMatch, err := s.resolver.Resolve(user, domain.KindWallet, p.Wallet)
	if err != nil {
		return Result{}, err
	}
	switch walMatch.Resolution {
	case ResolutionFuzzy:
		return Result{Outcome: OutcomeAwaitingWalletAliasConfirm, Match: walMatch}, nil
	case ResolutionNone:
		return Result{Outcome: OutcomeAwaitingWalletCreation}, nil
	}

	return s.commit(user, p, catMatch.EntityID, walMatch.EntityID)
}

// commit writes the transaction row and both counter updates as one unit.
func (s *Registrar) commit(user *domain.User, p domain.PendingTransaction, categoryID, walletID uuid.UUID) (Result, error) {
	transaction := &domain.Transaction{
		ID:         uuid.New(),
		Holder:     user.ID,
		Datetime:   s.now(),
		Type:       domain.TypeIncome,
		WalletID:   walletID,
		CategoryID: categoryID,
		Sum:        p.Amount,
		Comment:    p.Comment,
	}

	var wallet *domain.Wallet
	var category *domain.Category
	err := s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Transactions().Create(transaction); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := r.Wallets().IncrementCounters(walletID, p.Amount); err != nil {
			return fmt.Errorf("update wallet counters: %w", err)
		}
		if err := r.Categories().IncrementCounter(categoryID); err != nil {
			return fmt.Errorf("update category counter: %w", err)
		}

		var err error
		if wallet, err = r.Wallets().GetByID(walletID); err != nil {
			return fmt.Errorf("reload wallet: %w", err)
		}
		if category, err = r.Categories().GetByID(categoryID); err != nil {
			return fmt.Errorf("reload category: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("transaction registered",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("sum", p.Amount.String()),
		zap.String("wallet", wallet.Name),
		zap.String("category", category.Name),
	)

	return Result{
		Outcome:     OutcomeCommitted,
		Transaction: transaction,
		Wallet:      wallet,
		Category:    category,
	}, nil
}

// ConfirmAlias records a user-approved synonym so future inputs of the
// typed text resolve without a prompt. Aliases are created only through
// this confirmation, never silently.
func (s *Registrar) ConfirmAlias(user *domain.User, kind domain.EntityKind, typed string, target uuid.UUID) error {
	switch kind {
	case domain.KindCategory:
		return s.store.Categories().CreateAlias(&domain.CategoryAlias{
			ID:       uuid.New(),
			Holder:   user.ID,
			Category: target,
			Alias:    typed,
		})
	case domain.KindWallet:
		return s.store.Wallets().CreateAlias(&domain.WalletAlias{
			ID:     uuid.New(),
			Holder: user.ID,
			Wallet: target,
			Alias:  typed,
		})
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
}

// Replace swaps an existing transaction for a new tuple: old counters are
// reversed, the old row deleted, and the replacement committed, all in one
// store transaction. Unlike Register, both names must resolve exactly;
// the edit flow does not nest creation sub-flows.
func (s *Registrar) Replace(user *domain.User, oldID uuid.UUID, p domain.PendingTransaction) (Result, error) {
	old, err := s.store.Transactions().GetByID(oldID)
	if err != nil {
		return Result{}, fmt.Errorf("load transaction: %w", err)
	}
	if old == nil || old.Holder != user.ID {
		return Result{}, domain.ErrNotFound
	}

	catMatch, err := s.resolver.Resolve(user, domain.KindCategory, p.Category)
	if err != nil {
		return Result{}, err
	}
	if catMatch.Resolution != ResolutionExact {
		return Result{}, ErrCategoryUnresolved
	}
	walMatch, err := s.resolver.Resolve(user, domain.KindWallet, p.Wallet)
	if err != nil {
		return Result{}, err
	}
	if walMatch.Resolution != ResolutionExact {
		return Result{}, ErrWalletUnresolved
	}

	replacement := &domain.Transaction{
		ID:         uuid.New(),
		Holder:     user.ID,
		Datetime:   old.Datetime,
		Type:       domain.TypeIncome,
		WalletID:   walMatch.EntityID,
		CategoryID: catMatch.EntityID,
		Sum:        p.Amount,
		Comment:    p.Comment,
	}

	var wallet *domain.Wallet
	var category *domain.Category
	err = s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Wallets().DecrementCounters(old.WalletID, old.Sum); err != nil {
			return fmt.Errorf("reverse wallet counters: %w", err)
		}
		if err := r.Categories().DecrementCounter(old.CategoryID); err != nil {
			return fmt.Errorf("reverse category counter: %w", err)
		}
		if err := r.Transactions().Delete(old.ID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}

		if err := r.Transactions().Create(replacement); err != nil {
			return fmt.Errorf("create replacement: %w", err)
		}
		if err := r.Wallets().IncrementCounters(replacement.WalletID, replacement.Sum); err != nil {
			return fmt.Errorf("update wallet counters: %w", err)
		}
		if err := r.Categories().IncrementCounter(replacement.CategoryID); err != nil {
			return fmt.Errorf("update category counter: %w", err)
		}

		var err error
		if wallet, err = r.Wallets().GetByID(replacement.WalletID); err != nil {
			return fmt.Errorf("reload wallet: %w", err)
		}
		if category, err = r.Categories().GetByID(replacement.CategoryID); err != nil {
			return fmt.Errorf("reload category: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Outcome:     OutcomeCommitted,
		Transaction: replacement,
		Wallet:      wallet,
		Category:    category,
	}, nil
}

// Remove deletes a transaction and reverses both counters in one store
// transaction.
func (s *Registrar) Remove(user *domain.User, id uuid.UUID) error {
	t, err := s.store.Transactions().GetByID(id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if t == nil || t.Holder != user.ID {
		return domain.ErrNotFound
	}

	return s.store.ExecTx(func(r repository.Registry) error {
		if err := r.Wallets().DecrementCounters(t.WalletID, t.Sum); err != nil {
			return fmt.Errorf("reverse wallet counters: %w", err)
		}
		if err := r.Categories().DecrementCounter(t.CategoryID); err != nil {
			return fmt.Errorf("reverse category counter: %w", err)
		}
		if err := r.Transactions().Delete(t.ID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}

// Reschedule moves a transaction to a new timestamp.
func (s *Registrar) Reschedule(user *domain.User, id uuid.UUID, ts int64) error {
	t, err := s.store.Transactions().GetByID(id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if t == nil || t.Holder != user.ID {
		return domain.ErrNotFound
	}
	return s.store.Transactions().UpdateDatetime(id, ts)
}
