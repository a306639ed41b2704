package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finbot/internal/domain"
	"finbot/internal/repository"
)

const historyWeeks = 53

// WeekPoint is one point of the balance history series.
type WeekPoint struct {
	Date  time.Time
	Total decimal.Decimal
}

// CategoryShare is one category's normalized total within a distribution.
type CategoryShare struct {
	Name  string
	Total decimal.Decimal
}

// StatsService computes the yearly balance history and category
// distributions, normalized to the user's main currency.
type StatsService struct {
	store           repository.Store
	rates           *RateSource
	defaultCurrency string
	logger          *zap.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store repository.Store, rates *RateSource, defaultCurrency string, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:           store,
		rates:           rates,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// MainCurrency is the most frequent currency among the user's non-deleted
// wallets, or the configured default when there are none.
func (s *StatsService) MainCurrency(user *domain.User) (string, error) {
	wallets, err := s.store.Wallets().ListByHolder(user.ID)
	if err != nil {
		return "", fmt.Errorf("list wallets: %w", err)
	}
	if len(wallets) == 0 {
		return s.defaultCurrency, nil
	}

	counts := map[string]int{}
	for _, w := range wallets {
		counts[w.Currency]++
	}
	best, bestCount := s.defaultCurrency, 0
	for currency, count := range counts {
		if count > bestCount {
			best, bestCount = currency, count
		}
	}
	return best, nil
}

// BalanceHistory back-calculates the weekly total balance over the last
// year from the current wallet totals and the transaction log.
func (s *StatsService) BalanceHistory(user *domain.User) ([]WeekPoint, string, error) {
	target, err := s.MainCurrency(user)
	if err != nil {
		return nil, "", err
	}

	wallets, err := s.store.Wallets().ListByHolder(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("list wallets: %w", err)
	}

	currencies := map[string]string{} // wallet id hex -> currency
	total := decimal.Zero
	for _, w := range wallets {
		rate := decimal.NewFromFloat(s.rates.Rate(w.Currency, target))
		total = total.Add(w.Balance().Mul(rate))
		currencies[w.ID.String()] = w.Currency
	}

	now := time.Now()
	since := now.AddDate(-1, 0, 0).Unix()
	transactions, err := s.store.Transactions().ListSince(user.ID, since)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}

	// Walk back week by week, undoing transactions newer than each point.
	history := make([]WeekPoint, 0, historyWeeks)
	idx := 0
	for i := 0; i < historyWeeks; i++ {
		weekDate := now.AddDate(0, 0, -7*i)
		cutoff := weekDate.Unix()

		for idx < len(transactions) && transactions[idx].Datetime > cutoff {
			t := transactions[idx]
			currency, ok := currencies[t.WalletID.String()]
			if !ok {
				if w, err := s.store.Wallets().GetByID(t.WalletID); err == nil && w != nil {
					currency = w.Currency
					currencies[t.WalletID.String()] = currency
				}
			}
			rate := decimal.NewFromFloat(s.rates.Rate(currency, target))
			total = total.Sub(t.Sum.Mul(rate))
			idx++
		}

		history = append(history, WeekPoint{Date: weekDate, Total: total})
	}

	// Oldest first for display.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, target, nil
}

// CategoryDistribution sums the last year's transactions per category,
// split into income and expense shares, largest first.
func (s *StatsService) CategoryDistribution(user *domain.User) (income, expense []CategoryShare, currency string, err error) {
	target, err := s.MainCurrency(user)
	if err != nil {
		return nil, nil, "", err
	}

	since := time.Now().AddDate(-1, 0, 0).Unix()
	transactions, err := s.store.Transactions().ListSince(user.ID, since)
	if err != nil {
		return nil, nil, "", fmt.Errorf("list transactions: %w", err)
	}

	incomeTotals := map[string]decimal.Decimal{}
	expenseTotals := map[string]decimal.Decimal{}
	categoryNames := map[string]string{}
	walletCurrencies := map[string]string{}

	for _, t := range transactions {
		name, ok := categoryNames[t.CategoryID.String()]
		if !ok {
			c, err := s.store.Categories().GetByID(t.CategoryID)
			if err != nil {
				return nil, nil, "", fmt.Errorf("load category: %w", err)
			}
			if c == nil {
				continue
			}
			name = c.Name
			categoryNames[t.CategoryID.String()] = name
		}

		walletCurrency, ok := walletCurrencies[t.WalletID.String()]
		if !ok {
			w, err := s.store.Wallets().GetByID(t.WalletID)
			if err != nil {
				return nil, nil, "", fmt.Errorf("load wallet: %w", err)
			}
			if w == nil {
				continue
			}
			walletCurrency = w.Currency
			walletCurrencies[t.WalletID.String()] = walletCurrency
		}

		rate := decimal.NewFromFloat(s.rates.Rate(walletCurrency, target))
		normalized := t.Sum.Mul(rate)

		switch {
		case normalized.IsPositive():
			incomeTotals[name] = incomeTotals[name].Add(normalized)
		case normalized.IsNegative():
			expenseTotals[name] = expenseTotals[name].Add(normalized.Abs())
		}
	}

	return sortShares(incomeTotals), sortShares(expenseTotals), target, nil
}

func sortShares(totals map[string]decimal.Decimal) []CategoryShare {
	shares := make([]CategoryShare, 0, len(totals))
	for name, total := range totals {
		shares = append(shares, CategoryShare{Name: name, Total: total})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Total.Equal(shares[j].Total) {
			return shares[i].Name < shares[j].Name
		}
		return shares[i].Total.GreaterThan(shares[j].Total)
	})
	return shares
}
