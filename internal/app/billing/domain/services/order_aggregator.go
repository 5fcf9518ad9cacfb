package services

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// NoteTranslator renders the localized note attached to an order.
type NoteTranslator interface {
	OrderNote(lang string, order *domain.Order, members []*domain.ClientService) string
}

// Recomputation is the outcome of OrderAggregator.Recompute.
type Recomputation struct {
	Price     domain.Money
	Corrupted bool
	// Frozen is set when the order was terminal and left untouched.
	Frozen bool
	// DiscountUsed is set when a discount use was consumed by this run.
	DiscountUsed bool
}

// OrderAggregator sums member service prices into the order total.
type OrderAggregator struct {
	discounts *DiscountEngine
	notes     NoteTranslator
	base      domain.Currency
	languages []string
	logger    *zap.Logger
}

// NewOrderAggregator creates a new OrderAggregator. notes may be nil.
func NewOrderAggregator(discounts *DiscountEngine, notes NoteTranslator, base domain.Currency, languages []string, logger *zap.Logger) *OrderAggregator {
	return &OrderAggregator{
		discounts: discounts,
		notes:     notes,
		base:      base,
		languages: languages,
		logger:    logger,
	}
}

// BaseCurrency returns the currency of zero-priced and corrupted orders.
func (a *OrderAggregator) BaseCurrency() domain.Currency {
	return a.base
}

// Recompute sets the order price from its enabled members. Prices spanning
// several currencies mark the order corrupted. cd is the client's discount
// snapshot, or nil; its usage count is updated in place when consumed.
func (a *OrderAggregator) Recompute(order *domain.Order, members []*domain.ClientService, cd *domain.ClientDiscount, now time.Time) (Recomputation, error) {
	if order.IsTerminal() {
		return Recomputation{Price: order.Price(), Frozen: true, Corrupted: order.Status() == domain.OrderCorrupted}, nil
	}

	prices := make([]domain.Money, 0, len(members))
	currencies := make([]string, 0, 1)
	for _, cs := range members {
		if cs.ClientID() != order.ClientID() {
			return Recomputation{}, fmt.Errorf("%w: %s", domain.ErrForeignService, cs.ID())
		}
		if !cs.IsEnabled() || !order.Contains(cs.ID()) {
			continue
		}
		p, ok := cs.Price()
		if !ok {
			return Recomputation{}, fmt.Errorf("%w: %s", domain.ErrPriceNotCalculated, cs.ID())
		}
		prices = append(prices, p)
		if c := p.Currency().String(); !slices.Contains(currencies, c) {
			currencies = append(currencies, c)
		}
	}

	if len(currencies) > 1 {
		slices.Sort(currencies)
		if err := order.MarkCorrupted(a.base, currencies, now); err != nil {
			return Recomputation{}, err
		}
		a.logger.Warn("order corrupted by mixed currencies",
			zap.String("order_id", order.ID()),
			zap.String("client_id", order.ClientID()),
			zap.Strings("currencies", currencies),
		)
		return Recomputation{Price: order.Price(), Corrupted: true}, nil
	}

	total, err := domain.Sum(prices, a.base)
	if err != nil {
		return Recomputation{}, err
	}

	alreadyApplied := cd != nil && order.HasDiscount(cd.ID())
	applied := a.discounts.Apply(cd, total, alreadyApplied, now)

	var discountID *string
	if applied.Applied {
		id := cd.ID()
		discountID = &id
	}
	if applied.RecordUsage {
		if err := a.discounts.RecordUsage(cd, now); err != nil {
			return Recomputation{}, err
		}
	}

	price := applied.Price.Round(2)
	if err := order.SetPrice(price, discountID, now); err != nil {
		return Recomputation{}, err
	}
	a.populateNotes(order, members, now)

	return Recomputation{Price: price, DiscountUsed: applied.RecordUsage}, nil
}

func (a *OrderAggregator) populateNotes(order *domain.Order, members []*domain.ClientService, now time.Time) {
	if a.notes == nil || order.HasNotes() || len(a.languages) == 0 {
		return
	}
	notes := make(map[string]string, len(a.languages))
	for _, lang := range a.languages {
		notes[lang] = a.notes.OrderNote(lang, order, members)
	}
	order.SetNotes(notes, now)
}
