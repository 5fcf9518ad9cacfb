package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

// unitStrategy maps a requested quantity to the number of unit positions
// that are resolved and charged.
type unitStrategy func(quantity int) int

var strategies = map[domain.ServiceType]unitStrategy{
	domain.ServiceTypeRooms: func(q int) int { return q },
	domain.ServiceTypeOther: func(int) int { return 1 },
}

// CalcRequest is the input of PriceCalculator.Calc. Quantity and Country
// override the values of ClientService when set.
type CalcRequest struct {
	Service       *domain.Service
	Entries       []*domain.PriceEntry
	ClientService *domain.ClientService
	Quantity      *int
	Country       *string
}

// PriceCalculator turns a resolved price table into a total.
type PriceCalculator struct {
	resolver *PriceTableResolver
	logger   *zap.Logger
}

// NewPriceCalculator creates a new PriceCalculator.
func NewPriceCalculator(resolver *PriceTableResolver, logger *zap.Logger) *PriceCalculator {
	return &PriceCalculator{resolver: resolver, logger: logger}
}

// Calc returns the total price in the currency of the resolved entries.
// It never converts currencies.
func (c *PriceCalculator) Calc(req CalcRequest) (domain.Money, error) {
	if req.Service == nil {
		return domain.Money{}, domain.ErrServiceNotFound
	}
	strategy, ok := strategies[req.Service.Type]
	if !ok {
		return domain.Money{}, fmt.Errorf("%w: %q", domain.ErrUnknownServiceType, req.Service.Type)
	}

	quantity, country := 0, ""
	if cs := req.ClientService; cs != nil {
		quantity, country = cs.Quantity(), cs.CountryID()
	}
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if req.Country != nil {
		country = *req.Country
	}
	if quantity <= 0 || country == "" {
		return domain.Money{}, domain.ErrInvalidCountryOrQuantity
	}

	units, err := c.resolver.Resolve(req.Service, req.Entries, country, strategy(quantity))
	if err != nil {
		return domain.Money{}, err
	}

	total, err := sumUnits(units)
	if err != nil {
		return domain.Money{}, fmt.Errorf("calc service %s: %w", req.Service.ID, err)
	}

	c.logger.Info("price calculated",
		zap.String("service_id", req.Service.ID),
		zap.String("service_type", string(req.Service.Type)),
		zap.Int("quantity", quantity),
		zap.String("country", country),
		zap.String("total", total.String()),
	)
	return total, nil
}

// sumUnits adds the price of every resolved unit.
func sumUnits(units []UnitPrice) (domain.Money, error) {
	total := domain.Zero(units[0].Entry.Price.Currency())
	for _, u := range units {
		var err error
		if total, err = total.Add(u.Entry.Price); err != nil {
			return domain.Money{}, err
		}
	}
	return total, nil
}
