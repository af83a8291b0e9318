package subscription

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Plan describes a purchasable subscription tier as returned by the catalog.
// Plans are immutable once fetched.
type Plan struct {
	ID            string
	Name          string
	Price         decimal.Decimal  // recurring price
	OriginalPrice *decimal.Decimal // pre-discount price shown struck through, if any
	Features      []string
	Badge         string
	Highlighted   bool
}

// HasPromotion reports whether the catalog advertises a higher original price.
func (p Plan) HasPromotion() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// Catalog is an immutable, ordered set of plans indexed by ID.
type Catalog struct {
	plans []Plan
	index map[string]int
}

// NewCatalog copies the given plans into a catalog, preserving order.
// Later plans with a duplicate ID replace earlier ones.
func NewCatalog(plans ...Plan) *Catalog {
	c := &Catalog{index: make(map[string]int, len(plans))}
	for _, p := range plans {
		p.Features = slices.Clone(p.Features)
		if i, ok := c.index[p.ID]; ok {
			c.plans[i] = p
			continue
		}
		c.index[p.ID] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c
}

// Get returns the plan with the given ID.
func (c *Catalog) Get(id string) (Plan, error) {
	i, ok := c.index[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return c.plans[i], nil
}

// Plans returns a copy of all plans in catalog order.
func (c *Catalog) Plans() []Plan {
	return slices.Clone(c.plans)
}
