// AngelaMos | 2026
// entity.go

package product

import (
	"time"
)

type Product struct {
	ID        int64     `db:"id"`
	Name      string    `db:"product"`
	Sales     int64     `db:"sales"`
	Category  *string   `db:"category"`
	Revenue   float64   `db:"revenue"`
	Profit    float64   `db:"profit"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Patch carries the fields present in an update request. A nil pointer means
// the field was absent and must stay untouched. Category can be cleared, so
// its presence is tracked separately from its value.
type Patch struct {
	Name        *string
	Sales       *int64
	Category    *string
	CategorySet bool
	Revenue     *float64
	Profit      *float64
}

func (p *Patch) Empty() bool {
	return p.Name == nil &&
		p.Sales == nil &&
		!p.CategorySet &&
		p.Revenue == nil &&
		p.Profit == nil
}

func (p *Patch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Sales != nil {
		prod.Sales = *p.Sales
	}
	if p.CategorySet {
		prod.Category = p.Category
	}
	if p.Revenue != nil {
		prod.Revenue = *p.Revenue
	}
	if p.Profit != nil {
		prod.Profit = *p.Profit
	}
}

type ListParams struct {
	Limit  *int
	Offset *int
}
