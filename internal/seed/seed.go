// AngelaMos | 2026
// seed.go

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/templates/catalog-backend/internal/config"
	"github.com/carterperez-dev/templates/catalog-backend/internal/product"
	"github.com/carterperez-dev/templates/catalog-backend/internal/user"
)

type UserStore interface {
	Count(ctx context.Context) (int, error)
	CreateWithRole(
		ctx context.Context,
		username, password, role string,
	) (*user.User, error)
}

type Catalog interface {
	Count(ctx context.Context) (int, error)
	Create(
		ctx context.Context,
		records []product.Record,
	) (*product.CreateResponse, error)
}

var sampleProducts = []product.Record{
	{"Product": "Smartphone X", "Sales": "150000", "Category": "Electronics", "Revenue": "75000000", "Profit": "15000000"},
	{"Product": "Wireless Earbuds Pro", "Sales": "120000", "Category": "Electronics", "Revenue": "9600000", "Profit": "1920000"},
	{"Product": "Organic Toothpaste", "Sales": "500000", "Category": "Personal Care", "Revenue": "2000000", "Profit": "400000"},
	{"Product": "Spiral Notebook", "Sales": "350000", "Category": "Stationery", "Revenue": "1050000", "Profit": "210000"},
	{"Product": "Pure Cooking Oil", "Sales": "420000", "Category": "Grocery", "Revenue": "6300000", "Profit": "315000"},
	{"Product": "Laundry Detergent", "Sales": "280000", "Category": "Household", "Revenue": "4200000", "Profit": "420000"},
}

type Result struct {
	AdminCreated  bool
	ProductsAdded int
}

type Seeder struct {
	users   UserStore
	catalog Catalog
	config  config.SeedConfig
	logger  *slog.Logger
}

func New(
	users UserStore,
	catalog Catalog,
	cfg config.SeedConfig,
	logger *slog.Logger,
) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		users:   users,
		catalog: catalog,
		config:  cfg,
		logger:  logger,
	}
}

// Run bootstraps an empty database: the admin account when there are no
// users and the sample catalog when there are no products. Tables that
// already hold rows are left alone, so Run is safe to repeat.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var result Result

	users, err := s.users.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}

	if users == 0 {
		_, err := s.users.CreateWithRole(
			ctx,
			s.config.AdminUsername,
			s.config.AdminPassword,
			user.RoleAdmin,
		)
		switch {
		case errors.Is(err, user.ErrUsernameExists):
		case err != nil:
			return result, fmt.Errorf("create admin: %w", err)
		default:
			result.AdminCreated = true
			s.logger.InfoContext(ctx, "admin user created",
				"username", s.config.AdminUsername,
			)
		}
	}

	products, err := s.catalog.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count products: %w", err)
	}

	if products == 0 {
		created, err := s.catalog.Create(ctx, SampleProducts())
		if err != nil {
			return result, fmt.Errorf("insert sample products: %w", err)
		}
		result.ProductsAdded = created.Added
		s.logger.InfoContext(ctx, "sample products inserted",
			"count", created.Added,
		)
	}

	return result, nil
}

// SampleProducts returns a fresh copy of the bootstrap catalog.
func SampleProducts() []product.Record {
	out := make([]product.Record, len(sampleProducts))
	for i, rec := range sampleProducts {
		cp := make(product.Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
