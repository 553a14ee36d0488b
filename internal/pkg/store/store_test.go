package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/wys-platform/prices/internal/pkg/store"
	"github.com/wys-platform/prices/internal/pkg/store/storetest"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
)

const truncateAll = `truncate countries, modules, categories, price_values, price_designs,
	price_gens, price_gen_values, exchange_rates, exchange_refresh restart identity cascade`

// TestPostgresStore needs a disposable database in PRICES_TEST_DSN.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PRICES_TEST_DSN")
	if dsn == "" {
		t.Skip("PRICES_TEST_DSN is not set")
	}

	ctx := context.Background()
	pool, err := xpgx.New(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err = store.Migrate(ctx, pool); err != nil {
		t.Fatal(err)
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		if _, err := pool.Exec(ctx, truncateAll); err != nil {
			t.Fatal(err)
		}
		return store.NewStore(pool)
	})
}
