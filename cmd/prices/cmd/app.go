package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/wys-platform/prices/internal/pkg/archive"
	"github.com/wys-platform/prices/internal/pkg/clients"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/store"
	"github.com/wys-platform/prices/internal/pkg/store/gormstore"
	"github.com/wys-platform/prices/internal/pkg/store/memstore"
	"github.com/wys-platform/prices/internal/pkg/store/xpgx"
	"github.com/wys-platform/prices/internal/service/catalog"
	"github.com/wys-platform/prices/internal/service/estimate"
	"github.com/wys-platform/prices/internal/service/exchange"
)

// app is the wired service graph shared by the commands.
type app struct {
	store    store.Store
	catalog  *catalog.Service
	estimate *estimate.Service
	exchange *exchange.Service
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openStore connects the configured backend. The embedded backends create
// their schema on open; postgres is migrated only when migrate is set.
func openStore(ctx context.Context, migrate bool) (store.Store, func(), error) {
	switch driver := viper.GetString(constants.ViperStoreDriverKey); driver {
	case constants.StoreDriverPostgres:
		pool, err := xpgx.New(ctx, viper.GetString(constants.ViperStoreDSNKey))
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if migrate {
			if err = store.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return store.NewStore(pool), pool.Close, nil

	case constants.StoreDriverSQLite:
		st, err := gormstore.Open(viper.GetString(constants.ViperStoreSQLitePathKey))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return st, func() {
			if err := st.Close(); err != nil {
				logger.Errorf(ctx, "close sqlite: %s", err.Error())
			}
		}, nil

	case constants.StoreDriverMemory:
		logger.Warn(ctx, "using the in-memory store, nothing is persisted")
		return memstore.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", constants.ErrInvalidInput, driver)
	}
}

func newApp(ctx context.Context) (*app, error) {
	st, closeStore, err := openStore(ctx, false)
	if err != nil {
		return nil, err
	}
	a := &app{store: st, closers: []func(){closeStore}}

	clientCfg := clients.Config{
		Timeout: viper.GetDuration(constants.ViperClientsTimeoutKey),
		Retries: viper.GetInt(constants.ViperClientsRetriesKey),
	}

	catalogCfg := catalog.Config{DefaultCountry: viper.GetString(constants.ViperDefaultCountryKey)}
	if bucket := viper.GetString(constants.ViperArchiveBucketKey); bucket != "" {
		archiver, err := archive.NewS3Archive(ctx, bucket, viper.GetString(constants.ViperArchiveRegionKey))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("archive: %w", err)
		}
		catalogCfg.Archive = archiver
	}
	a.catalog = catalog.NewService(st, catalogCfg)

	rules, err := estimate.ParseRules(viper.GetStringMapString(constants.ViperBaseScalingKey))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", constants.ViperBaseScalingKey, err)
	}
	a.estimate = estimate.NewService(st, estimate.Config{
		BaseScaling: rules,
		Spaces:      clients.NewSpaceRegistry(viper.GetString(constants.ViperSpacesURLKey), clientCfg),
		Schedule:    clients.NewScheduleEstimator(viper.GetString(constants.ViperTimesURLKey), clientCfg),
		Projects:    clients.NewProjectRegistry(viper.GetString(constants.ViperProjectsURLKey), clientCfg),
	})

	loc, err := time.LoadLocation(viper.GetString(constants.ViperExchangeTimezoneKey))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", constants.ViperExchangeTimezoneKey, err)
	}
	source := clients.NewExchangeSource(
		viper.GetString(constants.ViperExchangeURLKey),
		viper.GetString(constants.ViperExchangeKeyKey),
		clientCfg,
	)
	a.exchange = exchange.NewService(st, source, exchange.Config{
		MinQuota: viper.GetInt(constants.ViperExchangeMinQuotaKey),
		Location: loc,
	})

	return a, nil
}
