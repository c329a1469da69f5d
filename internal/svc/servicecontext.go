package svc

import (
	"context"
	"log"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"tickerlens-api/internal/config"
	"tickerlens-api/internal/model"
	"tickerlens-api/pkg/guard"
	providerpkg "tickerlens-api/pkg/provider"
	_ "tickerlens-api/pkg/provider/finnhub"
	_ "tickerlens-api/pkg/provider/polygon"
	"tickerlens-api/pkg/refdata"
	resolverpkg "tickerlens-api/pkg/resolver"
)

const masterLoadTimeout = 10 * time.Second

type ServiceContext struct {
	Config config.Config

	Guards    *guard.Registry
	Fetcher   *providerpkg.Fetcher
	Searchers []providerpkg.Searcher

	Refdata     *refdata.Store
	SymbolStore *resolverpkg.SymbolStore
	Engine      *resolverpkg.Engine

	// Optional Postgres-backed securities master.
	DBConn     sqlx.SqlConn
	Securities model.SecuritiesModel
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config: c,
		Guards: guard.NewRegistry(guard.DefaultSettings()),
	}

	svc.Fetcher = providerpkg.NewFetcher(providerpkg.WithGuards(svc.Guards))

	if pc := c.ProvidersOrNil(); pc != nil {
		built, err := pc.BuildSearchers(svc.Fetcher)
		if err != nil {
			log.Fatalf("failed to build search providers: %v", err)
		}
		svc.Searchers = pc.Ordered(built)
	}

	svc.Refdata = refdata.Load(refdata.Paths{
		Master:   c.RefdataPath(c.Refdata.Master),
		ETFCanon: c.RefdataPath(c.Refdata.ETFCanon),
		Aliases:  c.RefdataPath(c.Refdata.Aliases),
	})

	if dsn := c.Postgres.DSN; dsn != "" {
		svc.DBConn = sqlx.NewSqlConn("pgx", dsn)
		svc.Securities = model.NewSecuritiesModel(svc.DBConn)
		svc.loadMasterFromDB()
	}

	rc := c.ResolverOrDefault()
	if rc.CachePath != "" && !filepath.IsAbs(rc.CachePath) {
		rc.CachePath = filepath.Join(c.DataDir(), rc.CachePath)
	}
	svc.SymbolStore = resolverpkg.NewSymbolStore(rc.CachePath)
	svc.Engine = resolverpkg.NewEngine(rc, svc.Searchers, svc.Refdata, svc.SymbolStore)

	return svc
}

// loadMasterFromDB replaces the CSV-sourced securities master with the
// Postgres rows when the table is reachable and non-empty.
func (svc *ServiceContext) loadMasterFromDB() {
	ctx, cancel := context.WithTimeout(context.Background(), masterLoadTimeout)
	defer cancel()
	rows, err := svc.Securities.FindAll(ctx)
	if err != nil {
		logx.Errorf("securities master from postgres unavailable, using files: %v", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	svc.Refdata.SetMasterRows(rows)
	logx.Infof("securities master loaded from postgres: %d rows", len(rows))
}
