package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gabapcia/faucet/internal/faucet"
	"github.com/gabapcia/faucet/internal/handlers/cli"
	"github.com/gabapcia/faucet/internal/handlers/http"
	"github.com/gabapcia/faucet/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/faucet/internal/infra/storage/cache"
	"github.com/gabapcia/faucet/internal/infra/storage/dynamodb"
	"github.com/gabapcia/faucet/internal/infra/storage/redis"
	"github.com/gabapcia/faucet/internal/infra/storage/sql"
	"github.com/gabapcia/faucet/internal/pkg/config"
	"github.com/gabapcia/faucet/internal/pkg/logger"
	"github.com/gabapcia/faucet/internal/pkg/x/keylock"

	"github.com/ethereum/go-ethereum/common"
)

// claimStore is what every storage backend provides.
type claimStore interface {
	faucet.ClaimStorage
	faucet.ClaimLister
}

// operator is the account that funds claims.
type operator interface {
	cli.Wallet
	faucet.Disburser
}

type redisClient interface {
	claimStore
	faucet.Locker
	io.Closer
}

// application wires the configured components together. Each component is
// built on first use and reused afterwards.
type application struct {
	cfg config.Config

	redis   redisClient
	store   claimStore
	wallet  operator
	service faucet.Service
	closers []io.Closer
}

var _ cli.Application = (*application)(nil)

func newApplication(cfg config.Config) *application {
	return &application{cfg: cfg}
}

// Close releases every connection opened so far.
func (a *application) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn(ctx, "closing resource", "error", err)
		}
	}
}

func (a *application) redisConn(ctx context.Context) (redisClient, error) {
	if a.redis != nil {
		return a.redis, nil
	}

	s := a.cfg.Store
	client, err := redis.NewClient(ctx, s.RedisAddr, s.RedisUsername, string(s.RedisPassword), s.RedisDB,
		redis.WithLockTTL(a.cfg.Lock.TTL),
		redis.WithLockWait(a.cfg.Lock.WaitAttempts, a.cfg.Lock.WaitDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	a.redis = client
	a.closers = append(a.closers, client)
	return client, nil
}

func (a *application) Claims(ctx context.Context) (faucet.ClaimLister, error) {
	return a.storage(ctx)
}

func (a *application) storage(ctx context.Context) (claimStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	s := a.cfg.Store
	switch s.Backend {
	case config.StoreRedis:
		client, err := a.redisConn(ctx)
		if err != nil {
			return nil, err
		}
		a.store = client
	case config.StoreSQLite, config.StorePostgres:
		driver, dsn := sql.DriverSQLite, s.SQLitePath
		if s.Backend == config.StorePostgres {
			driver, dsn = sql.DriverPostgres, string(s.PostgresDSN)
		}

		store, err := sql.Open(ctx, driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", s.Backend, err)
		}
		a.store = store
		a.closers = append(a.closers, store)
	case config.StoreDynamoDB:
		store, err := dynamodb.Connect(ctx, s.DynamoDBTable, s.DynamoDBRegion, s.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		a.store = store
	default:
		return nil, fmt.Errorf("unknown store backend %q", s.Backend)
	}

	logger.Info(ctx, "claim store ready", "backend", s.Backend)
	return a.store, nil
}

func (a *application) locker(ctx context.Context) (faucet.Locker, error) {
	switch a.cfg.Lock.Mode {
	case config.LockMemory:
		return keylock.New(), nil
	case config.LockRedis:
		return a.redisConn(ctx)
	default:
		return nil, nil
	}
}

func (a *application) Wallet(ctx context.Context) (cli.Wallet, error) {
	return a.funder(ctx)
}

func (a *application) funder(ctx context.Context) (operator, error) {
	if a.wallet != nil {
		return a.wallet, nil
	}

	c := a.cfg.Chain
	client, err := ethereum.NewClient(ctx, c.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing chain node: %w", err)
	}
	a.closers = append(a.closers, closerFunc(client.Close))

	var opts []ethereum.Option
	if c.Mode == config.ModeERC20 {
		opts = append(opts, ethereum.WithToken(common.HexToAddress(c.TokenAddress)))
	}
	if c.GasLimit > 0 {
		opts = append(opts, ethereum.WithGasLimit(c.GasLimit))
	}

	d, err := ethereum.NewDisburser(ctx, client, string(c.PrivateKey), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating disburser: %w", err)
	}

	logger.Info(ctx, "disburser ready", "operator", d.Address(), "mode", c.Mode)

	a.wallet = d
	return d, nil
}

func (a *application) Service(ctx context.Context) (faucet.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	store, err := a.storage(ctx)
	if err != nil {
		return nil, err
	}

	claims := a.cached(store)

	wallet, err := a.funder(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := a.cfg.Claim.BaseUnits()
	if err != nil {
		return nil, err
	}

	opts := []faucet.Option{
		faucet.WithDisbursementTimeout(a.cfg.Claim.DisbursementTimeout),
		faucet.WithRecordTimeout(a.cfg.Claim.RecordTimeout),
	}

	locker, err := a.locker(ctx)
	if err != nil {
		return nil, err
	}
	if locker != nil {
		opts = append(opts, faucet.WithLocker(locker))
	}

	a.service = faucet.New(claims, wallet, amount, opts...)
	return a.service, nil
}

// StatusReader answers status queries from the store alone; the chain node is never dialed.
func (a *application) StatusReader(ctx context.Context) (faucet.StatusReader, error) {
	store, err := a.storage(ctx)
	if err != nil {
		return nil, err
	}

	return faucet.NewStatusReader(a.cached(store)), nil
}

// cached puts the positive claim cache in front of store when a TTL is configured.
func (a *application) cached(store claimStore) faucet.ClaimStorage {
	if ttl := a.cfg.Store.CacheTTL; ttl > 0 {
		return cache.New(store, cache.WithTTL(ttl))
	}

	return store
}

func (a *application) Server(ctx context.Context) (cli.Server, error) {
	svc, err := a.Service(ctx)
	if err != nil {
		return nil, err
	}

	h := a.cfg.HTTP
	return http.New(h.Addr, svc,
		http.WithServiceName(a.cfg.ServiceName),
		http.WithTimeouts(h.ReadTimeout, h.WriteTimeout),
		http.WithRateLimit(h.RateLimit, h.RateBurst),
	), nil
}

// closerFunc adapts a func() to io.Closer.
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
