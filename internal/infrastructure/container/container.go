package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"astrox/internal/application/port"
	"astrox/internal/infrastructure/config"
	"astrox/internal/infrastructure/ephemeris"
	"astrox/internal/infrastructure/ephemeris/cache"
	_ "astrox/internal/infrastructure/ephemeris/fixture"
	_ "astrox/internal/infrastructure/ephemeris/remote"
	compositerepo "astrox/internal/infrastructure/storage/composite"
	pgrepo "astrox/internal/infrastructure/storage/postgres"
	redisrepo "astrox/internal/infrastructure/storage/redis"
	sqliterepo "astrox/internal/infrastructure/storage/sqlite"
)

// Container 包含所有基础设施依赖
type Container struct {
	cfg         *config.Config
	redisClient *redis.Client
	sqliteRepo  *sqliterepo.Repo
	pgRepo      *pgrepo.Repo
	redisRepo   *redisrepo.Repo
	repo        *compositerepo.Repo
	ephemeris   port.Ephemeris
	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建新的容器实例
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	// 初始化存储层
	if cfg.Storage.Enabled || cfg.Ephemeris.Cache.Enabled {
		if err := c.initStorage(ctx); err != nil {
			// 清理已初始化的资源
			_ = c.Close()
			return nil, err
		}
	}

	if err := c.initEphemeris(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ephemeris init failed: %w", err)
	}

	return c, nil
}

// initStorage 初始化存储层（Redis、SQLite、Postgres）
func (c *Container) initStorage(ctx context.Context) error {
	// Redis
	if c.cfg.Storage.Redis.Enabled {
		if err := c.initRedis(ctx); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
	}

	if !c.cfg.Storage.Enabled {
		return nil
	}

	// SQLite
	if c.cfg.Storage.SQLite.Enabled {
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
	}

	// Postgres
	if c.cfg.Storage.Postgres.Enabled {
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
	}

	var repos []port.ChartRepository
	if c.sqliteRepo != nil {
		repos = append(repos, c.sqliteRepo)
	}
	if c.pgRepo != nil {
		repos = append(repos, c.pgRepo)
	}
	if c.redisRepo != nil {
		repos = append(repos, c.redisRepo)
	}
	if len(repos) == 0 {
		return ErrNoRepositoryEnabled
	}
	c.repo = compositerepo.New(repos...)
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis(ctx context.Context) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Storage.Redis.Addr,
		Password: c.cfg.Storage.Redis.Password,
		DB:       c.cfg.Storage.Redis.DB,
	})

	// 测试连接
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb
	if c.cfg.Storage.Enabled {
		ttl := time.Duration(c.cfg.Storage.Redis.TTLSeconds) * time.Second
		c.redisRepo = redisrepo.New(
			rdb,
			c.cfg.Storage.Redis.Prefix,
			ttl,
			c.cfg.Storage.Redis.Stream,
			c.cfg.Storage.Redis.Channel,
		)
	}

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", c.cfg.Storage.Redis.Addr).
		Int("db", c.cfg.Storage.Redis.DB).
		Msg("redis initialized")

	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}

	c.sqliteRepo = repo

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")

	return nil
}

// initPostgres 初始化 Postgres 连接并迁移
func (c *Container) initPostgres() error {
	repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}

	c.pgRepo = repo
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("postgres initialized")
	return nil
}

// initEphemeris 初始化星历源，启用缓存时包一层 Redis
func (c *Container) initEphemeris() error {
	factory, ok := ephemeris.Get(c.cfg.Ephemeris.Driver)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEphemerisDriver, c.cfg.Ephemeris.Driver)
	}
	eph, err := factory(ephemeris.Options{
		FixturePath: c.cfg.Ephemeris.FixturePath,
		URL:         c.cfg.Ephemeris.URL,
		Timeout:     c.cfg.EphemerisTimeout(),
	})
	if err != nil {
		return err
	}
	log.Info().Str("driver", c.cfg.Ephemeris.Driver).Msg("ephemeris ready")

	if c.cfg.Ephemeris.Cache.Enabled {
		if c.redisClient == nil {
			return ErrCacheWithoutRedis
		}
		ttl := time.Duration(c.cfg.Ephemeris.Cache.TTLSeconds) * time.Second
		eph = cache.New(eph, c.redisClient, c.cfg.Ephemeris.Cache.Prefix, ttl)
		log.Info().Dur("ttl", ttl).Msg("ephemeris cache enabled")
	}

	c.ephemeris = eph
	return nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Ephemeris 获取星历源
func (c *Container) Ephemeris() port.Ephemeris {
	return c.ephemeris
}

// Repository 获取组合仓储，未启用存储时为 nil
func (c *Container) Repository() port.ChartStore {
	if c.repo == nil {
		return nil
	}
	return c.repo
}

// RedisClient 获取 Redis 客户端
func (c *Container) RedisClient() *redis.Client {
	return c.redisClient
}

// SQLiteRepo 获取 SQLite 仓储
func (c *Container) SQLiteRepo() *sqliterepo.Repo {
	return c.sqliteRepo
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
