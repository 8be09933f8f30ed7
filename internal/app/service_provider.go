package app

import (
	"context"
	adminAPI "run_the_numbers/internal/api/admin"
	authAPI "run_the_numbers/internal/api/auth"
	prizeAPI "run_the_numbers/internal/api/prize"
	statsAPI "run_the_numbers/internal/api/stats"
	tableAPI "run_the_numbers/internal/api/table"
	"run_the_numbers/internal/api/ws"
	"run_the_numbers/internal/config"
	"run_the_numbers/internal/config/env"
	"run_the_numbers/internal/logger"
	"run_the_numbers/internal/metrics"
	"run_the_numbers/internal/repository"
	"run_the_numbers/internal/repository/audit_repo"
	"run_the_numbers/internal/repository/auth_repo"
	"run_the_numbers/internal/repository/hand_publisher"
	"run_the_numbers/internal/repository/house_stats_repo"
	"run_the_numbers/internal/repository/image_store"
	"run_the_numbers/internal/repository/prize_repo"
	"run_the_numbers/internal/repository/profile_cache"
	"run_the_numbers/internal/repository/profile_repo"
	"run_the_numbers/internal/repository/user_repo"
	"run_the_numbers/internal/service"
	"run_the_numbers/internal/service/auth"
	"run_the_numbers/internal/service/prize"
	"run_the_numbers/internal/service/profile"
	"run_the_numbers/internal/service/stats"
	"run_the_numbers/internal/service/table"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const imagesURLPrefix = "/images/"

type ServiceProvider struct {
	// appCtx отменяется по сигналу остановки
	appCtx context.Context

	// Configs
	appCfg     config.AppConfig
	httpCfg    config.HTTPConfig
	pgConfig   config.PGConfig
	jwtCfg     config.JWTConfig
	redisCfg   config.RedisConfig
	kafkaCfg   config.KafkaConfig
	profileCfg config.ProfileConfig
	gameCfg    config.GameConfig

	// Logging and metrics
	log     *zap.Logger
	metrics *metrics.Metrics

	// TXManager
	txManager trm.Manager

	// Storage
	dbClient    *pgxpool.Pool
	redisClient *redis.Client

	// Repositories
	authRepo     repository.AuthRepository
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	profileCache repository.ProfileCache
	auditRepo    repository.AuditRepository
	publisher    repository.HandPublisher
	prizeRepo    repository.PrizeRepository
	imageStore   repository.ImageStore
	houseStats   repository.HouseStatsRepository

	// Services
	authServ    service.AuthService
	profileServ service.ProfileService
	tableServ   service.TableService
	prizeServ   service.PrizeService
	statsServ   service.StatsService

	// Handlers and websocket hub
	authHand  *authAPI.Handler
	tableHand *tableAPI.Handler
	prizeHand *prizeAPI.Handler
	adminHand *adminAPI.Handler
	statsHand *statsAPI.Handler
	wsHub     *ws.Hub
}

func newServiceProvider(appCtx context.Context) *ServiceProvider {
	return &ServiceProvider{appCtx: appCtx}
}

func (sp *ServiceProvider) AppCfg() config.AppConfig {
	if sp.appCfg == nil {
		sp.appCfg = env.NewAppConfig()
	}
	return sp.appCfg
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}
	return sp.httpCfg
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) RedisCfg() config.RedisConfig {
	if sp.redisCfg == nil {
		cfg, err := env.NewRedisConfig()
		if err != nil {
			panic("failed to get redis config: " + err.Error())
		}
		sp.redisCfg = cfg
	}
	return sp.redisCfg
}

func (sp *ServiceProvider) KafkaCfg() config.KafkaConfig {
	if sp.kafkaCfg == nil {
		sp.kafkaCfg = env.NewKafkaConfig()
	}
	return sp.kafkaCfg
}

func (sp *ServiceProvider) ProfileCfg() config.ProfileConfig {
	if sp.profileCfg == nil {
		cfg, err := env.NewProfileConfig()
		if err != nil {
			panic("failed to get profile config: " + err.Error())
		}
		sp.profileCfg = cfg
	}
	return sp.profileCfg
}

func (sp *ServiceProvider) GameCfg() config.GameConfig {
	if sp.gameCfg == nil {
		cfg, err := env.NewGameConfig()
		if err != nil {
			panic("failed to get game config: " + err.Error())
		}
		sp.gameCfg = cfg
	}
	return sp.gameCfg
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	if sp.log == nil {
		log, err := logger.New(sp.AppCfg().ServiceName(), sp.AppCfg().Env())
		if err != nil {
			panic("failed to create logger: " + err.Error())
		}
		sp.log = log
	}
	return sp.log
}

// Metrics регистрируются в глобальном реестре, его отдаёт /metrics
func (sp *ServiceProvider) Metrics() *metrics.Metrics {
	if sp.metrics == nil {
		sp.metrics = metrics.New(prometheus.DefaultRegisterer)
	}
	return sp.metrics
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		// Проверка соединения при старте
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

// RedisClient nil, если REDIS_ADDR не задан
func (sp *ServiceProvider) RedisClient(ctx context.Context) *redis.Client {
	if sp.redisClient == nil && sp.RedisCfg().Address() != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     sp.RedisCfg().Address(),
			Password: sp.RedisCfg().Password(),
			DB:       sp.RedisCfg().DB(),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			panic("failed to ping redis: " + err.Error())
		}
		sp.redisClient = rdb
	}
	return sp.redisClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}
		sp.txManager = m
	}
	return sp.txManager
}

func (sp *ServiceProvider) AuthRepo(ctx context.Context) repository.AuthRepository {
	if sp.authRepo == nil {
		sp.authRepo = auth_repo.NewAuthRepository(sp.DBClient(ctx))
	}
	return sp.authRepo
}

func (sp *ServiceProvider) UserRepo(ctx context.Context) repository.UserRepository {
	if sp.userRepo == nil {
		sp.userRepo = user_repo.NewUserRepository(sp.DBClient(ctx))
	}
	return sp.userRepo
}

func (sp *ServiceProvider) ProfileRepo(ctx context.Context) repository.ProfileRepository {
	if sp.profileRepo == nil {
		sp.profileRepo = profile_repo.NewProfileRepository(sp.DBClient(ctx))
	}
	return sp.profileRepo
}

// ProfileCache без Redis профили читаются напрямую из бд
func (sp *ServiceProvider) ProfileCache(ctx context.Context) repository.ProfileCache {
	if sp.profileCache == nil {
		if rdb := sp.RedisClient(ctx); rdb != nil {
			sp.profileCache = profile_cache.NewProfileCache(rdb, sp.ProfileCfg().SyncInterval())
		} else {
			sp.Logger().Info("REDIS_ADDR is empty, profile cache disabled")
			sp.profileCache = profile_cache.NewNoopCache()
		}
	}
	return sp.profileCache
}

func (sp *ServiceProvider) AuditRepo(ctx context.Context) repository.AuditRepository {
	if sp.auditRepo == nil {
		sp.auditRepo = audit_repo.NewAuditRepository(sp.DBClient(ctx))
	}
	return sp.auditRepo
}

// HandPublisher без брокеров события раздач не публикуются
func (sp *ServiceProvider) HandPublisher() repository.HandPublisher {
	if sp.publisher == nil {
		if brokers := sp.KafkaCfg().Brokers(); len(brokers) > 0 {
			sp.publisher = hand_publisher.NewKafkaPublisher(
				hand_publisher.NewWriter(brokers, sp.KafkaCfg().HandsTopic()),
			)
		} else {
			sp.Logger().Info("KAFKA_BROKERS is empty, hand events are not published")
			sp.publisher = hand_publisher.NewNoopPublisher()
		}
	}
	return sp.publisher
}

func (sp *ServiceProvider) PrizeRepo(ctx context.Context) repository.PrizeRepository {
	if sp.prizeRepo == nil {
		sp.prizeRepo = prize_repo.NewPrizeRepository(sp.DBClient(ctx))
	}
	return sp.prizeRepo
}

func (sp *ServiceProvider) ImageStore() repository.ImageStore {
	if sp.imageStore == nil {
		s, err := image_store.NewImageStore(sp.AppCfg().ImageDir(), imagesURLPrefix)
		if err != nil {
			panic("failed to create image store: " + err.Error())
		}
		sp.imageStore = s
	}
	return sp.imageStore
}

func (sp *ServiceProvider) HouseStatsRepo() repository.HouseStatsRepository {
	if sp.houseStats == nil {
		// 0: окно по умолчанию
		sp.houseStats = house_stats_repo.NewHouseStatsRepository(0)
	}
	return sp.houseStats
}

func (sp *ServiceProvider) AuthService(ctx context.Context) service.AuthService {
	if sp.authServ == nil {
		sp.authServ = auth.NewAuthService(
			sp.TXManager(ctx),
			sp.UserRepo(ctx),
			sp.AuthRepo(ctx),
			sp.JWTCfg(),
			sp.Logger(),
		)
	}
	return sp.authServ
}

func (sp *ServiceProvider) ProfileService(ctx context.Context) service.ProfileService {
	if sp.profileServ == nil {
		sp.profileServ = profile.NewProfileService(
			sp.ProfileRepo(ctx),
			sp.ProfileCache(ctx),
			sp.UserRepo(ctx),
			sp.ProfileCfg(),
			table.EngineConfig(sp.GameCfg()).InitialBankroll,
			sp.Logger(),
		)
	}
	return sp.profileServ
}

// TableService фоновые раздачи живут на контексте приложения, а не запроса
func (sp *ServiceProvider) TableService(ctx context.Context) service.TableService {
	if sp.tableServ == nil {
		s, err := table.NewTableService(sp.appCtx, table.Deps{
			Game:           sp.GameCfg(),
			Profiles:       sp.ProfileService(ctx),
			Audit:          sp.AuditRepo(ctx),
			Publisher:      sp.HandPublisher(),
			HouseStats:     sp.HouseStatsRepo(),
			TxManager:      sp.TXManager(ctx),
			Metrics:        sp.Metrics(),
			Log:            sp.Logger(),
			PersistTimeout: sp.ProfileCfg().FetchTimeout(),
		})
		if err != nil {
			panic("failed to create table service: " + err.Error())
		}
		sp.tableServ = s
	}
	return sp.tableServ
}

// PrizeService покупка проходит через стол игрока, чтобы не пересечься с раздачей
func (sp *ServiceProvider) PrizeService(ctx context.Context) service.PrizeService {
	if sp.prizeServ == nil {
		sp.prizeServ = prize.NewPrizeService(
			sp.TXManager(ctx),
			sp.PrizeRepo(ctx),
			sp.ProfileRepo(ctx),
			sp.ImageStore(),
			sp.TableService(ctx),
			sp.Metrics(),
			sp.Logger(),
		)
	}
	return sp.prizeServ
}

func (sp *ServiceProvider) StatsService() service.StatsService {
	if sp.statsServ == nil {
		sp.statsServ = stats.NewStatsService(sp.HouseStatsRepo())
	}
	return sp.statsServ
}

func (sp *ServiceProvider) AuthHandler(ctx context.Context) *authAPI.Handler {
	if sp.authHand == nil {
		sp.authHand = authAPI.NewHandler(authAPI.HandlerDeps{
			Serv:   sp.AuthService(ctx),
			Table:  sp.TableService(ctx),
			Log:    sp.Logger(),
			// Secure cookie везде, кроме локального запуска по http
			Secure: sp.AppCfg().Env() != "local",
		})
	}
	return sp.authHand
}

func (sp *ServiceProvider) TableHandler(ctx context.Context) *tableAPI.Handler {
	if sp.tableHand == nil {
		sp.tableHand = tableAPI.NewHandler(tableAPI.HandlerDeps{
			Serv: sp.TableService(ctx),
			Log:  sp.Logger(),
		})
	}
	return sp.tableHand
}

func (sp *ServiceProvider) PrizeHandler(ctx context.Context) *prizeAPI.Handler {
	if sp.prizeHand == nil {
		sp.prizeHand = prizeAPI.NewHandler(prizeAPI.HandlerDeps{
			Serv: sp.PrizeService(ctx),
			Log:  sp.Logger(),
		})
	}
	return sp.prizeHand
}

func (sp *ServiceProvider) AdminHandler(ctx context.Context) *adminAPI.Handler {
	if sp.adminHand == nil {
		sp.adminHand = adminAPI.NewHandler(adminAPI.HandlerDeps{
			Prizes: sp.PrizeService(ctx),
			Log:    sp.Logger(),
		})
	}
	return sp.adminHand
}

func (sp *ServiceProvider) StatsHandler() *statsAPI.Handler {
	if sp.statsHand == nil {
		sp.statsHand = statsAPI.NewHandler(statsAPI.HandlerDeps{Serv: sp.StatsService()})
	}
	return sp.statsHand
}

func (sp *ServiceProvider) WSHub(ctx context.Context) *ws.Hub {
	if sp.wsHub == nil {
		sp.wsHub = ws.NewHub(sp.TableService(ctx), sp.Metrics(), sp.Logger(), allowAnyOrigin)
	}
	return sp.wsHub
}
