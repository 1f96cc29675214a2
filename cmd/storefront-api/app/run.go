package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ioproxxy/sahasexpress/configs"
	"github.com/ioproxxy/sahasexpress/internal/adapter/cache"
	"github.com/ioproxxy/sahasexpress/internal/adapter/daraja"
	httpadapter "github.com/ioproxxy/sahasexpress/internal/adapter/http"
	"github.com/ioproxxy/sahasexpress/internal/adapter/http/middleware"
	"github.com/ioproxxy/sahasexpress/internal/adapter/kafka"
	"github.com/ioproxxy/sahasexpress/internal/adapter/mpesa"
	"github.com/ioproxxy/sahasexpress/internal/adapter/queue"
	"github.com/ioproxxy/sahasexpress/internal/adapter/repo"
	"github.com/ioproxxy/sahasexpress/internal/adapter/sched"
	"github.com/ioproxxy/sahasexpress/internal/catalog"
	"github.com/ioproxxy/sahasexpress/internal/logging"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig builds the whole application. MySQL, Redis, RabbitMQ and
// Kafka are all optional; the core runs fully in memory without them.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	logger.Info("storefront-api: starting up")

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// catalog
	products, err := catalog.Seed(cfg.Catalog.SeedFile)
	if err != nil {
		return nil, nil, err
	}
	catalogStore := catalog.NewStore(products)

	// order store: MySQL when configured, in-memory otherwise
	var orderStore usecase.OrderStore = repo.NewMemoryOrderStore()
	if cfg.MySQL.DSN != "" {
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			_ = db.Close()
			return fail(err)
		}
		cleanups = append(cleanups, func() { _ = db.Close() })
		orderStore = repo.NewMySQLOrderStore(db)
	}

	// redis status cache (best effort projection)
	var statusCache usecase.StatusCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fail(err)
		}
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		statusCache = cache.NewRedisStatusCache(rdb, cfg.Redis.TTL)
	}

	// rabbitmq order events + notification consumer
	var events usecase.EventPublisher
	if cfg.Rabbit.URL != "" {
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return fail(err)
		}
		ch, err := conn.Channel()
		if err != nil {
			return fail(err)
		}
		cleanups = append(cleanups, func() { _ = ch.Close(); _ = conn.Close() })

		producer, err := queue.NewRabbitProducer(ch)
		if err != nil {
			return fail(err)
		}
		events = producer

		if err := setupNotifications(ch); err != nil {
			return fail(err)
		}
	}

	// lifecycle + scheduler
	scheduler := sched.NewTimerScheduler()
	cleanups = append(cleanups, scheduler.Stop)
	lifecycle := usecase.NewOrderLifecycle(
		orderStore, scheduler, statusCache, events,
		cfg.Lifecycle.ProcessingAfter, cfg.Lifecycle.ShippedAfter,
		logging.New("lifecycle"),
	)
	cleanups = append(cleanups, lifecycle.Stop)

	// kafka fulfilment status feed
	if len(cfg.Kafka.Brokers) > 0 {
		if err := setupStatusFeed(cfg, lifecycle, &cleanups); err != nil {
			return fail(err)
		}
	}

	// core services
	cart := usecase.NewCartService(catalogStore, logging.New("cart"))
	gateway := mpesa.NewClient(cfg.Mpesa.GatewayURL, cfg.Mpesa.Timeout)
	checkout := usecase.NewCheckout(
		cart, gateway, lifecycle,
		cfg.Checkout.ConfirmDelay,
		decimal.NewFromFloat(cfg.Mpesa.SandboxAmount),
		logging.New("checkout"),
	)

	proxy := daraja.NewProxy(daraja.Config{
		Env:            cfg.Daraja.Env,
		ConsumerKey:    cfg.Daraja.ConsumerKey,
		ConsumerSecret: cfg.Daraja.ConsumerSecret,
		Shortcode:      cfg.Daraja.Shortcode,
		Passkey:        cfg.Daraja.Passkey,
		CallbackURL:    cfg.Daraja.CallbackURL,
	}, logging.New("daraja"))

	handlers := httpadapter.Handlers{
		Cart:     httpadapter.NewCartHandler(cart, catalogStore),
		Checkout: httpadapter.NewCheckoutHandler(checkout),
		Orders:   httpadapter.NewOrderHandler(lifecycle),
		Catalog:  httpadapter.NewCatalogHandler(catalogStore),
		Token:    httpadapter.NewTokenHandler(cfg),
	}
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(handlers, authz, proxy, logging.New("http"))

	return &App{Router: router}, cleanup, nil
}

func setupNotifications(ch *amqp.Channel) error {
	log := logging.New("notify")
	h := queue.NewNotifyHandler(queue.LogNotifier{Log: log}, log)

	router := queue.NewRouter(ch, logging.New("rmq-router"), queue.WithPrefetch(50))
	router.Register("order.notifications.q", h)
	return router.Start()
}

func setupStatusFeed(cfg configs.Config, lifecycle *usecase.OrderLifecycle, cleanups *[]func()) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewOrderStatusUpdateHandler(lifecycle)
	log := logging.New("kafka")
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.StatusTopic}, h.Handle, log)

	ctx, cancel := context.WithCancel(context.Background())
	*cleanups = append(*cleanups, func() { cancel(); _ = grp.Close() })

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("status feed consumer stopped", "error", err)
		}
	}()
	return nil
}
