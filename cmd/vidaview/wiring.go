package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vidaview/internal/app/commands"
	apartmentsapp "vidaview/internal/app/handlers/apartments"
	bookingapp "vidaview/internal/app/handlers/booking"
	dashboardapp "vidaview/internal/app/handlers/dashboard"
	notificationsapp "vidaview/internal/app/handlers/notifications"
	paymentsapp "vidaview/internal/app/handlers/payments"
	reviewsapp "vidaview/internal/app/handlers/reviews"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/locking"
	"vidaview/internal/app/middleware"
	"vidaview/internal/app/notifications"
	appoutbox "vidaview/internal/app/outbox"
	"vidaview/internal/app/policies"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/schedule"
	"vidaview/internal/app/services/auth"
	"vidaview/internal/app/uow"
	domainauth "vidaview/internal/domain/auth"
	domainnotification "vidaview/internal/domain/notification"
	"vidaview/internal/domain/shared/code"
	domainuser "vidaview/internal/domain/user"
	"vidaview/internal/infra/broker/kafka"
	"vidaview/internal/infra/config"
	mongostore "vidaview/internal/infra/db/mongo"
	"vidaview/internal/infra/db/postgres"
	ginserver "vidaview/internal/infra/http/gin"
	"vidaview/internal/infra/lock"
	"vidaview/internal/infra/notify"
	"vidaview/internal/infra/obs"
	infraoutbox "vidaview/internal/infra/outbox"
	"vidaview/internal/infra/security"
	"vidaview/internal/infra/storage/memory"
)

// application is everything serve and sweep need, built once from Config.
type application struct {
	cfg      config.Config
	logger   *slog.Logger
	commands commands.Bus
	queries  queries.Bus
	users    domainuser.Repository
	auth     *auth.Service
	sweeper  *bookingapp.Sweeper
	handlers ginserver.Handlers
	checks   map[string]obs.Check
	closers  []func(context.Context) error
}

// stores groups the persistence chosen by STORAGE_DRIVER.
type stores struct {
	factory       uow.UoWFactory
	users         domainuser.Repository
	sessions      domainauth.SessionStore
	notifications domainnotification.Repository
	idempotency   middleware.IdempotencyStore
	outbox        appoutbox.Outbox
	// outboxInTx is set when outbox writes join the ledger transaction.
	outboxInTx bool
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger, checks: map[string]obs.Check{}}
	st, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	locker := app.buildLocker()
	notifier, err := app.buildNotifier(st)
	if err != nil {
		app.Close()
		return nil, err
	}
	deferred := &notifications.Deferred{Next: notifier, Logger: logger}

	box := st.outbox
	var outboxOuter, outboxInner []middleware.CommandMiddleware
	if st.outboxInTx {
		outboxInner = append(outboxInner, middleware.OutboxFlush(box))
	} else {
		buffered := &appoutbox.Deferred{Next: st.outbox}
		box = buffered
		outboxOuter = append(outboxOuter, middleware.OutboxBuffer(buffered))
	}

	deps := support.Deps{
		UoWFactory: st.factory,
		Locker:     locker,
		Notifier:   deferred,
		Outbox:     box,
		Logger:     logger,
	}
	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	registerHandlers(commandBus, queryBus, deps, st, cfg)

	mws := []middleware.CommandMiddleware{
		middleware.Logging(logger),
		middleware.NotificationFlush(deferred),
		middleware.LockScope(),
		middleware.Idempotency(st.idempotency, nil),
		middleware.Validation(),
	}
	mws = append(mws, outboxOuter...)
	mws = append(mws, middleware.Transaction(st.factory))
	mws = append(mws, outboxInner...)
	app.commands = middleware.ChainCommands(commandBus, mws...)
	app.queries = middleware.ChainQueries(queryBus, middleware.QueryLogging(logger))

	app.users = st.users
	app.sweeper = &bookingapp.Sweeper{UoWFactory: st.factory, Bus: app.commands, Logger: logger}
	app.auth = &auth.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{Prefix: "vv_"},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: app.auth, Logger: logger},
		Apartment:      ginserver.ApartmentHandler{Commands: app.commands, Queries: app.queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: app.commands, Queries: app.queries, Logger: logger},
		Payment:        ginserver.PaymentHandler{Commands: app.commands, Queries: app.queries, Logger: logger},
		Reviews:        ginserver.ReviewsHandler{Commands: app.commands, Queries: app.queries, Logger: logger},
		Dashboard:      ginserver.DashboardHandler{Queries: app.queries, Logger: logger},
		Notification:   ginserver.NotificationHandler{Commands: app.commands, Queries: app.queries, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: app.auth, Logger: logger}.Handle,
	}
	return app, nil
}

func registerHandlers(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, deps support.Deps, st stores, cfg config.Config) {
	bookingCodes := code.Generator{Prefix: code.BookingPrefix}
	paymentCodes := code.Generator{Prefix: code.PaymentPrefix}

	commands.Register(cmds, &apartmentsapp.CreateApartmentHandler{Deps: deps, Currency: cfg.Currency})
	commands.Register(cmds, &apartmentsapp.UpdatePricingHandler{Deps: deps})

	commands.Register(cmds, &bookingapp.CreateBookingHandler{Deps: deps, Codes: bookingCodes, CodeAttempts: cfg.CodeAttempts})
	commands.Register(cmds, &bookingapp.ApproveBookingHandler{Deps: deps})
	commands.Register(cmds, &bookingapp.RejectBookingHandler{Deps: deps})
	commands.Register(cmds, &bookingapp.CancelBookingHandler{Deps: deps})
	commands.Register(cmds, &bookingapp.ActivateBookingHandler{Deps: deps})
	commands.Register(cmds, &bookingapp.CompleteBookingHandler{Deps: deps})

	commands.Register(cmds, &paymentsapp.CreatePaymentHandler{Deps: deps, Codes: paymentCodes, CodeAttempts: cfg.CodeAttempts})
	commands.Register(cmds, &paymentsapp.ConfirmPaymentHandler{Deps: deps})
	commands.Register(cmds, &paymentsapp.FailPaymentHandler{Deps: deps})
	commands.Register(cmds, &paymentsapp.RefundPaymentHandler{Deps: deps})

	commands.Register(cmds, &reviewsapp.SubmitReviewHandler{Deps: deps})
	commands.Register(cmds, &reviewsapp.ApproveReviewHandler{Deps: deps})
	commands.Register(cmds, &reviewsapp.DeleteReviewHandler{Deps: deps})

	commands.Register(cmds, &notificationsapp.MarkReadHandler{Store: st.notifications, Logger: deps.Logger})
	commands.Register(cmds, &notificationsapp.MarkAllReadHandler{Store: st.notifications, Logger: deps.Logger})

	queries.Register(qs, &apartmentsapp.GetApartmentHandler{UoWFactory: st.factory})
	queries.Register(qs, &apartmentsapp.ListApartmentsHandler{UoWFactory: st.factory})
	queries.Register(qs, &bookingapp.GetBookingHandler{UoWFactory: st.factory})
	queries.Register(qs, &bookingapp.ListBookingsHandler{UoWFactory: st.factory})
	queries.Register(qs, &paymentsapp.GetPaymentHandler{UoWFactory: st.factory})
	queries.Register(qs, &paymentsapp.ListBookingPaymentsHandler{UoWFactory: st.factory})
	queries.Register(qs, &reviewsapp.ListApartmentReviewsHandler{UoWFactory: st.factory})
	queries.Register(qs, &reviewsapp.ListPendingReviewsHandler{UoWFactory: st.factory})
	queries.Register(qs, &reviewsapp.ListMyReviewsHandler{UoWFactory: st.factory})
	queries.Register(qs, &notificationsapp.ListNotificationsHandler{Store: st.notifications})
	queries.Register(qs, &notificationsapp.UnreadCountHandler{Store: st.notifications})

	reader := dashboardapp.Reader{UoWFactory: st.factory, Users: st.users, Currency: cfg.Currency}
	queries.Register(qs, &dashboardapp.AdminStatsHandler{Reader: reader})
	queries.Register(qs, &dashboardapp.OwnerStatsHandler{Reader: reader})
	queries.Register(qs, &dashboardapp.TenantStatsHandler{Reader: reader})
	queries.Register(qs, &dashboardapp.RevenueChartHandler{Reader: reader})
}

func (a *application) openStores(ctx context.Context) (stores, error) {
	cfg := a.cfg
	if cfg.StorageDriver == config.StorageMemory {
		return stores{
			factory:       memory.NewFactory(),
			users:         memory.NewUserRepository(),
			sessions:      memory.NewSessionStore(),
			notifications: memory.NewNotificationRepository(),
			idempotency:   memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			outbox:        memory.NewOutbox(),
		}, nil
	}

	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, client.Close)
	a.checks["mongo"] = client.Ping
	if err := ensureMongoIndexes(ctx, client, cfg); err != nil {
		return stores{}, err
	}
	st := stores{
		factory:       mongostore.NewFactory(client.DB),
		users:         mongostore.NewUserRepository(client.DB),
		sessions:      mongostore.NewSessionStore(client.DB),
		notifications: mongostore.NewNotificationRepository(client.DB),
		idempotency:   mongostore.NewIdempotencyStore(client.DB),
		outbox:        infraoutbox.NewStore(client.DB),
		outboxInTx:    true,
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return st, nil
	}

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	a.checks["postgres"] = db.PingContext
	st.factory = postgres.Factory{DB: db}
	st.outboxInTx = false
	return st, nil
}

func (a *application) buildLocker() locking.Locker {
	cfg := a.cfg
	if cfg.RedisAddr == "" {
		return lock.NewLocal(cfg.LockWait)
	}
	client := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return &lock.Redis{
		Client: client,
		Prefix: "vidaview:lock:",
		TTL:    cfg.LockTTL,
		Wait:   cfg.LockWait,
		Logger: a.logger,
	}
}

func (a *application) buildNotifier(st stores) (policies.Notifier, error) {
	cfg := a.cfg
	var primary policies.Notifier = &notify.Store{Repo: st.notifications}
	if cfg.NotifyMode == config.NotifyKafka {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("vidaview-api"))
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		primary = &notify.Publisher{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix}
	}
	if cfg.NotifyWebhookURL == "" {
		return primary, nil
	}
	return notify.Fanout{primary, notify.NewWebhook(cfg.NotifyWebhookURL, cfg.NotifyWebhookTimeout)}, nil
}

func (a *application) health() obs.HealthHandlers {
	return obs.HealthHandlers{Checks: a.checks, Timeout: 2 * time.Second}
}

func (a *application) scheduler() *schedule.Periodic {
	return &schedule.Periodic{
		Interval:   a.cfg.SweepInterval,
		Jobs:       []schedule.Job{a.sweeper},
		Logger:     a.logger,
		RunOnStart: a.cfg.SweepOnStart,
	}
}

// Close releases connections in reverse order of opening.
func (a *application) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func connectMongo(ctx context.Context, cfg config.Config) (*mongostore.Client, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

func ensureMongoIndexes(ctx context.Context, client *mongostore.Client, cfg config.Config) error {
	if err := mongostore.EnsureIndexes(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return infraoutbox.NewStore(client.DB).EnsureIndexes(ctx)
}
