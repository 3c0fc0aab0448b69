package deps

import (
	"context"
	"fmt"
	"sync"
	"time"
	"verifyme/internal/config"
	dl "verifyme/internal/core/domain/logging"
	drl "verifyme/internal/core/domain/rate_limiter"
	duow "verifyme/internal/core/domain/unit_of_work"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/db"
	uow "verifyme/internal/db/unit_of_work"
	dbuser "verifyme/internal/db/user"
	"verifyme/internal/implementations/activation"
	"verifyme/internal/implementations/email"
	"verifyme/internal/implementations/logging"
	passwordhasher "verifyme/internal/implementations/password_hasher"
	ratelimiter "verifyme/internal/implementations/rate_limiter"
	"verifyme/internal/rabbitmq"
	activationcodepublisher "verifyme/internal/rabbitmq/publishers/activation_code"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config *config.Config
	Logger dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork     duow.UnitOfWork
	UserRepository user.UserRepository

	// Nil when Redis is not configured.
	RateLimiter drl.RateLimiter

	PasswordHasher          user.PasswordHasher
	ActivationCodeGenerator user.ActivationCodeGenerator
	ActivationCodeSender    user.ActivationCodeSender
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	deps.migrate()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	deps.UserRepository = dbuser.NewPgxRepository(deps.DB)

	deps.PasswordHasher = deps.initPasswordHasher()
	deps.ActivationCodeGenerator = activation.NewCodeGenerator()
	closeActivationCodeSender := deps.initActivationCodeSender()

	flushSentry := deps.initSentry()

	return deps, func() {
		closeFuncs := []func(){
			closeActivationCodeSender,
			closeRedisClient,
			closePgxPool,
			flushSentry,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.LogLevel)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) migrate() {
	if !deps.Config.MigrateOnStart {
		deps.Logger.Info(context.Background(), "DB migrations on start are disabled.")
		return
	}
	if err := db.Migrate(deps.Config.PostgresqlURL); err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}
	deps.Logger.Info(context.Background(), "DB migrations applied.")
}

func (deps *Deps) initPgxPool() func() {
	poolConfig, err := pgxpool.ParseConfig(deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Invalid DB connection string.", dl.Entry("err", err))
		panic(err)
	}
	poolConfig.MaxConns = deps.Config.DBPoolMaxConns
	poolConfig.MinConns = deps.Config.DBPoolMinConns

	db, err := pgxpool.ConnectConfig(context.Background(), poolConfig)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	if deps.Config.RedisURL == "" {
		deps.Logger.Info(context.Background(), "Redis is not configured, rate limiting is disabled.")
		return func() {}
	}
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	deps.RateLimiter = ratelimiter.NewRedis(redisClient, deps.Logger, func() time.Time { return time.Now().UTC() })
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initPasswordHasher() user.PasswordHasher {
	if deps.Config.PasswordHasher == config.PasswordHasherBcrypt {
		return passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	}
	return passwordhasher.NewArgon2(deps.Config.Secret, passwordhasher.DefaultArgon2Params)
}

func (deps *Deps) initActivationCodeSender() func() {
	switch deps.Config.NotificationSender {
	case config.NotificationSenderSES:
		deps.ActivationCodeSender = email.NewSESSender(
			deps.initAwsConfig(),
			deps.Config.AwsEmailSender,
			deps.Config.AwsEmailActivateAccountTemplate,
		)
	case config.NotificationSenderSMTP:
		deps.ActivationCodeSender = email.NewSMTPSender(
			deps.Config.SMTPHost,
			deps.Config.SMTPPort,
			deps.Config.SMTPUser,
			deps.Config.SMTPPassword,
			deps.Config.SMTPFrom,
			deps.Config.NotificationTimeout,
		)
	case config.NotificationSenderRabbitmq:
		return deps.initRabbitmqActivationCodePublisher()
	default:
		deps.ActivationCodeSender = email.NewConsoleSender(deps.Logger)
	}
	deps.Logger.Info(
		context.Background(),
		"Activation code sender initialized.",
		dl.Entry("sender", deps.Config.NotificationSender),
	)
	return func() {}
}

func (deps *Deps) initAwsConfig() aws.Config {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 1)
		}),
	)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (deps *Deps) initRabbitmqActivationCodePublisher() func() {
	connection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = connection

	channel, err := connection.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	queue := deps.Config.RabbitmqActivationCodeQueue
	if err := channel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	deps.ActivationCodeSender = activationcodepublisher.NewRabbitMQ(deps.Logger, channel, "", queue)
	deps.Logger.Info(
		context.Background(),
		"Activation code sender initialized.",
		dl.Entry("sender", deps.Config.NotificationSender),
		dl.Entry("queue", queue),
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		channel.Close()
		connection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initSentry() func() {
	if deps.Config.SentryDsn != nil {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              deps.Config.SentryDsn.String(),
			TracesSampleRate: 0.01,
		})
		if err != nil {
			panic(fmt.Sprintf("could not init Sentry: %v\n", err))
		}
		deps.Logger.Info(context.Background(), "Sentry has been successfully initialized.")
		return func() {
			ok := sentry.Flush(5 * time.Second)
			deps.Logger.Info(context.Background(), "Sentry events flushed.", dl.Entry("ok", ok))
		}
	}

	deps.Logger.Info(context.Background(), "Sentry is disabled.")
	return func() {}
}
