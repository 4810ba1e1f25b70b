package main

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/api"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/katatrina/sheep-market-BE/internal/housekeeping"
	"github.com/katatrina/sheep-market-BE/internal/identity"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/notification"
	"github.com/katatrina/sheep-market-BE/internal/storage"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/verification"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	_ "github.com/katatrina/sheep-market-BE/docs"
)

//	@title			Sheep Market API
//	@version		1.0.0
//	@description	API documentation for the Sheep Market application

//	@host		localhost:8080
//	@BasePath	/v1
//	@schemes	http https

//	@securityDefinitions.apikey	accessToken
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	if !config.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Info().Msg("configurations loaded successfully ✅")

	ctx := context.Background()

	var firebaseOpts []option.ClientOption
	if config.FirebaseCredentialsFile != "" {
		firebaseOpts = append(firebaseOpts, option.WithCredentialsFile(config.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: config.FirebaseProjectID}, firebaseOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase app 😣")
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to firestore 😣")
	}
	defer firestoreClient.Close()
	log.Info().Msg("connected to firestore ✅")

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firebase auth client 😣")
	}

	store := db.NewStore(firestoreClient)
	identityProvider := identity.NewFirebaseProvider(authClient, config.FirebaseWebAPIKey)

	redisDb := redis.NewClient(&redis.Options{
		Addr: config.RedisServerAddress,
	})
	if err = redisDb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis 😣")
	}
	log.Info().Msg("connected to redis ✅")

	codeLimiter := verification.NewRedisLimiter(redisDb, config.CodeResendInterval)

	mailSender, err := newMailSender(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mail sender 😣")
	}

	fileStore, err := newFileStore(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create file store 😣")
	}

	alerter, err := notification.NewAlerter(config.DiscordBotToken, config.DiscordChannelID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin alerter 😣")
	}

	eventSender := event.NewSSEServer()
	go eventSender.Run()

	redisOpt := asynq.RedisClientOpt{
		Addr: config.RedisServerAddress,
	}
	taskDistributor := worker.NewTaskDistributor(redisOpt)

	go runTaskProcessor(redisOpt, store, mailSender, eventSender, alerter)

	housekeeper, err := housekeeping.NewHousekeeper(store, identityProvider, taskDistributor)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create housekeeper 😣")
	}
	if err = housekeeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start housekeeper 😣")
	}
	defer housekeeper.Stop()
	log.Info().Msg("housekeeping jobs scheduled ✅")

	runHTTPServer(&config, store, identityProvider, fileStore, taskDistributor, codeLimiter, eventSender)
}

func newMailSender(config util.Config) (mailer.Sender, error) {
	if config.MailProvider == util.MailProviderSMTP {
		return mailer.NewSMTPSender(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword,
			config.MailSenderName, config.MailSenderAddress)
	}

	return mailer.NewResendSender(config.ResendAPIKey, config.MailSenderName, config.MailSenderAddress), nil
}

func newFileStore(config util.Config) (storage.FileStore, error) {
	if config.ImageProvider == util.ImageProviderCloudinary {
		return storage.NewCloudinaryStore(config.CloudinaryURL)
	}

	return storage.NewImgBBStore(config.ImgBBAPIKey), nil
}

func runTaskProcessor(
	redisOpt asynq.RedisClientOpt,
	store db.Store,
	mailSender mailer.Sender,
	eventSender event.EventSender,
	alerter notification.Alerter,
) {
	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, store, mailSender, eventSender, alerter)
	log.Info().Msg("start task processor 🚀")

	if err := taskProcessor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start task processor 😣")
	}
}

func runHTTPServer(
	config *util.Config,
	store db.Store,
	identityProvider identity.Provider,
	fileStore storage.FileStore,
	taskDistributor worker.TaskDistributor,
	codeLimiter verification.Limiter,
	eventSender event.EventSender,
) {
	server, err := api.NewServer(store, identityProvider, fileStore, taskDistributor, codeLimiter, eventSender, config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server 😣")
	}

	log.Info().Str("address", config.HTTPServerAddress).Msg("start HTTP server 🚀")
	if err = server.Start(config.HTTPServerAddress); err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
	}
}
