package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chemstore/internal/app"
	"chemstore/internal/config"
	"chemstore/internal/database"
	"chemstore/internal/notify"
	"chemstore/internal/repositories"
	"chemstore/internal/services"
	"chemstore/internal/upload"
	"chemstore/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and serve the HTTP API",
	Long: `Serve runs the HTTP API until SIGINT or SIGTERM. With MAIL_TRANSPORT=queue
it also drains the email queue and sends each message over SMTP.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	uploader, err := upload.NewDiskUploader(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		return err
	}

	mail, err := newMailTransport(cfg)
	if err != nil {
		return err
	}
	defer mail.Close()

	store := repositories.NewGORMStore(db)
	application := app.New(app.Deps{
		Auth:     newAuthService(cfg, store, mail.mailer),
		Products: services.NewProductService(store.Products(), uploader),
		Carts:    services.NewCartService(store),
		Orders:   services.NewOrderService(store, uploader, mail.mailer),
		Ping: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
		BodyLimit:     cfg.BodyLimit,
		UploadDir:     cfg.UploadDir,
		UploadBaseURL: cfg.UploadBaseURL,
		CookieSecure:  cfg.CookieSecure,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := application.Listen(cfg.AppPort); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return application.Shutdown()
	})
	if mail.consume != nil {
		g.Go(func() error {
			log.Println("Starting email queue consumer...")
			return mail.consume(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Server gracefully stopped")
	return nil
}

func newAuthService(cfg config.Config, store repositories.Store, mailer notify.Mailer) *services.AuthService {
	return services.NewAuthService(store.Users(), mailer, services.AuthConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessExpiry:  cfg.AccessTokenExpiry,
		RefreshExpiry: cfg.RefreshTokenExpiry,
		OTPTTL:        cfg.OTPTTL,
	})
}

// mailTransport is the mailer the services use plus, for the queue
// transport, the consumer that performs delivery.
type mailTransport struct {
	mailer  notify.Mailer
	consume func(ctx context.Context) error
	close   func() error
}

func (t *mailTransport) Close() {
	if t.close == nil {
		return
	}
	if err := t.close(); err != nil {
		log.Printf("Error closing mail transport: %v", err)
	}
}

func newMailTransport(cfg config.Config) (*mailTransport, error) {
	smtpConfig := notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}

	switch cfg.MailTransport {
	case config.MailSMTP:
		return &mailTransport{mailer: notify.NewSMTPMailer(smtpConfig)}, nil
	case config.MailQueue:
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.EmailQueue})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		deliver := notify.DeliveryHandler(notify.NewSMTPMailer(smtpConfig))
		return &mailTransport{
			mailer: notify.NewQueueMailer(client),
			consume: func(ctx context.Context) error {
				return client.Consume(ctx, deliver)
			},
			close: client.Close,
		}, nil
	default:
		return &mailTransport{mailer: notify.LogMailer{}}, nil
	}
}
