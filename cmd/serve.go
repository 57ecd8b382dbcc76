package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"github.com/meisaku/ms-go-user/app/controller"
	"github.com/meisaku/ms-go-user/app/mailer"
	"github.com/meisaku/ms-go-user/app/service"
	"github.com/meisaku/ms-go-user/config"
	"github.com/meisaku/ms-go-user/migrations"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Apply pending schema migrations and start the HTTP (Echo) server for the user provisioning service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Startup order matters: storage ready, migrations applied, template
// registry loaded, then traffic. Nothing is mutated after this point except
// the template registry, which swaps whole snapshots.
func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := migrations.Up(migrateCtx, db); err != nil {
		logrus.WithError(err).Fatal("Failed to apply migrations")
	}

	templates, err := mailer.NewTemplateRegistry()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load email templates")
	}

	resendMailer := mailer.NewResendMailer(&http.Client{Timeout: 10 * time.Second}, cfg.Resend, templates)
	hasher := service.NewPasswordHasher(cfg.Argon2)
	registrationService := service.NewRegistrationService(db, hasher, resendMailer)

	startHTTPServer(cfg, registrationService)
}

func startHTTPServer(cfg *config.Config, registrationService *service.RegistrationService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip": v.RemoteIP,
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())

	userController := controller.NewUserController(registrationService, cfg.AppBaseURL)

	e.GET("/healthcheck", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, world!")
	})

	user := e.Group("/user")
	user.POST("", userController.CreateUser)
	user.GET("/activate", userController.ActivateEmail)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}
