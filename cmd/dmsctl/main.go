// dmsctl — консольный клиент API документов.
// Использует те же сервисы, что и gateway; токен хранится в файле
// DMS_TOKEN_FILE (по умолчанию $HOME/.dms_token).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/dms-admin/internal/config"
	"github.com/bigkaa/goartstore/dms-admin/internal/directclient"
	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// cliSession — идентификатор сессии CLI в файле токенов.
const cliSession = "cli"

var errNotLoggedIn = errors.New("вход не выполнен: запустите dmsctl otp и dmsctl login")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		fail(err)
	}

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		if errors.Is(err, dmsapi.ErrUnauthorized) {
			a.logout(context.Background())
		}
		stop()
		fail(err)
	}
}

// fail печатает сообщение для пользователя красным и завершает процесс.
func fail(err error) {
	_, _ = color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, userMessage(err))
	os.Exit(1)
}

// app — сервисы CLI.
type app struct {
	tokens   *session.FileStore
	auth     *service.AuthService
	search   *service.SearchService
	archives *service.ArchiveService
	tags     *service.TagService
	logger   *slog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("конфигурация: %w", err)
	}

	// stdout занят выводом команд
	level := slog.LevelWarn
	if cfg.LogLevel < level {
		level = cfg.LogLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	api, err := dmsapi.New(cfg.APIBaseURL, cfg.APICACertPath, cfg.APITimeout, logger)
	if err != nil {
		return nil, err
	}
	direct, err := directclient.New(cfg.APICACertPath, cfg.DirectTimeout, logger)
	if err != nil {
		return nil, err
	}

	tokenFile, err := tokenFilePath()
	if err != nil {
		return nil, err
	}

	// одна команда — один поиск
	search := service.NewSearchService(api, service.NewStateStore(1, cfg.StateTTL), logger)
	chain := service.NewChain(logger, service.NewDirectStrategy(direct), service.NewProxyStrategy(api))

	return &app{
		tokens:   session.NewFileStore(tokenFile),
		auth:     service.NewAuthService(api, logger),
		search:   search,
		archives: service.NewArchiveService(search, chain, logger),
		tags:     service.NewTagService(api, service.NewTagCache(1, cfg.TagCacheTTL), logger),
		logger:   logger,
	}, nil
}

// tokenFilePath — DMS_TOKEN_FILE или $HOME/.dms_token.
func tokenFilePath() (string, error) {
	if p := os.Getenv("DMS_TOKEN_FILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("DMS_TOKEN_FILE не задан и домашний каталог неизвестен: %w", err)
	}
	return filepath.Join(home, ".dms_token"), nil
}

// credential читает сохранённый токен.
func (a *app) credential(ctx context.Context) (session.Credential, error) {
	tok, err := a.tokens.Get(ctx, cliSession)
	if errors.Is(err, session.ErrNoToken) {
		return session.Credential{}, errNotLoggedIn
	}
	if err != nil {
		return session.Credential{}, err
	}
	return session.Credential{SessionID: cliSession, Token: tok}, nil
}

// logout удаляет сохранённый токен.
func (a *app) logout(ctx context.Context) {
	if err := a.tokens.Delete(ctx, cliSession); err != nil {
		a.logger.Warn("Токен не удалён", slog.String("error", err.Error()))
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dmsctl",
		Short:         "Консольный клиент API документов",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newOTPCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newSearchCmd(a),
		newTagsCmd(a),
		newArchiveCmd(a),
	)
	return root
}
