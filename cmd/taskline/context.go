package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"taskline/internal/board"
	"taskline/internal/config"
	"taskline/internal/logging"
	"taskline/internal/session"
	"taskline/internal/taskapi"
)

type commandContext struct {
	configFlag *string
	apiURLFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, apiURLFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiURLFlag: apiURLFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.apiURLFlag != nil {
			if override := strings.TrimSpace(*c.apiURLFlag); override != "" {
				cfg.API.BaseURL = strings.TrimRight(override, "/")
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	if c.loggerErr != nil {
		return logging.NewNop(), c.loggerErr
	}
	return c.logger, nil
}

func (c *commandContext) sessionStore() (session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.NewFileStore(cfg.SessionPath()), nil
}

func (c *commandContext) apiClient() (*taskapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	sessions, err := c.sessionStore()
	if err != nil {
		return nil, err
	}
	logger, _ := c.ensureLogger()
	return taskapi.New(cfg.API.BaseURL, sessions,
		taskapi.WithLogger(logger),
		taskapi.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
	)
}

// withBoard runs fn against a fully wired board backed by the on-disk
// journal. The journal database is closed when fn returns.
func (c *commandContext) withBoard(fn func(*board.Board, *board.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	sessions, err := c.sessionStore()
	if err != nil {
		return err
	}
	client, err := c.apiClient()
	if err != nil {
		return err
	}
	logger, _ := c.ensureLogger()

	store, err := board.OpenStore(cfg.BoardDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(board.New(client, sessions, store, logger), store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
