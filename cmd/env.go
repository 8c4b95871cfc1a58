package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/longkey1/ragchat/internal/app"
	"github.com/longkey1/ragchat/internal/backend"
	"github.com/longkey1/ragchat/internal/logging"
	"github.com/longkey1/ragchat/internal/ragchat/config"
	"github.com/longkey1/ragchat/internal/ragchat/session"
)

// environment is everything a command needs to talk to the backend.
type environment struct {
	cfg     *config.Config
	logger  zerolog.Logger
	app     *app.App
	closers []io.Closer
}

// newEnvironment loads the configuration, opens the session store and wires
// the chat client. With logToFile, logs go to the rotating log file so they
// never reach the terminal.
func newEnvironment(logToFile bool) (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	storePath := cfg.StorePath
	if storePath == "" {
		storePath, err = session.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Console: os.Stderr}
	if logToFile {
		logOpts.File = cfg.LogFile
		if logOpts.File == "" {
			logOpts.File = filepath.Join(filepath.Dir(storePath), config.DefaultLogFile)
		}
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	kv, err := session.OpenBoltStore(storePath)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	logger.Debug().Str("store", kv.Path()).Str("api_url", cfg.APIURL).Msg("environment ready")

	client := backend.NewClient(cfg.APIURL,
		backend.WithRequestTimeout(cfg.RequestTimeout()),
		backend.WithLogger(logger),
	)

	return &environment{
		cfg:     cfg,
		logger:  logger,
		app:     app.New(client, kv, logger),
		closers: []io.Closer{kv, logCloser},
	}, nil
}

// Close releases the store lock and the log file.
func (e *environment) Close() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing: %v\n", err)
		}
	}
}
