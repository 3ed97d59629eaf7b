package handlers

import (
	"io"
	"strings"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/connection"
	"github.com/nnnkkk7/snowflake-bridge/pkg/cortex"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/pkg/query"
)

// App is a router wired from Settings, shared by the Lambda and local entry points.
type App struct {
	Router *Router
	Dialer connection.Dialer
}

// NewApp wires the SQL engine, the Cortex Analyst client and the router.
func NewApp(settings *config.Settings, logger *logging.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	dialer, err := connection.NewDialer(settings.SQLEngine(), settings.DuckDBPath)
	if err != nil {
		return nil, err
	}

	opts := []cortex.Option{
		cortex.WithDefaultSemanticModel(settings.DefaultSemanticModelPath()),
		cortex.WithLogger(logger),
	}
	if base := strings.TrimSpace(settings.APIBaseURL); base != "" {
		opts = append(opts, cortex.WithBaseURL(base))
	}

	executor := query.NewExecutor(dialer, logger)
	analyst := cortex.NewClient(settings.AnalystTimeout(), opts...)
	handler := NewBridgeHandler(settings, executor, analyst, logger)

	return &App{
		Router: NewRouter(handler, logger),
		Dialer: dialer,
	}, nil
}

// Close releases the SQL engine if it holds a shared database.
func (a *App) Close() error {
	if c, ok := a.Dialer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
