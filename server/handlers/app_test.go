package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/connection"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
)

func TestNewApp_DuckDB(t *testing.T) {
	settings := testSettings()
	settings.Engine = string(config.EngineDuckDB)

	app, err := NewApp(settings, logging.Nop())
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() {
		if err := app.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	duck, ok := app.Dialer.(*connection.DuckDBDialer)
	if !ok {
		t.Fatalf("Dialer = %T, want *connection.DuckDBDialer", app.Dialer)
	}
	if _, err := duck.Exec(context.Background(), "CREATE TABLE revenue (month VARCHAR, amount INTEGER); INSERT INTO revenue VALUES ('2024-01', 100), ('2024-02', 250)"); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	resp := invoke(t, app.Router, http.MethodPost, PathExecuteSQL, `{"sql":"SELECT month, amount FROM revenue ORDER BY month"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, body = %s", resp.StatusCode, resp.Body)
	}
	want := `{"columns":["month","amount"],"data":[{"amount":100,"month":"2024-01"},{"amount":250,"month":"2024-02"}],"row_count":2}`
	if diff := cmp.Diff(want, resp.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestNewApp_APIBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	settings := testSettings()
	settings.APIBaseURL = srv.URL

	app, err := NewApp(settings, logging.Nop())
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.Dialer.Engine() != config.EngineSnowflake {
		t.Errorf("Engine() = %q", app.Dialer.Engine())
	}

	resp := invoke(t, app.Router, http.MethodPost, PathChat, `{"messages":[{"role":"user","content":[]}]}`)
	if resp.StatusCode != http.StatusOK || resp.Body != `{"ok":true}` {
		t.Errorf("got %d %s", resp.StatusCode, resp.Body)
	}
}

func TestNewApp_UnknownEngine(t *testing.T) {
	settings := testSettings()
	settings.Engine = "oracle"

	if _, err := NewApp(settings, logging.Nop()); err == nil {
		t.Error("expected error for unknown engine")
	}
}
