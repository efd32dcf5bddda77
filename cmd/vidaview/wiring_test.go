package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	apartmentsapp "vidaview/internal/app/handlers/apartments"
	"vidaview/internal/app/handlers/support"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/services/auth"
	"vidaview/internal/infra/config"
	ginserver "vidaview/internal/infra/http/gin"
	"vidaview/internal/infra/obs"
)

const seedJSON = `{
  "users": [
    {"id": "owner-1", "email": "Owner@Example.com", "name": "Ayu", "phone": "0811", "password": "secret123", "role": "owner"},
    {"id": "admin-1", "email": "admin@example.com", "name": "Root", "phone": "0812", "password": "secret123", "role": "admin"}
  ],
  "apartments": [
    {"owner_id": "owner-1", "title": "Kemang Loft", "address": "Jl. Kemang 1", "city": "Jakarta", "monthly_rent": 5000000, "deposit": 5000000}
  ]
}`

func memoryConfig() config.Config {
	return config.Config{
		Env:           "test",
		HTTPAddr:      ":0",
		LogLevel:      "error",
		StorageDriver: config.StorageMemory,
		NotifyMode:    config.NotifyStore,
		LockWait:      time.Second,
		Currency:      "IDR",
		CodeAttempts:  3,
		SweepInterval: time.Minute,
		SessionTTL:    time.Hour,
	}
}

func buildTestApplication(t *testing.T) *application {
	t.Helper()
	cfg := memoryConfig()
	app, err := buildApplication(context.Background(), cfg, obs.NewLogger(cfg.Env, cfg.LogLevel))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	return path
}

func TestBuildApplicationMemory(t *testing.T) {
	app := buildTestApplication(t)

	require.NotNil(t, app.commands)
	require.NotNil(t, app.queries)
	require.NotNil(t, app.sweeper)
	require.Empty(t, app.checks)

	commandBus, queryBus := commands.NewInMemoryBus(), queries.NewInMemoryBus()
	registerHandlers(commandBus, queryBus, support.Deps{}, stores{}, app.cfg)
	require.Equal(t, []string{
		"apartments.create", "apartments.pricing.update",
		"booking.activate", "booking.approve", "booking.cancel", "booking.complete", "booking.create", "booking.reject",
		"notifications.mark_all_read", "notifications.mark_read",
		"payment.confirm", "payment.create", "payment.fail", "payment.refund",
		"reviews.approve", "reviews.delete", "reviews.submit",
	}, commandBus.Keys())
	require.Len(t, queryBus.Keys(), 15)

	result, err := app.sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.Activated)
	require.Zero(t, result.Completed)

	require.Equal(t, "booking.lifecycle_sweep", app.scheduler().Jobs[0].Name())
}

func TestLoadSeedIsRepeatable(t *testing.T) {
	app := buildTestApplication(t)
	path := writeSeed(t)
	ctx := context.Background()

	require.NoError(t, app.loadSeed(ctx, path))
	require.NoError(t, app.loadSeed(ctx, path))

	list, err := queries.Ask[apartmentsapp.ListApartmentsQuery, dto.ApartmentCollection](ctx, app.queries, apartmentsapp.ListApartmentsQuery{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "Kemang Loft", list.Items[0].Title)
	require.Equal(t, "IDR", list.Items[0].MonthlyRent.Currency)

	login, err := app.auth.Login(ctx, auth.LoginParams{Email: "owner@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "owner-1", string(login.User.ID))
}

func TestLoadSeedRejectsMalformedFile(t *testing.T) {
	app := buildTestApplication(t)
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	require.Error(t, app.loadSeed(context.Background(), path))
	require.Error(t, app.loadSeed(context.Background(), filepath.Join(t.TempDir(), "missing.json")))
}

func TestServeOwnerDashboardThroughHTTP(t *testing.T) {
	app := buildTestApplication(t)
	ctx := context.Background()
	require.NoError(t, app.loadSeed(ctx, writeSeed(t)))

	server := ginserver.NewServer(memoryConfig(), obs.Middleware{Logger: app.logger}, app.health(), app.handlers)
	login, err := app.auth.Login(ctx, auth.LoginParams{Email: "owner@example.com", Password: "secret123"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/owner", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, strings.Contains(rec.Body.String(), `"units":{"total":1,"available":1`), rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
