package container

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teciza/desk/internal/application/service"
	"github.com/teciza/desk/internal/domain/entity"
	"github.com/teciza/desk/pkg/database"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Database: database.Config{
			Path:         filepath.Join(t.TempDir(), "desk.db"),
			MaxOpenConns: 1,
		},
		Desk: DeskConfig{
			RequestURL:      "/api/method",
			DefaultLanguage: "en",
			Location:        time.UTC,
			Today:           time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Desk.RequestURL = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	assert.False(t, c.Health(context.Background()).Overall)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start must fail")

	health := c.Health(ctx)
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestContainer_EndToEnd(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Close()

	repos := c.Repositories()
	err = c.DB().WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repos.Document.Save(txCtx, &entity.Document{
			Doctype: entity.DoctypeWPS, Name: "WPS-0001", DocStatus: entity.DocStatusSubmitted,
		}); err != nil {
			return err
		}
		return repos.Defaults.SetDefault(txCtx, entity.GlobalDefaultsParent, entity.DefaultKeyCompany, "Teciza")
	})
	require.NoError(t, err)

	session := service.Session{User: entity.GuestUser, Language: "ar"}

	view, err := c.Services().Form.Render(ctx, session, entity.DoctypeWPS, "WPS-0001")
	require.NoError(t, err)
	assert.Equal(t, []string{"تنزيل"}, view.Buttons)

	target, err := c.Services().Form.Activate(ctx, session, entity.DoctypeWPS, "WPS-0001", "تنزيل")
	require.NoError(t, err)
	assert.Equal(t, "/api/method?cmd=teciza.teciza.doctype.wps.wps.get_wps_csv&docname=WPS-0001", target)

	filters, err := c.Services().Report.Filters(ctx, service.Session{User: "hr@teciza.com"}, entity.ReportWPS)
	require.NoError(t, err)
	require.Len(t, filters, 6)
	assert.Equal(t, "Teciza", filters[0].Default)
	assert.Equal(t, "2024-02-29", filters[1].Default)
	assert.Equal(t, "2024-03-31", filters[2].Default)
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewServiceLogger(zap.New(core))

	logger.Info("Rendered form", "doctype", "WPS", "buttons", 1, 42, "dropped")
	logger.Error("Failed", "error", assert.AnError)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]interface{}{"doctype": "WPS", "buttons": int64(1)}, entries[0].ContextMap())
	assert.Equal(t, assert.AnError.Error(), entries[1].ContextMap()["error"])
}
