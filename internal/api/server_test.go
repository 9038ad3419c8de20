package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tarot-go2/internal/api"
	"github.com/mcoot/tarot-go2/internal/config"
	"github.com/mcoot/tarot-go2/internal/testutil"
)

func TestServerConfigFrom(t *testing.T) {
	cfg, err := api.ServerConfigFrom(config.Server{})
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)

	cfg, err = api.ServerConfigFrom(config.Server{Port: "9090"})
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)

	_, err = api.ServerConfigFrom(config.Server{Port: "eighty"})
	assert.Error(t, err)
	_, err = api.ServerConfigFrom(config.Server{Port: "70000"})
	assert.Error(t, err)
}

func TestNewServerAddr(t *testing.T) {
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 9191

	s := api.NewServer(nil, cfg, testutil.NopLogger())

	assert.Equal(t, "127.0.0.1:9191", s.Addr())
}
