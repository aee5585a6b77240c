package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/flota/api"
	"github.com/wricardo/mcp-training/flota/game/config"
	"github.com/wricardo/mcp-training/flota/game/service"
	"github.com/wricardo/mcp-training/flota/game/session"
)

func startServer(t *testing.T) string {
	t.Helper()
	rules, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	ts := httptest.NewServer(api.NewServer(service.NewGameService(session.NewManager(), rules), nil))
	t.Cleanup(ts.Close)
	return ts.URL
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"flota", "--server", server}, args...))
	return out.String(), err
}

func TestNewProbeShipSolutionDelete(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "new", "6", "6", "2")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	assert.Equal(t, "1", id)

	out, err = run(t, server, "ship", id, "0")
	require.NoError(t, err)
	record := strings.TrimSpace(out)
	assert.Regexp(t, `^\d+#\d+#[HV]#\d+$`, record)

	out, err = run(t, server, "solution", "--board", "6x6", id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0 "+record+"\n"), out)
	assert.Contains(t, out, "S")

	fields := strings.Split(record, "#")
	out, err = run(t, server, "probe", id, fields[0], fields[1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "-2 hit") || strings.HasPrefix(out, "0 newly_sunk ship=0"), out)

	_, err = run(t, server, "delete", id)
	require.NoError(t, err)

	_, err = run(t, server, "ship", id, "0")
	assert.Error(t, err)
}

func TestPlay(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "play", "--verbose", "8", "8", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "match 1: 3 ships sunk in")
	assert.Contains(t, out, "newly_sunk")

	// The match was cleaned up afterwards
	_, err = run(t, server, "delete", "1")
	assert.Error(t, err)

	out, err = run(t, server, "play", "--keep", "5", "5", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "match 2: 1 ships sunk")
	_, err = run(t, server, "delete", strconv.Itoa(2))
	assert.NoError(t, err)
}

func TestArgumentErrors(t *testing.T) {
	server := startServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing args", []string{"new", "6", "6"}, "expected ROWS COLUMNS SHIPS"},
		{"not a number", []string{"probe", "1", "a", "2"}, "ROW must be an integer"},
		{"bad board flag", []string{"solution", "--board", "big", "1"}, "--board must look like"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, server, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
