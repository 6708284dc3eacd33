package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUDPSink binds a local UDP socket and returns its address plus a function
// that reads the next datagram.
func newUDPSink(t *testing.T) (string, func() string) {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	recv := func() string {
		buf := make([]byte, 1024)
		require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, readErr := pc.ReadFrom(buf)
		require.NoError(t, readErr)
		return string(buf[:n])
	}
	return pc.LocalAddr().String(), recv
}

func TestClient_EmitsTaggedLines(t *testing.T) {
	addr, recv := newUDPSink(t)

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		Prefix:     "kbsite",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()
	require.True(t, client.Enabled())

	client.Count("authz.role_check.total", 1, map[string]string{"outcome": "ok"})
	assert.Equal(t, "kbsite.authz.role_check.total:1|c|#env:test,outcome:ok", recv())

	client.Gauge("sessions.active", 12.5, nil)
	assert.Equal(t, "kbsite.sessions.active:12.5|g|#env:test", recv())

	client.Timing("authz.role_check", 42*time.Millisecond, nil)
	assert.Equal(t, "kbsite.authz.role_check:42|ms|#env:test", recv())
}

func TestClient_LocalTagsOverrideGlobal(t *testing.T) {
	addr, recv := newUDPSink(t)

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		GlobalTags: map[string]string{"env": "test", " padded ": " trimmed "},
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Count("hits", 2, map[string]string{"env": "override", "": "dropped"})
	assert.Equal(t, "hits:2|c|#env:override,padded:trimmed", recv())
}

func TestClient_DisabledDropsMetrics(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	// Must not panic with no connection.
	client.Count("hits", 1, nil)
	client.Timing("latency", time.Second, nil)
	assert.NoError(t, client.Close())
}

func TestClient_NilReceiverIsSafe(t *testing.T) {
	var client *Client

	assert.False(t, client.Enabled())
	client.Count("hits", 1, nil)
	client.Gauge("value", 1, nil)
	client.Timing("latency", time.Second, nil)
	assert.NoError(t, client.Close())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	addr, _ := newUDPSink(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	require.True(t, client.Enabled())

	assert.NoError(t, client.Close())
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())

	// Metrics after close are dropped silently.
	client.Count("hits", 1, nil)
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		" job/metric ":  "job_metric",
		"foo..bar":      "foo.bar",
		"multi  space":  "multi__space",
		"slash/name/id": "slash_name_id",
		".edge.":        "edge",
		"":              "",
	}
	for input, want := range tests {
		assert.Equal(t, want, cleanName(input), "cleanName(%q)", input)
	}
}

func TestCleanPrefix(t *testing.T) {
	tests := map[string]string{
		"  metrics.app  ": "metrics.app",
		"..foo..":         "foo",
		".":               "",
		"":                "",
	}
	for input, want := range tests {
		assert.Equal(t, want, cleanPrefix(input), "cleanPrefix(%q)", input)
	}
}

func TestTagSuffix(t *testing.T) {
	assert.Empty(t, tagSuffix(nil, nil))
	assert.Empty(t, tagSuffix(map[string]string{"": "x"}, nil))
	assert.Equal(t, "|#a:1,b:2",
		tagSuffix(map[string]string{"b": "2"}, map[string]string{"a": "1"}))
}
