package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SystemBuilders/StripeKey/internal/ceph"
	"github.com/SystemBuilders/StripeKey/internal/config"
	"github.com/SystemBuilders/StripeKey/internal/lockservice"
	"github.com/SystemBuilders/StripeKey/internal/routing"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/SystemBuilders/StripeKey/internal/storage/storagetest"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDaemon(t *testing.T, pools ...*storagetest.Pool) {
	t.Helper()
	log := zerolog.New(os.Stdout).With().Logger().Level(zerolog.GlobalLevel())
	srv := httptest.NewServer(routing.SetupRouting(log, storagetest.NewProvider(pools...), nil, mux.NewRouter()))
	t.Cleanup(srv.Close)

	serverURL = srv.URL
	t.Cleanup(func() { serverURL = "" })
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	putFile = ""
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestObjectCommands(t *testing.T) {
	pool := storagetest.NewPool("rabbit")
	startDaemon(t, pool)

	out, err := run(t, "hello", "put", "rabbit", "obj")
	require.NoError(t, err)
	assert.Equal(t, "wrote 5 bytes to rabbit/obj\n", out)
	assert.Equal(t, []byte("hello"), pool.Get("obj").Data)

	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	_, err = run(t, "", "put", "rabbit", "other", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, []byte("from file"), pool.Get("other").Data)

	out, err = run(t, "", "stat", "rabbit", "obj")
	require.NoError(t, err)
	assert.Contains(t, out, `"size": 5`)

	pool.HoldStriperLock("obj", "client.4", "ck", "10.0.0.4:0/1")
	out, err = run(t, "", "lockers", "rabbit", "obj")
	require.NoError(t, err)
	assert.Contains(t, out, "client.4")

	out, err = run(t, "", "rm", "rabbit", "obj")
	require.NoError(t, err)
	assert.Equal(t, "removed rabbit/obj\n", out)
	assert.Nil(t, pool.Get("obj"))
}

func TestRemoveCommandBusy(t *testing.T) {
	pool := storagetest.NewPool("rabbit")
	pool.RemoveErrs = []error{storage.ErrBusy, storage.ErrBusy}
	startDaemon(t, pool)

	_, err := run(t, "", "rm", "rabbit", "obj")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrBusy)
	assert.Contains(t, err.Error(), "retry later")
}

func TestRemoveCommandBreakFailed(t *testing.T) {
	pool := storagetest.NewPool("rabbit")
	pool.HoldStriperLock("obj", "client.4", "ck", "")
	pool.BreakErr = storage.ErrBusy
	startDaemon(t, pool)

	_, err := run(t, "", "rm", "rabbit", "obj")
	require.Error(t, err)
	assert.ErrorIs(t, err, lockservice.ErrLockBreakFailed)
	assert.NotContains(t, err.Error(), "retry later")
}

func TestBreakCommand(t *testing.T) {
	pool := storagetest.NewPool("rabbit")
	pool.HoldStriperLock("obj", "client.4", "ck", "")
	startDaemon(t, pool)

	out, err := run(t, "", "break", "rabbit", "obj")
	require.NoError(t, err)
	assert.Equal(t, "lock on rabbit/obj broken\n", out)
	assert.False(t, pool.Locked("obj"))
}

func TestArgs(t *testing.T) {
	_, err := run(t, "", "rm", "rabbit")
	assert.Error(t, err)
}

func TestPickCluster(t *testing.T) {
	a := &ceph.Cluster{Name: "a"}
	b := &ceph.Cluster{Name: "b"}

	c, err := pickCluster(map[string]*ceph.Cluster{"a": a}, config.CephConfig{})
	require.NoError(t, err)
	assert.Same(t, a, c)

	_, err = pickCluster(map[string]*ceph.Cluster{"a": a, "b": b}, config.CephConfig{})
	assert.Error(t, err)

	c, err = pickCluster(map[string]*ceph.Cluster{"a": a, "b": b}, config.CephConfig{Cluster: "b"})
	require.NoError(t, err)
	assert.Same(t, b, c)

	_, err = pickCluster(map[string]*ceph.Cluster{"a": a}, config.CephConfig{Cluster: "z"})
	assert.Error(t, err)
}
