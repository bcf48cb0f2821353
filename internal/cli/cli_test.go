package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echopf/echo.go/internal/fakeecho"
	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/models"
)

func startServer(t *testing.T) *fakeecho.Server {
	t.Helper()
	server := fakeecho.NewServer("app", "key")
	t.Cleanup(server.Stop)
	return server
}

func useEnv(t *testing.T, server *fakeecho.Server) {
	t.Helper()
	t.Setenv("ECHO_DOMAIN", server.Address())
	t.Setenv("ECHO_SCHEME", "http")
	t.Setenv("ECHO_APP_ID", "app")
	t.Setenv("ECHO_APP_KEY", "key")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGet(t *testing.T) {
	server := startServer(t)
	refid := server.Seed("db", "record", map[string]any{"title": "hello", "n": 3})
	server.Start()
	useEnv(t, server)

	save := filepath.Join(t.TempDir(), "record.cbor")
	out, err := run(t, "get", "record", "db", refid, "--save", save)
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "hello"`)
	assert.Contains(t, out, `"refid": "`+refid+`"`)

	data, err := os.ReadFile(save)
	require.NoError(t, err)
	doc, err := models.Restore(data)
	require.NoError(t, err)
	assert.Equal(t, refid, doc.Address().Refid)
	assert.Equal(t, "hello", doc.OptString("title", ""))
	assert.Equal(t, 3, doc.OptInt("n", 0))
}

func TestGetUnknownResource(t *testing.T) {
	server := startServer(t)
	server.Start()
	useEnv(t, server)

	_, err := run(t, "get", "posts", "db", "p1")
	assert.ErrorContains(t, err, `unknown resource "posts"`)
	assert.Empty(t, server.Requests())
}

func TestGetNotFound(t *testing.T) {
	server := startServer(t)
	server.Start()
	useEnv(t, server)

	_, err := run(t, "get", "entry", "blog", "missing")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	server := startServer(t)
	for i := 0; i < 3; i++ {
		server.Seed("blog", "entry", map[string]any{"title": i})
	}
	server.Start()
	useEnv(t, server)

	out, err := run(t, "find", "entries", "blog", "--limit", "2", "--asc")
	require.NoError(t, err)
	assert.Contains(t, out, `"refid": "entry1"`)
	assert.Contains(t, out, `"refid": "entry2"`)
	assert.NotContains(t, out, `"refid": "entry3"`)
	assert.Contains(t, out, "page 1/2, 2 of 3 items")

	reqs := server.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "true", reqs[len(reqs)-1].Query.Get("asc"))
}

func TestFindMembers(t *testing.T) {
	server := startServer(t)
	server.Seed("users", "member", map[string]any{"refid": "m1", "name": "ann"})
	server.Start()
	useEnv(t, server)

	out, err := run(t, "find", "members", "users")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "ann"`)
	assert.Contains(t, out, "1 of 1 items")
}

func TestTree(t *testing.T) {
	server := startServer(t)
	server.Seed("blog", "categories", map[string]any{"refid": "news", "name": "News"})
	server.Seed("blog", "categories", map[string]any{"refid": "local", "name": "Local", "parent_refid": "news"})
	server.Seed("blog", "categories", map[string]any{"refid": "tech", "name": "Tech"})
	server.Start()
	useEnv(t, server)

	out, err := run(t, "tree", "categories", "blog")
	require.NoError(t, err)
	assert.Equal(t, "blog\n"+
		"├── News (news)\n"+
		"│   └── Local (local)\n"+
		"└── Tech (tech)\n", out)

	out, err = run(t, "tree", "categories", "blog", "news")
	require.NoError(t, err)
	assert.Equal(t, "News (news)\n"+
		"└── Local (local)\n", out)
}

func TestConfigFile(t *testing.T) {
	server := startServer(t)
	server.Seed("org", "groups", map[string]any{"refid": "staff", "name": "Staff"})
	server.Start()

	path := filepath.Join(t.TempDir(), "echo.yaml")
	content := "domain: " + server.Address() + "\nscheme: http\napp_id: app\napp_key: wrong\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := run(t, "tree", "groups", "org", "--config", path)
	assert.ErrorContains(t, err, "100020")

	out, err := run(t, "tree", "groups", "org", "--config", path, "--app-key", "key")
	require.NoError(t, err)
	assert.Contains(t, out, "Staff (staff)")
}

func TestMissingConfig(t *testing.T) {
	t.Setenv("ECHO_DOMAIN", "")
	t.Setenv("ECHO_APP_ID", "")
	t.Setenv("ECHO_APP_KEY", "")

	_, err := run(t, "tree", "groups", "org")
	assert.ErrorIs(t, err, constants.ErrNoDomain)

	_, err = run(t, "tree", "groups", "org", "--domain", "example.com")
	assert.ErrorIs(t, err, constants.ErrNoAppID)
}
