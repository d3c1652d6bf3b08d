package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noa10/mataresit-app-sub017/pkg/config"
	"github.com/noa10/mataresit-app-sub017/pkg/registry"
	"github.com/noa10/mataresit-app-sub017/pkg/unit"
	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

// newTestRoot builds a RootCommand wired to in-memory stores, bypassing
// persistentPreRunE so tests do not touch the filesystem. The returned
// buffer captures all formatted output.
func newTestRoot(t *testing.T, opts ...registry.Option) (*RootCommand, *alert.MemoryStore, *bytes.Buffer) {
	t.Helper()

	store := alert.NewMemoryStore()
	reg := unit.NewRegistry()
	opts = append([]registry.Option{registry.WithAlertStore(store)}, opts...)
	require.NoError(t, registry.RegisterAll(reg, opts...))

	buf := &bytes.Buffer{}
	root := &RootCommand{
		cfg:      config.Default(),
		registry: reg,
		opts:     NewOutputOptions(),
	}
	root.opts.Writer = buf

	return root, store, buf
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.NotNil(t, root)
	assert.NotNil(t, root.Command())
	assert.NotNil(t, root.OutputOptions())
}

func TestRootCommand_Commands(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, sub := range root.Command().Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"version", "evaluate", "rule", "alerts", "record"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCommand_Accessors(t *testing.T) {
	reg := unit.NewRegistry()
	cfg := config.Default()
	opts := NewOutputOptions()

	root := &RootCommand{
		registry: reg,
		cfg:      cfg,
		opts:     opts,
	}

	assert.Equal(t, reg, root.Registry())
	assert.Equal(t, cfg, root.Config())
	assert.Equal(t, opts, root.OutputOptions())
}

func TestRootCommand_SetOutputWriter(t *testing.T) {
	root := NewRootCommand()
	buf := &bytes.Buffer{}
	root.SetOutputWriter(buf)

	assert.Equal(t, buf, root.OutputOptions().Writer)
}

func TestRootCommand_ExecCommand_NotRegistered(t *testing.T) {
	root, _, _ := newTestRoot(t)

	_, err := root.execCommand(context.Background(), "alert.nonexistent", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRootCommand_ExecQuery_NotRegistered(t *testing.T) {
	root, _, _ := newTestRoot(t)

	_, err := root.execQuery(context.Background(), "alert.nonexistent", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestVersionInfo(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
	assert.NotEmpty(t, GetBuildDate())
	assert.NotEmpty(t, GetGitCommit())
}

func TestSetVersion(t *testing.T) {
	origVersion, origDate, origCommit := GetVersion(), GetBuildDate(), GetGitCommit()
	defer SetVersion(origVersion, origDate, origCommit)

	SetVersion("1.2.3", "2026-01-01", "abc1234")
	assert.Equal(t, "1.2.3", GetVersion())
	assert.Equal(t, "2026-01-01", GetBuildDate())
	assert.Equal(t, "abc1234", GetGitCommit())
}
