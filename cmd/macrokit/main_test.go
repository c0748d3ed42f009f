package main

import (
	"bytes"
	"encoding/json"
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrokit/internal/config"
	"macrokit/internal/diagnostic"
	"macrokit/internal/gen"
)

func run(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(fs)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestList(t *testing.T) {
	out, _, err := run(t, afero.NewMemMapFs(), "list")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `(?m)^megamac\s+Func\s+megamac$`, out)
	assert.Regexp(t, `(?m)^Seanum\s+Derive\s+seanum$`, out)
	assert.Regexp(t, `(?m)^wrap\s+Attr\s+wrap$`, out)
}

func TestDoc_Registered(t *testing.T) {
	out, _, err := run(t, afero.NewMemMapFs(), "doc", "wrap")
	require.NoError(t, err)

	assert.Contains(t, out, "wrap procedural macro (Attr).")
	assert.Contains(t, out, "  - `with` - ")
}

func TestDoc_Unknown(t *testing.T) {
	_, _, err := run(t, afero.NewMemMapFs(), "doc", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `macro "nope" is not registered`)
}

func TestDoc_Module(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/macros/impls/greet/greet.go", []byte(`package greet

type Args struct {
	// Who to greet.
	Name  string `+"`macro:\"name\"`"+`
	Loud  bool
}
`), 0o644))

	out, _, err := run(t, fs, "doc", "greet", "--dir", "/proj/macros", "--kind", "Func")
	require.NoError(t, err)

	assert.Equal(t, "greet procedural macro (Func).\n\n# Parameters\n\n"+
		"  - `name` - Who to greet.\n    type: `string`\n"+
		"  - `Loud` - Not documented\n    type: `bool`\n\n# Examples\n", out)
}

func TestDoc_ModuleMissing(t *testing.T) {
	_, stderr, err := run(t, afero.NewMemMapFs(), "doc", "greet", "--dir", "/proj/macros")
	require.Error(t, err)
	assert.Contains(t, stderr, "fatal: ")
	assert.Contains(t, stderr, `[resolution] #[greet] cannot read implementation of macro "greet"`)
}

func TestInit(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, _, err := run(t, fs, "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote macrokit.yaml\n", out)

	cfg, err := config.LoadFile(fs, "macrokit.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, _, err = run(t, fs, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = run(t, fs, "init", "--force", "--format", "toml")
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "macrokit.toml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInvalidFlags(t *testing.T) {
	_, _, err := run(t, afero.NewMemMapFs(), "list", "--log-level", "loud")
	require.Error(t, err)

	_, _, err = run(t, afero.NewMemMapFs(), "--color", "sometimes", "list")
	require.Error(t, err)

	_, _, err = run(t, afero.NewMemMapFs(), "--color", "on", "list")
	require.ErrorContains(t, err, "must be auto, always or never")
}

func TestColorModes(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	for _, mode := range []string{"auto", "always", "never"} {
		_, _, err := run(t, afero.NewMemMapFs(), "--color", mode, "list")
		require.NoError(t, err, mode)
	}
}

func TestVersion_JSON(t *testing.T) {
	out, _, err := run(t, afero.NewMemMapFs(), "version", "--format", "json")
	require.NoError(t, err)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "macrokit", payload.Tool)
	assert.NotEmpty(t, payload.Version)
}

func TestCollect(t *testing.T) {
	ok := &gen.Result{Output: []byte("package a\n")}
	ok.Diagnostics.AddWarning(diagnostic.CodeConfiguration, "template has no macro directives", token.Position{Filename: "a.go"})

	bad := &gen.Result{}
	bad.Diagnostics.AddError(diagnostic.CodeConfiguration, "unknown macro", token.Position{Filename: "b.go", Line: 4, Column: 1})

	pass, failed := collect([]*gen.Result{ok, nil, bad})

	assert.Equal(t, 1, failed)
	assert.Len(t, pass.Warnings, 1)
	assert.False(t, pass.IsValid())
	require.Error(t, pass.Error())
	assert.Equal(t, "b.go:4:1: [configuration] unknown macro", pass.Error().Error())

	pass, failed = collect([]*gen.Result{ok})
	assert.Zero(t, failed)
	assert.NoError(t, pass.Error())
}
