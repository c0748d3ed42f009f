package macro

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testArgs struct {
	Kind     string   `macro:"kind" validate:"required,oneof=Func Attr Derive"`
	Name     string   `macro:"name" validate:"required"`
	Receiver string   `macro:"receiver" validate:"required_if=Kind Attr"`
	Count    int      `macro:"count"`
	Verbose  bool     `macro:"verbose"`
	Tags     []string `macro:"tags"`
}

func violationKeys(t *testing.T, err error) []string {
	t.Helper()

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)

	keys := make([]string, len(cerr.Violations))
	for i, v := range cerr.Violations {
		keys[i] = v.Key
	}

	return keys
}

func TestParseArgList(t *testing.T) {
	args, err := ParseArgList(`kind = Func, name = greet`)
	require.NoError(t, err)
	require.Len(t, args, 2)

	assert.Equal(t, "kind", args[0].Key)
	assert.Equal(t, 0, args[0].Offset)
	assert.Equal(t, IdentValue, args[0].Value.Kind)
	assert.Equal(t, "Func", args[0].Value.Text)

	assert.Equal(t, "name", args[1].Key)
	assert.Equal(t, 13, args[1].Offset)
	assert.Equal(t, "greet", args[1].Value.Text)
}

func TestParseArgList_ValueKinds(t *testing.T) {
	args, err := ParseArgList(`s = "a\"b", r = ` + "`raw`" + `, n = -42, f = 1.5, flag, t = (A, "-", B), p = pkg.Name`)
	require.NoError(t, err)
	require.Len(t, args, 7)

	assert.Equal(t, Value{Kind: StringValue, Text: `a"b`, Offset: 4}, args[0].Value)
	assert.Equal(t, "raw", args[1].Value.Text)
	assert.Equal(t, int64(-42), args[2].Value.Native())
	assert.Equal(t, 1.5, args[3].Value.Native())
	assert.Equal(t, FlagValue, args[4].Value.Kind)
	assert.Equal(t, true, args[4].Value.Native())

	tuple := args[5].Value
	assert.Equal(t, TupleValue, tuple.Kind)
	require.Len(t, tuple.Elems, 3)
	assert.Equal(t, IdentValue, tuple.Elems[0].Kind)
	assert.Equal(t, StringValue, tuple.Elems[1].Kind)
	assert.Equal(t, []any{"A", "-", "B"}, tuple.Native())

	assert.Equal(t, "pkg.Name", args[6].Value.Text)
}

func TestParseArgList_Empty(t *testing.T) {
	args, err := ParseArgList("")
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = ParseArgList("   ")
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestParseArgList_SyntaxError(t *testing.T) {
	_, err := ParseArgList(`kind = = Func`)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Len(t, cerr.Violations, 1)
	assert.GreaterOrEqual(t, cerr.Violations[0].Offset, 0)
	assert.Contains(t, cerr.Error(), "invalid arguments")
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(`(A, "-", B)`)
	require.NoError(t, err)
	assert.Equal(t, TupleValue, v.Kind)
	assert.Len(t, v.Elems, 3)

	v, err = ParseValue(`"-"`)
	require.NoError(t, err)
	assert.Equal(t, StringValue, v.Kind)
	assert.Equal(t, "-", v.Text)

	v, err = ParseValue(`()`)
	require.NoError(t, err)
	assert.Equal(t, TupleValue, v.Kind)
	assert.Empty(t, v.Elems)

	_, err = ParseValue(`(A,`)
	require.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	got, err := ParseArgs[testArgs](`kind = Func, name = greet, count = 3, verbose, tags = (a, "b")`)
	require.NoError(t, err)

	assert.Equal(t, testArgs{
		Kind:    "Func",
		Name:    "greet",
		Count:   3,
		Verbose: true,
		Tags:    []string{"a", "b"},
	}, got)
}

func TestParseArgs_WeakTyping(t *testing.T) {
	got, err := ParseArgs[testArgs](`kind = Derive, name = x, verbose = true, count = "7"`)
	require.NoError(t, err)
	assert.True(t, got.Verbose)
	assert.Equal(t, 7, got.Count)
}

func TestParseArgs_ReportsEveryViolation(t *testing.T) {
	_, err := ParseArgs[testArgs](`kind = Bogus, extra = 1, kind = Attr`)
	require.Error(t, err)

	assert.Equal(t, []string{"kind", "extra", "kind", "name"}, violationKeys(t, err))

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 25, cerr.Violations[0].Offset)
	assert.Contains(t, cerr.Violations[0].Message, "duplicate argument")
	assert.Equal(t, 14, cerr.Violations[1].Offset)
	assert.Contains(t, cerr.Violations[1].Message, `unknown argument "extra"`)
	assert.Contains(t, cerr.Violations[2].Message, "must be one of")
	assert.Equal(t, -1, cerr.Violations[3].Offset)
	assert.Contains(t, cerr.Violations[3].Message, `missing required argument "name"`)
}

func TestParseArgs_RequiredIf(t *testing.T) {
	_, err := ParseArgs[testArgs](`kind = Attr, name = wrap`)
	require.Error(t, err)
	assert.Equal(t, []string{"receiver"}, violationKeys(t, err))
	assert.Contains(t, err.Error(), "required when Kind = Attr")

	got, err := ParseArgs[testArgs](`kind = Attr, name = wrap, receiver = TypeSpec`)
	require.NoError(t, err)
	assert.Equal(t, "TypeSpec", got.Receiver)
}

func TestParseArgs_UnknownArgumentHint(t *testing.T) {
	_, err := ParseArgs[testArgs](`kind = Func, name = x, recevier = TypeSpec`)
	require.Error(t, err)

	assert.Contains(t, err.Error(), `unknown argument "recevier" (did you mean "receiver"?)`)
}

func TestArgKeys(t *testing.T) {
	type args struct {
		Named   string `macro:"named,omitempty"`
		Plain   int
		Skipped bool `macro:"-"`
		hidden  string
	}

	assert.Equal(t, []string{"named", "Plain"}, argKeys(reflect.TypeOf(args{})))
	assert.Equal(t, []string{"named", "Plain"}, argKeys(reflect.TypeOf(&args{})))
	assert.Nil(t, argKeys(reflect.TypeOf(0)))
}
