package macro

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"macrokit/internal/match"
)

// ArgsTag is the struct tag naming the argument a configuration field binds.
const ArgsTag = "macro"

var argLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|` + "`[^`]*`"},
	{Name: "Float", Pattern: `[-+]?\d+\.\d+`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*`},
	{Name: "Punct", Pattern: `[=,()\[\]*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type argList struct {
	Args []*argNode `parser:"( @@ ( ',' @@ )* )?"`
}

type argNode struct {
	Pos   lexer.Position
	Key   string     `parser:"@Ident"`
	Value *valueNode `parser:"( '=' @@ )?"`
}

type valueNode struct {
	Pos   lexer.Position
	Str   *string    `parser:"  @String"`
	Float *string    `parser:"| @Float"`
	Int   *string    `parser:"| @Int"`
	Ident *string    `parser:"| @Ident"`
	Tuple *tupleNode `parser:"| @@"`
}

type tupleNode struct {
	Open  bool         `parser:"@'('"`
	Elems []*valueNode `parser:"( @@ ( ',' @@ )* )? ')'"`
}

var (
	argListParser = participle.MustBuild[argList](
		participle.Lexer(argLexer),
		participle.Elide("Whitespace"),
	)
	valueParser = participle.MustBuild[valueNode](
		participle.Lexer(argLexer),
		participle.Elide("Whitespace"),
	)
)

// ValueKind classifies argument values.
type ValueKind int

const (
	FlagValue ValueKind = iota // bare key, no value
	StringValue
	IntValue
	FloatValue
	IdentValue
	TupleValue
)

// Value is a parsed argument value.
type Value struct {
	Kind ValueKind
	// Text is the unquoted string, the number or the identifier.
	Text  string
	Elems []Value
	// Offset is the byte offset of the value in the parsed text.
	Offset int
}

// Native converts v to the form decoded into configuration records.
func (v Value) Native() any {
	switch v.Kind {
	case FlagValue:
		return true
	case IntValue:
		n, err := strconv.ParseInt(v.Text, 10, 64)
		if err != nil {
			return v.Text
		}

		return n
	case FloatValue:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return v.Text
		}

		return f
	case TupleValue:
		elems := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = e.Native()
		}

		return elems
	default:
		return v.Text
	}
}

// Arg is one key = value pair.
type Arg struct {
	Key    string
	Value  Value
	Offset int
}

// Violation is one problem found in macro arguments.
type Violation struct {
	// Key is the offending argument, empty when the whole text is at fault.
	Key string
	// Offset is the byte offset in the argument text, -1 for the invocation.
	Offset  int
	Message string
}

// ConfigError reports every problem found in the arguments of one invocation.
type ConfigError struct {
	Violations []Violation
}

func (e *ConfigError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}

	return strings.Join(msgs, "; ")
}

func (e *ConfigError) add(key string, offset int, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Key: key, Offset: offset, Message: fmt.Sprintf(format, args...)})
}

func syntaxError(err error) *ConfigError {
	cerr := &ConfigError{}

	var perr participle.Error
	if errors.As(err, &perr) {
		cerr.add("", perr.Position().Offset, "invalid arguments: %s", perr.Message())
	} else {
		cerr.add("", -1, "invalid arguments: %v", err)
	}

	return cerr
}

// ParseArgList parses "key = value, ..." text. Syntax errors are returned as
// a *ConfigError.
func ParseArgList(s string) ([]Arg, error) {
	list, err := argListParser.ParseString("", s)
	if err != nil {
		return nil, syntaxError(err)
	}

	args := make([]Arg, 0, len(list.Args))
	for _, a := range list.Args {
		arg := Arg{Key: a.Key, Offset: a.Pos.Offset}
		if a.Value == nil {
			arg.Value = Value{Kind: FlagValue, Offset: a.Pos.Offset}
		} else {
			v, err := toValue(a.Value)
			if err != nil {
				return nil, err
			}

			arg.Value = v
		}

		args = append(args, arg)
	}

	return args, nil
}

// ParseValue parses a single value: a string, a number, an identifier or a
// parenthesised tuple of values.
func ParseValue(s string) (Value, error) {
	node, err := valueParser.ParseString("", s)
	if err != nil {
		return Value{}, syntaxError(err)
	}

	return toValue(node)
}

func toValue(n *valueNode) (Value, error) {
	v := Value{Offset: n.Pos.Offset}

	switch {
	case n.Str != nil:
		text, err := strconv.Unquote(*n.Str)
		if err != nil {
			cerr := &ConfigError{}
			cerr.add("", n.Pos.Offset, "invalid string %s: %v", *n.Str, err)

			return Value{}, cerr
		}

		v.Kind, v.Text = StringValue, text
	case n.Float != nil:
		v.Kind, v.Text = FloatValue, *n.Float
	case n.Int != nil:
		v.Kind, v.Text = IntValue, *n.Int
	case n.Ident != nil:
		v.Kind, v.Text = IdentValue, *n.Ident
	case n.Tuple != nil:
		v.Kind = TupleValue
		for _, e := range n.Tuple.Elems {
			ev, err := toValue(e)
			if err != nil {
				return Value{}, err
			}

			v.Elems = append(v.Elems, ev)
		}
	}

	return v, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get(ArgsTag), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		default:
			return name
		}
	})

	return v
}

// ParseArgs parses s into the configuration record T.
//
// Fields of T bind arguments through the `macro` tag and are validated with
// the `validate` tag. Unknown and duplicate keys, decode failures and
// validation failures are all reported in a single *ConfigError.
func ParseArgs[T any](s string) (T, error) {
	var out T

	args, err := ParseArgList(s)
	if err != nil {
		return out, err
	}

	cerr := &ConfigError{}
	input := make(map[string]any, len(args))
	offsets := make(map[string]int, len(args))

	for _, a := range args {
		if _, dup := input[a.Key]; dup {
			cerr.add(a.Key, a.Offset, "duplicate argument %q", a.Key)
			continue
		}

		input[a.Key] = a.Value.Native()
		offsets[a.Key] = a.Offset
	}

	var md mapstructure.Metadata

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          ArgsTag,
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("building decoder for %T: %w", out, err)
	}

	if err := dec.Decode(input); err != nil {
		cerr.add("", -1, "invalid arguments: %v", err)
	}

	sort.Strings(md.Unused)

	known := argKeys(reflect.TypeOf(out))
	for _, key := range md.Unused {
		cerr.add(key, offsets[key], "unknown argument %q%s", key, match.Hint(key, known))
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return out, fmt.Errorf("validating %T: %w", out, err)
		}

		for _, fe := range verrs {
			offset, ok := offsets[fe.Field()]
			if !ok {
				offset = -1
			}

			cerr.add(fe.Field(), offset, "%s", violationMessage(fe))
		}
	}

	if len(cerr.Violations) > 0 {
		return out, cerr
	}

	return out, nil
}

// argKeys returns the argument names the fields of t bind.
func argKeys(t reflect.Type) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		key, _, _ := strings.Cut(f.Tag.Get(ArgsTag), ",")
		switch key {
		case "-":
			continue
		case "":
			key = f.Name
		}

		keys = append(keys, key)
	}

	return keys
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing required argument %q", fe.Field())
	case "required_if":
		return fmt.Sprintf("argument %q is required when %s", fe.Field(), strings.Replace(fe.Param(), " ", " = ", 1))
	case "oneof":
		return fmt.Sprintf("argument %q must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("argument %q fails %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}

		return fmt.Sprintf("argument %q fails %s", fe.Field(), fe.Tag())
	}
}
