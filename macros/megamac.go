package macros

import (
	"macrokit/macro"
	"macrokit/macros/impls/megamac"
)

// megamacDoc documents megamac, which is registered by hand: it generates
// the entry points of the other macros but not its own.
const megamacDoc = "megamac procedural macro (Func).\n\n# Parameters\n\n" +
	"  - `kind` - Kind of macro to generate: Func, Attr or Derive.\n    type: `string`\n" +
	"  - `name` - Name of the implementation module under the impls directory.\n    type: `string`\n" +
	"  - `receiver` - The go/ast node type an Attr macro receives.\n    type: `string`\n" +
	"\n# Examples"

// Megamac is the entry point of megamac.
func Megamac(args string, env *macro.Env) (macro.Fragment, error) {
	cfg, err := macro.ParseArgs[megamac.Args](args)
	if err != nil {
		return macro.Fragment{}, err
	}

	return megamac.Exec(cfg, env), nil
}

func init() {
	macro.Register(macro.Registration{
		Doc:   megamacDoc,
		Func:  Megamac,
		Ident: "megamac",
		Kind:  macro.Func,
		Name:  "megamac",
	})
}
