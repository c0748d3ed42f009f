// Package megamac generates the entry point and registration of other macros.
package megamac

import (
	"fmt"

	"macrokit/internal/dispatch"
	"macrokit/macro"
)

// Args configures megamac.
type Args struct {
	// Kind of macro to generate: Func, Attr or Derive.
	Kind string `macro:"kind" validate:"required,oneof=Func Attr Derive"`
	// Name of the implementation module under the impls directory.
	Name string `macro:"name" validate:"required"`
	// The go/ast node type an Attr macro receives.
	Receiver string `macro:"receiver" validate:"required_if=Kind Attr,omitempty,oneof=GenDecl TypeSpec StructType InterfaceType FuncDecl ValueSpec"`
}

// Exec generates the macro described by args.
func Exec(args Args, env *macro.Env) macro.Fragment {
	kind, err := macro.ParseKind(args.Kind)
	if err != nil {
		env.Logr.AbortCallSite(err.Error())
	}

	receiver := args.Receiver
	if kind != macro.Attr && receiver != "" {
		env.Logr.EmitCallSiteWarning(fmt.Sprintf("receiver %s is ignored for %s macros", receiver, kind))
		receiver = ""
	}

	return dispatch.Dispatch(dispatch.Registration{
		Kind:     kind,
		Name:     args.Name,
		Receiver: receiver,
	}, env)
}
