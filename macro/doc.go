// Package macro is the runtime contract between the expander and macro
// implementations.
//
// It defines the three macro kinds, the per-invocation execution
// environment, the static registry generated registration code populates
// from init functions, the argument grammar shared by every macro, and
// Fragment, the unit of generated source a macro returns.
//
// Generated entry points have one of three shapes:
//
//	func Greet(args string, env *macro.Env) (macro.Fragment, error)
//	func Wrap(attr string, item ast.Decl, env *macro.Env) (macro.Fragment, error)
//	func Seanum(item ast.Decl, env *macro.Env) (macro.Fragment, error)
//
// A returned error is a configuration problem of that one invocation. Problems
// of the macro itself abort through env.Logr.
package macro
