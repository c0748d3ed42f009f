//go:build macrokit

package macros

//macro:megamac kind = Attr, name = wrap, receiver = TypeSpec

//macro:megamac kind = Attr, name = edoc, receiver = TypeSpec

//macro:megamac kind = Derive, name = seanum

//macro:megamac kind = Attr, name = mirror, receiver = TypeSpec
