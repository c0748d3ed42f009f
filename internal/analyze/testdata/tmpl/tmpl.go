//go:build macrokit

package tmpl

//macro:greet name = "world"
