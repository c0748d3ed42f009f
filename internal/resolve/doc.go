// Package resolve locates and parses the implementation file of a macro.
//
// Implementation files live next to the template that invokes the macro:
//
//	<dir of the template>/<impls>/<name>/<name>.go
//
// Failures abort the invocation through the environment's Logr.
package resolve
