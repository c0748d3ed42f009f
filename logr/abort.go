package logr

import "macrokit/internal/diagnostic"

// Abort is the panic value raised by Logr.Abort. It is also an error.
type Abort struct {
	Diagnostic diagnostic.Diagnostic
}

// Error implements error.
func (a *Abort) Error() string {
	return a.Diagnostic.String()
}

// Catch converts an in-flight *Abort panic into *err. Any other panic is
// re-raised. It must be deferred directly:
//
//	defer logr.Catch(&err)
func Catch(err *error) {
	r := recover()
	if r == nil {
		return
	}

	if a, ok := r.(*Abort); ok {
		*err = a
		return
	}

	panic(r)
}

// Run calls fn and returns the *Abort it raised, if any.
func Run(fn func()) (err error) {
	defer Catch(&err)
	fn()

	return nil
}
