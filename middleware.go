package cursescell

// Call describes one native call about to be made by a Dispatcher.
type Call struct {
	Primitive Primitive
	Symbol    string
	Target    Target
	Args      []Arg
}

// Middleware intercepts native calls, allowing custom behavior before/after execution.
// Each field receives the original parameters and a next function to call the default implementation.
type Middleware struct {
	// Resolve wraps symbol lookup
	Resolve func(symbol string, next func(string) (Proc, error)) (Proc, error)

	// Invoke wraps every native call
	Invoke func(call Call, next func(Call) Arg) Arg

	// Failure observes every call that returned its failure sentinel
	Failure func(err *NativeCallError, next func(*NativeCallError))
}

// Merge copies non-nil fields from other into m.
func (m *Middleware) Merge(other *Middleware) {
	if other == nil {
		return
	}

	if other.Resolve != nil {
		m.Resolve = other.Resolve
	}
	if other.Invoke != nil {
		m.Invoke = other.Invoke
	}
	if other.Failure != nil {
		m.Failure = other.Failure
	}
}
