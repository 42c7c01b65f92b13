package rowan

// FunctionRegistry maps small integer handles to callbacks so a function can
// be named in a command batch that crosses to the renderer. A handle is
// consumed by its first Invoke.
type FunctionRegistry struct {
	fns  map[int]func(any)
	next int
}

// Register stores fn and returns its handle. Handles start at 1.
func (r *FunctionRegistry) Register(fn func(any)) int {
	if r.fns == nil {
		r.fns = make(map[int]func(any))
	}
	r.next++
	r.fns[r.next] = fn
	return r.next
}

// Invoke calls the function named by handle with arg and forgets it. Reports
// whether the handle was live. Callbacks have no return value; an answer
// travels back as a new message if needed.
func (r *FunctionRegistry) Invoke(handle int, arg any) bool {
	fn, ok := r.fns[handle]
	if !ok {
		return false
	}
	delete(r.fns, handle)
	if fn != nil {
		fn(arg)
	}
	return true
}

// Len returns the number of live handles.
func (r *FunctionRegistry) Len() int {
	return len(r.fns)
}
