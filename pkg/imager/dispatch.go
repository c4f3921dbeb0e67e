package imager

// Dispatcher serializes work onto one designated goroutine, mirroring a UI
// main-loop hand-off without tying the package to any toolkit. Callers hand
// a task off via Do and block on a one-shot completion signal until the
// designated goroutine has executed it.
type Dispatcher struct {
	tasks chan dispatchTask
}

type dispatchTask struct {
	fn   func()
	done *completion
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{tasks: make(chan dispatchTask)}
}

// Run consumes tasks until Close is called. Call it from the goroutine that
// must execute the blocking sequences.
func (d *Dispatcher) Run() {
	for t := range d.tasks {
		t.fn()
		t.done.set()
	}
}

// Do enqueues fn and blocks until the designated goroutine has executed it.
func (d *Dispatcher) Do(fn func()) {
	t := dispatchTask{fn: fn, done: newCompletion()}
	d.tasks <- t
	t.done.wait()
}

// Close stops Run once queued tasks have drained. Do must not be called
// after Close.
func (d *Dispatcher) Close() {
	close(d.tasks)
}
