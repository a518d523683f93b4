package server

import "fmt"

// checkRequest represents a unit of work to be executed on the checker
// goroutine.
type checkRequest struct {
	fn   func() interface{}
	done chan checkResult
}

// checkResult holds the return value from a checker run.
type checkResult struct {
	value interface{}
	err   error
}

// CheckWorker serializes checker runs through a single goroutine. A
// whole-program load is not cheap; one run at a time keeps a burst of
// didChange notifications from stacking loads.
type CheckWorker struct {
	requests chan checkRequest
	quit     chan struct{}
}

// NewCheckWorker creates a CheckWorker and starts the processing goroutine.
func NewCheckWorker() *CheckWorker {
	w := &CheckWorker{
		requests: make(chan checkRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes requests sequentially on a dedicated goroutine.
func (w *CheckWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			result := w.execute(req.fn)
			req.done <- result
		case <-w.quit:
			return
		}
	}
}

// execute runs a function, recovering from panics.
func (w *CheckWorker) execute(fn func() interface{}) checkResult {
	var result checkResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn()
	}()
	return result
}

// Do submits a function for execution on the checker goroutine and blocks
// until it completes. Returns the result and any error (including panics).
func (w *CheckWorker) Do(fn func() interface{}) (interface{}, error) {
	req := checkRequest{
		fn:   fn,
		done: make(chan checkResult, 1),
	}
	w.requests <- req
	result := <-req.done
	return result.value, result.err
}

// Stop shuts down the worker goroutine.
func (w *CheckWorker) Stop() {
	close(w.quit)
}
