package errorx

import "strings"

// OpError attaches the name of the operation that failed to an error.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// Wrap returns nil when err is nil, so it is safe to use on a return path.
// Wrapping the same op twice in a row is collapsed.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if op == "" {
		return err
	}
	if oe, ok := err.(*OpError); ok && oe.Op == op {
		return err
	}
	return &OpError{Op: op, Err: err}
}

// Ops returns the chain of operations recorded by Wrap, outermost first.
func Ops(err error) []string {
	var ops []string
	for err != nil {
		if oe, ok := err.(*OpError); ok {
			ops = append(ops, oe.Op)
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ops
}

func Trace(err error) string {
	return strings.Join(Ops(err), " <- ")
}
