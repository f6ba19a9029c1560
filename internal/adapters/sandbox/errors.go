package sandbox

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/3-lines-studio/prerender/internal/core"
)

// scriptError converts goja failures into a SandboxError carrying the
// thrown message and the JavaScript stack.
func (h *host) scriptError(identity string, err error) error {
	var sandboxErr *core.SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		message := exception.Error()
		if value := exception.Value(); value != nil {
			message = value.String()
		}
		return &core.SandboxError{
			Identity: identity,
			Message:  message,
			Stack:    exception.String(),
			Err:      err,
		}
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &core.SandboxError{
			Identity: identity,
			Message:  fmt.Sprint(interrupted.Value()),
			Stack:    interrupted.String(),
			Err:      err,
		}
	}

	return &core.SandboxError{Identity: identity, Message: err.Error(), Err: err}
}

// rejection describes a thrown or rejected JavaScript value.
func (h *host) rejection(identity string, value goja.Value) error {
	if isMissing(value) {
		return &core.SandboxError{Identity: identity, Message: "rejected without a reason"}
	}

	stack := ""
	if obj, ok := value.(*goja.Object); ok {
		if s := obj.Get("stack"); !isMissing(s) {
			stack = s.String()
		}
	}
	return &core.SandboxError{Identity: identity, Message: value.String(), Stack: stack}
}
