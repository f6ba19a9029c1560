package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrManifestRead       = errors.New("manifest read failed")
	ErrSandboxEvaluation  = errors.New("sandbox evaluation failed")
	ErrRender             = errors.New("render failed")
	ErrDescriptorMerge    = errors.New("descriptor merge failed")
	ErrPlaceholderMissing = errors.New("root placeholder not found in template")
)

// SandboxError describes a script that threw while being evaluated or rendered.
type SandboxError struct {
	Identity string
	Message  string
	Stack    string
	Err      error
}

func (e *SandboxError) Error() string {
	if e.Identity == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Identity, e.Message)
}

func (e *SandboxError) Unwrap() error {
	return e.Err
}

func (e *SandboxError) Is(target error) bool {
	return target == ErrSandboxEvaluation
}

// Details splits the stack into lines for build reports.
func (e *SandboxError) Details() []string {
	details := []string{e.Message}
	for _, line := range strings.Split(e.Stack, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != e.Message {
			details = append(details, line)
		}
	}
	return details
}
