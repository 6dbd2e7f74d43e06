package gpucore

import (
	"errors"
	"fmt"
)

// Common device errors.
var (
	// ErrUnknownResource is returned when an ID does not refer to a live resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource")

	// ErrOutOfBounds is returned when a buffer access exceeds the buffer size.
	ErrOutOfBounds = errors.New("gpucore: access out of bounds")

	// ErrBufferTooLarge is returned when a buffer exceeds MaxBufferSize.
	ErrBufferTooLarge = errors.New("gpucore: buffer exceeds device limit")
)

// Shader stages reported by ShaderCompileError.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
	StageLink     = "link"
	StageModule   = "module"
	StageSelect   = "select"
)

// ShaderCompileError reports a failure to build a program. It carries the
// tier, the failing stage and the compiler log when the backend has one.
type ShaderCompileError struct {
	Model ShaderModel
	Stage string
	Log   string
	Err   error
}

func (e *ShaderCompileError) Error() string {
	msg := fmt.Sprintf("gpucore: %s %s shader", e.Model, e.Stage)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Log != "" {
		msg += "\n" + e.Log
	}
	return msg
}

func (e *ShaderCompileError) Unwrap() error { return e.Err }
