// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gl implements gpucore.Device on OpenGL 3.3 through go-gl.
//
// The device runs the GLSL 1.20 and 1.50 program variants; the tier is taken
// from GL_SHADING_LANGUAGE_VERSION unless overridden with WithShaderModel.
// It must be created and used on the goroutine that owns the current GL
// context (see runtime.LockOSThread).
package gl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/debugdraw/gpucore"
)

// ErrBadVersion is returned by ParseGLSLVersion for strings it cannot read.
var ErrBadVersion = errors.New("gl: unrecognized GLSL version")

// ParseGLSLVersion reads the leading "major.minor" of a
// GL_SHADING_LANGUAGE_VERSION string such as "4.60 NVIDIA" or "1.50".
// OpenGL ES strings are rejected.
func ParseGLSLVersion(s string) (major, minor int, err error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, " ES ") || strings.HasPrefix(s, "OpenGL ES") {
		return 0, 0, fmt.Errorf("%w: %q is OpenGL ES", ErrBadVersion, s)
	}
	num, _, _ := strings.Cut(s, " ")
	majStr, minStr, ok := strings.Cut(num, ".")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	if major, err = strconv.Atoi(majStr); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	// Minor versions are two digits ("1.50"); drop vendor suffixes like "1.50.0".
	minStr, _, _ = strings.Cut(minStr, ".")
	if minor, err = strconv.Atoi(minStr); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	return major, minor, nil
}

// ShaderModelFor maps a GLSL version to the highest tier it runs.
func ShaderModelFor(major, minor int) gpucore.ShaderModel {
	v := major*100 + minor
	switch {
	case v >= 150:
		return gpucore.ShaderModelGLSL150
	case v >= 120:
		return gpucore.ShaderModelGLSL120
	default:
		return gpucore.ShaderModelUnsupported
	}
}
