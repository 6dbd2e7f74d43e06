//go:build nogpu

package main

import "errors"

func runWindow(*Config) error {
	return errors.New("debugdemo: window mode is unavailable in nogpu builds; use -mode offscreen")
}
