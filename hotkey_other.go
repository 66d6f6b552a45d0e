//go:build !windows

package main

import "fmt"

// RegisterPipelineHotkey is only available on Windows; elsewhere use menu option 1
func (a *App) RegisterPipelineHotkey() {
	fmt.Println("Global hotkey not supported on this platform, use menu option 1")
}
