// Package cpu exposes the few privileged instructions the boot stages need.
package cpu

// Halt disables interrupts and stops instruction execution. Halt never
// returns.
func Halt()
