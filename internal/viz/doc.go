// Package viz renders a running world in the terminal.
//
// [Canvas] is a braille sub-pixel grid and [Camera] maps world metres onto
// it; [DrawWorld] outlines every body and joint. [Model] is the Bubble Tea
// program behind the watch command.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single step while paused
//	R     - Reset to the initial scene
//	+/-   - Double or halve the substep count
//	P     - Switch narrow phase between GJK/EPA and SAT
//	U     - Remove the most recently added entity
//	Q     - Quit
//
// With mouse reporting enabled, pressing the left button over a body grabs
// it with the pointer spring; dragging moves the target and releasing lets
// go.
package viz
