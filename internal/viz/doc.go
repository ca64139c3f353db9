// Package viz plays a sampled double pendulum trajectory in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas with per-cell ink for fading trails
//   - [Viewport]: maps pendulum coordinates onto canvas sub-pixels
//   - [Player]: Bubble Tea model that steps through the frames at a fixed rate
//
// # Key Bindings
//
//	Q, Ctrl+C - Quit
//
// The player is read-only: frames are computed before it starts and it
// never feeds anything back into the simulation.
package viz
