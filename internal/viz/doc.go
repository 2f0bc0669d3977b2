// Package viz renders saved runs in the terminal and as images.
//
// The package provides:
//
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Camera]: orthographic projection of inertial positions
//   - [Replay]: Bubble Tea model that plays back a run
//   - [Browser]: run picker that opens a replay
//   - [Chart] and [SavePNG]: time series and trajectory plots
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step one saved timestep back/forward
//	< >   - Slower/faster playback
//	F     - Cycle the body the view is centred on
//	X/Y   - Rotate the view
//	+/-   - Zoom
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
