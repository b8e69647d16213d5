// Package ui contains the Bubble Tea program that draws the chat client.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with key presses and resize events.
//     Messages are routed through a typed handler registry so each tea.Msg
//     is handled by a focused function.
//   - Key presses go to the input package, which interprets them against
//     the active mode. The mutation and the repaint that reflects it run in
//     a single state.Store critical section; the commands it produced are
//     posted to the backend once the lock is released.
//   - EventLoop runs beside the program. It receives backend events,
//     applies them through the dispatcher under the same lock, and sends
//     the painted frame to the program. Idle ticks poll the terminal size
//     so a resize is noticed by comparison even without a resize event.
//
// Rendering:
//   - Screen owns the terminal size and the layout derived from it. Every
//     Paint produces a Frame with a sequence number; the model keeps only
//     the newest frame it has seen, so frames delivered out of order are
//     never shown.
//
// Shutdown:
//   - ctrl+c moves the session into exiting mode and posts a logout. The
//     program quits when the backend acknowledges it or when the shutdown
//     timer fires, whichever comes first. A second ctrl+c quits at once.
package ui
