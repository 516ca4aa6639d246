// Package animation implements the tween scheduler that drives popup
// movement, shake effects and auto-hide progress bars.
//
// Every target has a small set of channels. Each (target, channel) pair
// carries at most one running task; scheduling a new task on a busy
// channel cancels the old one. A shared frame loop advances all tasks with
// the wall-clock delta since the previous frame and only runs while at
// least one task is active.
package animation
