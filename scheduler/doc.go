// SPDX-License-Identifier: MIT

// Package scheduler is the event-driven timeline of a vaxsim run.
//
// A Scheduler keeps one monotonically non-decreasing virtual clock (in days)
// and a priority queue of actions ordered by time and submission order.
// One-shot actions are queued with ScheduleAt/ScheduleAfter; recurring ones
// with ScheduleRecurring and a Timing:
//
//   - Every(period, offset): fixed-period recurrence.
//   - Instants(ts...): an explicit list of instants.
//   - Cron(spec, epoch, unit): a standard cron expression mapped to virtual
//     time through a wall-clock epoch.
//
// Every schedule call returns a *Handle whose Dispose cancels the action.
// Run, RunUntil and Step drive the timeline; Pacing slows it down to wall
// time for demonstrations.
package scheduler
