// Package job provides a database-backed background job runner with delayed
// execution, a fixed number of attempts, fixed backoff between attempts and
// bounded completed/failed history.
//
// Jobs are persisted through a Store before they run, so pending work and
// work interrupted by a crash survive restarts: on Start, and periodically
// afterwards, jobs stuck in processing longer than RunnerConfig.StuckJobAge
// are returned to pending. A stuck job already on its final attempt is marked
// failed instead.
package job
