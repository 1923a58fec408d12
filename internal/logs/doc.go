// Package logs locates workshopdl run logs and tails them with bounded memory.
//
// Every invocation writes <log_dir>/workshopdl-<UTC timestamp>-<run id>.log.
// RunLogs lists those files newest first, Find resolves a run ID prefix, and
// Tail/Follow back the "workshopdl logs" command so a long collection download
// can be watched from another terminal.
package logs
