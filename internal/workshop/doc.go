// Package workshop runs a batch of Steam Workshop item downloads.
//
// The Downloader walks the resolved item list strictly in order, giving each
// item up to a fixed number of attempts with exponential backoff in between.
// A failed item is recorded and the batch moves on; only cancellation stops
// it early, in which case the remaining items are reported as skipped. An
// exclusive lock file keeps two runs from driving SteamCMD against the same
// steamapps root at once.
package workshop
