// Package services defines shared utilities consumed by the download
// orchestrator, the SteamCMD and Steam Web API integrations, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run correlation IDs, workshop item IDs, and
//     attempt numbers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (retryable item failure vs. fatal command
//     failure).
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across subcommands.
package services
