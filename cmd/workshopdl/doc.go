// Package main hosts the workshopdl CLI entrypoint and command graph.
//
// The Cobra command tree resolves Steam Workshop collections, drives SteamCMD
// through the sequential retrying downloader, and rewrites the game's XML
// package list. It centralizes configuration resolution, per-run logging, and
// the Steam Web API client so subcommands only map flags onto internal
// packages and render results.
package main
