// Package steamcmd drives the SteamCMD executable to download single Steam
// Workshop items and moves the downloaded payload into the caller's output
// directory.
//
// An attempt fails when SteamCMD exits non-zero or prints any line containing
// "ERROR!"; both stdout and stderr are streamed through the same detector and
// the process always runs to completion. Command execution sits behind the
// Executor interface so tests can replay canned output without SteamCMD.
package steamcmd
