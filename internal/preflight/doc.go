// Package preflight provides readiness checks for the SteamCMD binary, the
// directories workshopdl reads and writes, and the Steam Web API.
//
// The download command runs ForDownload before touching SteamCMD so a
// misconfigured binary or directory fails fast instead of once per item.
// The "workshopdl check" command runs RunAll and renders every result.
package preflight
