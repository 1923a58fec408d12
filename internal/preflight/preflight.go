package preflight

import (
	"context"

	"workshopdl/internal/config"
	"workshopdl/internal/steamapi"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// ForDownload runs the local checks a collection download depends on.
// The SteamApps directory is only required to exist when SteamCMD is not
// told to install into it.
func ForDownload(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckSteamCMD(cfg.SteamCMD.Binary)}
	if cfg.SteamCMD.ForceInstallDir {
		results = append(results, CheckCreatableDir("SteamApps directory", cfg.Paths.SteamAppsDir))
	} else {
		results = append(results, CheckDirectoryAccess("SteamApps directory", cfg.Paths.SteamAppsDir))
	}
	results = append(results, CheckCreatableDir("Output directory", cfg.Paths.OutputDir))
	return results
}

// RunAll executes the local checks plus a Steam Web API reachability probe
// when api is non-nil.
func RunAll(ctx context.Context, cfg *config.Config, api *steamapi.Client) []Result {
	results := ForDownload(cfg)
	if cfg != nil && cfg.Paths.LogDir != "" {
		results = append(results, CheckCreatableDir("Log directory", cfg.Paths.LogDir))
	}
	if api != nil {
		results = append(results, CheckSteamAPI(ctx, api))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
