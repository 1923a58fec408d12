package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"workshopdl/internal/config"
	"workshopdl/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	api        *fakeSteamAPI
}

// fakeSteamAPI serves the three Steam Web API endpoints workshopdl calls.
type fakeSteamAPI struct {
	server      *httptest.Server
	collections map[string][]string
	titles      map[string]string
}

func newFakeSteamAPI(t *testing.T) *fakeSteamAPI {
	t.Helper()
	api := &fakeSteamAPI{
		collections: map[string][]string{},
		titles:      map[string]string{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamRemoteStorage/GetCollectionDetails/v1/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := r.PostForm.Get("publishedfileids[0]")
		children := make([]map[string]any, 0)
		for i, item := range api.collections[id] {
			children = append(children, map[string]any{"publishedfileid": item, "sortorder": i + 1, "filetype": 0})
		}
		writeTestJSON(w, map[string]any{
			"response": map[string]any{
				"result":            1,
				"resultcount":       1,
				"collectiondetails": []any{map[string]any{"publishedfileid": id, "result": 1, "children": children}},
			},
		})
	})
	mux.HandleFunc("/ISteamRemoteStorage/GetPublishedFileDetails/v1/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		details := make([]any, 0)
		for key, values := range r.PostForm {
			if !strings.HasPrefix(key, "publishedfileids[") || len(values) == 0 {
				continue
			}
			id := values[0]
			title, ok := api.titles[id]
			if !ok {
				details = append(details, map[string]any{"publishedfileid": id, "result": 9})
				continue
			}
			details = append(details, map[string]any{
				"publishedfileid": id,
				"result":          1,
				"title":           title,
				"file_size":       "2048",
				"time_updated":    1700000000,
			})
		}
		writeTestJSON(w, map[string]any{"response": map[string]any{"result": 1, "publishedfiledetails": details}})
	})
	mux.HandleFunc("/ISteamWebAPIUtil/GetServerInfo/v1/", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{"servertime": 1700000000, "servertimestring": "now"})
	})
	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func setupCLITestEnv(t *testing.T, failing ...string) *cliTestEnv {
	t.Helper()

	t.Setenv("STEAMCMD_PATH", "")
	t.Setenv("STEAM_API_BASE_URL", "")
	api := newFakeSteamAPI(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithSteamAPI(api.server.URL),
		testsupport.WithStubSteamCMD(failing...),
	)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "workshopdl.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		api:        api,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
log_dir = %q
steamapps_dir = %q
output_dir = %q

[steamcmd]
binary = %q

[steam]
api_base_url = %q
request_retries = 0

[download]
game_id = %q
retry_base_delay_ms = 1
retry_max_delay_ms = 1

[logging]
level = "warn"
`,
		cfg.Paths.LogDir,
		cfg.Paths.SteamAppsDir,
		cfg.Paths.OutputDir,
		cfg.SteamCMD.Binary,
		cfg.Steam.APIBaseURL,
		cfg.Download.GameID,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeGameConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config_player.xml")
	body := `<?xml version="1.0" encoding="utf-8"?>
<config>
  <contentpackages>
    <core path="Content/ContentPackages/Vanilla.xml" />
    <regularpackages>
      <package path="LocalMods/stale/filelist.xml" />
    </regularpackages>
  </contentpackages>
</config>
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write game config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
