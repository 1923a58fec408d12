package main

import (
	"encoding/json"
	"testing"
)

func TestCollectionCommandListsItemsInOrder(t *testing.T) {
	env := setupCLITestEnv(t)
	env.api.collections["55"] = []string{"3", "1", "2"}
	env.api.titles["1"] = "Alpha"

	out, _, err := runCLI(t, []string{"collection", "55", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	var items []collectionItemJSON
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(items) != 3 || items[0].ItemID != "3" || items[1].ItemID != "1" || items[2].ItemID != "2" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[1].Title != "Alpha" || items[1].SizeBytes != 2048 || items[1].Position != 2 {
		t.Fatalf("expected details for item 1: %+v", items[1])
	}

	out, _, err = runCLI(t, []string{"collection", "55"}, env.configPath)
	if err != nil {
		t.Fatalf("collection table: %v", err)
	}
	requireContains(t, out, "Alpha")
	requireContains(t, out, "2.0 KiB")
	requireContains(t, out, "3 items")
}

func TestCollectionJSONKeepsTitlesVerbatim(t *testing.T) {
	env := setupCLITestEnv(t)
	env.api.collections["77"] = []string{"9"}
	env.api.titles["9"] = "Subs & <Shuttles>"

	out, _, err := runCLI(t, []string{"collection", "77", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	requireContains(t, out, `"title": "Subs & <Shuttles>"`)
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Fatalf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
