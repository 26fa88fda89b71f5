package version

import "testing"

func setBuild(t *testing.T, v, commit, built string) {
	t.Helper()
	ov, oc, ob := Version, Commit, BuildTime
	Version, Commit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, Commit, BuildTime = ov, oc, ob })
}

func TestGet_LinkTimeValues(t *testing.T) {
	setBuild(t, "1.2.0", "3f2a9c1e55", "2026-01-02T03:04:05Z")

	info := Get()
	if info.Version != "1.2.0" {
		t.Fatalf("version = %q", info.Version)
	}
	if info.Commit != "3f2a9c1" {
		t.Fatalf("commit = %q, want it shortened to 3f2a9c1", info.Commit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("build time = %q", info.BuildTime)
	}
}

func TestGet_Defaults(t *testing.T) {
	setBuild(t, "dev", "", "")

	info := Get()
	if info.Version != "dev" {
		t.Fatalf("version = %q", info.Version)
	}
	// Test binaries carry no VCS stamp.
	if info.Commit == "" {
		t.Fatal("commit should fall back to a placeholder")
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev", Commit: "none"}, "dev"},
		{Info{Version: "1.2.0", Commit: "3f2a9c1"}, "1.2.0-3f2a9c1"},
		{Info{Version: "1.2.0", Commit: "3f2a9c1", Dirty: true}, "1.2.0-3f2a9c1-dirty"},
	}
	for _, tt := range tests {
		if got := tt.info.Short(); got != tt.want {
			t.Errorf("Short(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}
