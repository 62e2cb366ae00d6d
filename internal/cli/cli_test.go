package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tessro/stave/internal/config"
	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/export"
	"github.com/tessro/stave/internal/notation"
)

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, sessionFile = "", ""
	jsonOut, verbose = false, false
	importAppend, importFormat, exportFormat = false, "", ""
	clearYes, showChords = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func writeSong(t *testing.T, path string, chords ...[]string) {
	t.Helper()
	p := core.NewPart()
	for _, names := range chords {
		if len(names) == 0 {
			p.Chords = append(p.Chords, core.NewRest(0.25))
			continue
		}
		pitches, err := core.ParsePitches(names)
		if err != nil {
			t.Fatal(err)
		}
		p.Chords = append(p.Chords, core.NewChord(pitches, 0.5))
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format, err := export.FormatFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := export.Write(f, format, core.ToData([]*core.Part{p}), notation.Default); err != nil {
		t.Fatal(err)
	}
}

func showSession(t *testing.T, session string) showResult {
	t.Helper()
	out, err := execute(t, "--session", session, "--json", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	var res showResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("show output is not JSON: %v\n%s", err, out)
	}
	return res
}

func TestImportShowExport(t *testing.T) {
	dir := isolate(t)
	session := filepath.Join(dir, "parts.json")
	song := filepath.Join(dir, "song.yaml")
	writeSong(t, song, []string{"C4", "E4", "G4"}, nil, []string{"D4"})

	out, err := execute(t, "--session", session, "import", song)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "Imported 1 parts") {
		t.Errorf("import output = %q", out)
	}

	res := showSession(t, session)
	if len(res.Session.Parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(res.Session.Parts))
	}
	chords := res.Session.Parts[0].Chords
	if len(chords) != 3 {
		t.Fatalf("chords = %d, want 3", len(chords))
	}
	if got := strings.Join(chords[0].Notes, " "); got != "C4 E4 G4" {
		t.Errorf("first chord = %q, want C4 E4 G4", got)
	}
	if res.Modified == nil || res.Size == 0 {
		t.Error("show did not report the saved file")
	}

	table, err := execute(t, "--session", session, "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table, "C4+E4+G4 4n") {
		t.Errorf("show table missing chord line:\n%s", table)
	}

	mid := filepath.Join(dir, "out.mid")
	if _, err := execute(t, "--session", session, "export", mid); err != nil {
		t.Fatalf("export error = %v", err)
	}
	f, err := os.Open(mid)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, err := export.Read(f, export.MIDI, notation.Default)
	if err != nil {
		t.Fatalf("read exported MIDI: %v", err)
	}
	if len(data) != 1 || len(data[0].Chords) != 3 {
		t.Errorf("exported MIDI = %+v, want one part with 3 chords", data)
	}
}

func TestImportAppend(t *testing.T) {
	dir := isolate(t)
	session := filepath.Join(dir, "parts.json")
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.yaml")
	writeSong(t, a, []string{"C4"})
	writeSong(t, b, []string{"A3"}, []string{"B3"})

	if _, err := execute(t, "--session", session, "import", a); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--session", session, "import", "--append", b); err != nil {
		t.Fatal(err)
	}
	res := showSession(t, session)
	if len(res.Session.Parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(res.Session.Parts))
	}
	if len(res.Session.Parts[1].Chords) != 2 {
		t.Errorf("appended part chords = %d, want 2", len(res.Session.Parts[1].Chords))
	}
}

func TestImportSkipsBadFiles(t *testing.T) {
	dir := isolate(t)
	session := filepath.Join(dir, "parts.json")
	good := filepath.Join(dir, "good.json")
	writeSong(t, good, []string{"C4"})

	out, err := execute(t, "--session", session, "--json", "import", good, filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	var res struct {
		Added  int      `json:"added"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("import output is not JSON: %v\n%s", err, out)
	}
	if res.Added != 1 || len(res.Errors) != 1 {
		t.Errorf("import = %+v, want 1 added and 1 error", res)
	}

	if _, err := execute(t, "--session", session, "import", filepath.Join(dir, "nope.mid")); err == nil {
		t.Error("import of only missing files should fail")
	}
	if _, err := execute(t, "--session", session, "import", filepath.Join(dir, "song.wav")); err == nil {
		t.Error("import of unknown format should fail")
	}
}

func TestClear(t *testing.T) {
	dir := isolate(t)
	session := filepath.Join(dir, "parts.json")
	song := filepath.Join(dir, "song.json")
	writeSong(t, song, []string{"C4"}, []string{"D4"})
	if _, err := execute(t, "--session", session, "import", song); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--session", session, "clear", "--yes")
	if err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if !strings.Contains(out, "Session cleared") {
		t.Errorf("clear output = %q", out)
	}
	res := showSession(t, session)
	if len(res.Session.Parts) != 1 || len(res.Session.Parts[0].Chords) != 0 {
		t.Errorf("after clear = %+v, want one empty part", res.Session.Parts)
	}
}

func TestShowEmptySession(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "--session", filepath.Join(dir, "parts.json"), "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not saved yet") {
		t.Errorf("show output = %q", out)
	}
}

func TestConfigInitAndSet(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "stave.toml")

	if _, err := execute(t, "--config", path, "config", "init", "--defaults"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := execute(t, "--config", path, "config", "init", "--defaults"); err == nil {
		t.Error("second config init should fail")
	}

	out, err := execute(t, "--config", path, "config", "set", "tempo.bpm", "96")
	if err != nil {
		t.Fatalf("config set error = %v", err)
	}
	if !strings.Contains(out, "Set tempo.bpm = 96") {
		t.Errorf("config set output = %q", out)
	}
	if _, err := execute(t, "--config", path, "config", "set", "tempo.bpm", "fast"); err == nil {
		t.Error("config set with a bad value should fail")
	}

	out, err = execute(t, "--config", path, "--json", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	var got config.Config
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("config show output is not JSON: %v\n%s", err, out)
	}
	if got.Tempo.BPM != 96 {
		t.Errorf("tempo.bpm = %v, want 96", got.Tempo.BPM)
	}
}

func TestMissingConfigFile(t *testing.T) {
	dir := isolate(t)
	if _, err := execute(t, "--config", filepath.Join(dir, "nope.toml"), "show"); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--json", "version")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if info["version"] != Version {
		t.Errorf("version = %q, want %q", info["version"], Version)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00.00"},
		{0.5, "0:00.50"},
		{61.25, "1:01.25"},
		{-1, "0:00.00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"C4+E4 4n", 20, "C4+E4 4n"},
		{"C4+E4+G4 4n, D4 8n", 10, "C4+E4+..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.s, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, path string
		want       export.Format
		wantErr    bool
	}{
		{"", "", export.JSON, false},
		{"", "song.mid", export.MIDI, false},
		{"yaml", "song.mid", export.YAML, false},
		{"", "song.wav", "", true},
		{"ogg", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, tt.path, export.JSON)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q, %q) error = %v, wantErr %v", tt.flag, tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.flag, tt.path, got, tt.want)
		}
	}
}

func TestBrowserHost(t *testing.T) {
	tests := map[string]string{
		":7878":          "127.0.0.1:7878",
		"0.0.0.0:8080":   "127.0.0.1:8080",
		"127.0.0.1:7878": "127.0.0.1:7878",
		"[::]:9000":      "127.0.0.1:9000",
		"localhost":      "localhost",
	}
	for addr, want := range tests {
		if got := browserHost(addr); got != want {
			t.Errorf("browserHost(%q) = %q, want %q", addr, got, want)
		}
	}
}
