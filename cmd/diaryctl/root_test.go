package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

type cliEnv struct {
	config string
	data   string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	return cliEnv{
		config: filepath.Join(dir, "config.yaml"),
		data:   filepath.Join(dir, "diary.json"),
	}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--config", e.config, "--data", e.data}, args...))
	err := root.Execute()
	return buf.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestRootHelp(t *testing.T) {
	buf := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"--help"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(buf.String(), "diaryctl") {
		t.Fatalf("expected help output, got %q", buf.String())
	}
}

func TestAddAndShowDay(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "add", "Oatmeal", "350")
	if !strings.Contains(out, "Added Oatmeal (350 kcal)") {
		t.Fatalf("unexpected add output: %q", out)
	}
	if _, err := os.Stat(env.data); err != nil {
		t.Fatalf("expected diary file to be written: %v", err)
	}

	out = env.mustRun(t, "day")
	for _, want := range []string{"Oatmeal", "Total: 350 / 2000 kcal", "Remaining: 1650 kcal"} {
		if !strings.Contains(out, want) {
			t.Errorf("day output missing %q:\n%s", want, out)
		}
	}
}

func TestAddRejectsInvalidEntry(t *testing.T) {
	env := newCLIEnv(t)

	if _, err := env.run(t, "add", "Water", "0"); err == nil {
		t.Fatal("expected error for 0 kcal entry")
	}
	if _, err := env.run(t, "add", "Cake", "lots"); err == nil {
		t.Fatal("expected error for non-numeric calories")
	}

	out := env.mustRun(t, "day")
	if !strings.Contains(out, "no entries") {
		t.Fatalf("expected empty day, got:\n%s", out)
	}
}

func TestGoalSetAndValidation(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "goal", "set", "1800")
	if !strings.Contains(out, "Goal: 1800 kcal") {
		t.Fatalf("unexpected goal output: %q", out)
	}

	_, err := env.run(t, "goal", "set", "100")
	if err == nil || !strings.Contains(err.Error(), "invalid cals") {
		t.Fatalf("expected cals validation error, got %v", err)
	}

	out = env.mustRun(t, "goal")
	if !strings.Contains(out, "Goal: 1800 kcal") {
		t.Fatalf("goal changed after rejected update: %q", out)
	}

	out = env.mustRun(t, "goal", "reset")
	if !strings.Contains(out, "Goal: 2000 kcal") {
		t.Fatalf("expected default goal after reset, got %q", out)
	}
}

func TestRemoveEntryByPrefix(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "add", "Toast", "200")
	m := regexp.MustCompile(`\[([^\]]+)\]`).FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in add output: %q", out)
	}

	out = env.mustRun(t, "rm", m[1][:4])
	if !strings.Contains(out, "Deleted "+m[1]) {
		t.Fatalf("unexpected rm output: %q", out)
	}

	if _, err := env.run(t, "rm", m[1]); err == nil {
		t.Fatal("expected error removing a missing entry")
	}
}

func TestTemplateApplyByName(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "template", "add", "Latte", "150")

	out := env.mustRun(t, "template", "list")
	if !strings.Contains(out, "Latte") {
		t.Fatalf("template missing from list: %q", out)
	}

	out = env.mustRun(t, "template", "apply", "latte")
	if !strings.Contains(out, "Added Latte (150 kcal)") {
		t.Fatalf("unexpected apply output: %q", out)
	}

	out = env.mustRun(t, "day")
	if !strings.Contains(out, "Total: 150 / 2000 kcal") {
		t.Fatalf("template entry not logged:\n%s", out)
	}

	env.mustRun(t, "template", "rm", "Latte")
	out = env.mustRun(t, "template", "list")
	if !strings.Contains(out, "No templates") {
		t.Fatalf("expected no templates, got %q", out)
	}
}

func TestBackupExportImport(t *testing.T) {
	env := newCLIEnv(t)
	backupPath := filepath.Join(t.TempDir(), "backup.json")

	env.mustRun(t, "add", "Eggs", "300")
	env.mustRun(t, "add", "Toast", "200")
	env.mustRun(t, "backup", "export", backupPath)
	env.mustRun(t, "clear")

	out := env.mustRun(t, "backup", "import", backupPath)
	if !strings.Contains(out, "Imported 1 days, 2 entries, 0 templates (goal 2000 kcal)") {
		t.Fatalf("unexpected import output: %q", out)
	}

	out = env.mustRun(t, "day")
	if !strings.Contains(out, "Total: 500 / 2000 kcal") {
		t.Fatalf("backup not restored:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "backup", "import", bad); err == nil {
		t.Fatal("expected error importing invalid backup")
	}
	out = env.mustRun(t, "day")
	if !strings.Contains(out, "Total: 500 / 2000 kcal") {
		t.Fatalf("invalid import changed the diary:\n%s", out)
	}
}

func TestBackupArchiveNextToDiary(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "add", "Apple", "95")

	out := env.mustRun(t, "backup", "archive")
	if !strings.Contains(out, "file://") {
		t.Fatalf("expected file URL, got %q", out)
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(env.data), "backups", "default", "*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one archived backup, got %v (%v)", matches, err)
	}
}

func TestLookupAddFromYAMLConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":1,"product":{"product_name":"Oat Bar","nutriments":{"energy-kcal_serving":190.4}}}`))
	}))
	defer srv.Close()

	env := newCLIEnv(t)
	yaml := fmt.Sprintf("lookup:\n  base_url: %s\n  timeout_seconds: 5\n", srv.URL)
	if err := os.WriteFile(env.config, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	out := env.mustRun(t, "lookup", "3017620422003", "--add")
	if !strings.Contains(out, "Oat Bar: 190 kcal per serving") {
		t.Fatalf("unexpected lookup output: %q", out)
	}
	if !strings.Contains(out, "Added Oat Bar (190 kcal)") {
		t.Fatalf("expected entry to be added: %q", out)
	}
}

func TestCalendarAndStreak(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "add", "Soup", "250")

	out := env.mustRun(t, "calendar")
	if !strings.Contains(out, " Su  Mo  Tu  We  Th  Fr  Sa") {
		t.Fatalf("missing weekday header:\n%s", out)
	}
	if !strings.Contains(out, "Logged 1 day(s), 0 over goal, avg 250 kcal") {
		t.Fatalf("unexpected summary:\n%s", out)
	}

	out = env.mustRun(t, "streak")
	if !strings.Contains(out, "Streak: 1 day(s)") {
		t.Fatalf("unexpected streak output: %q", out)
	}

	if _, err := env.run(t, "calendar", "--month", "june"); err == nil {
		t.Fatal("expected error for malformed month")
	}
}
