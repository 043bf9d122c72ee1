package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/devboot/internal/elevate"
	"github.com/dshills/devboot/internal/journal"
	"github.com/dshills/devboot/internal/profile"
	"github.com/dshills/devboot/internal/runner"
	"github.com/dshills/devboot/internal/runner/runnertest"
	"github.com/dshills/devboot/internal/setup"
	"github.com/dshills/devboot/internal/workdir"
	"github.com/google/go-cmp/cmp"
)

// resetFlags resets all package-level flag variables to their defaults.
func resetFlags() {
	flagProfile = ""
	flagLogLevel = ""
	flagFormat = "text"
	flagOut = ""
	flagOnly = nil
	flagBackup = ""
}

const testIni = "[PHP]\n;extension=curl\nmemory_limit = 128M\n"

const testProfile = `
package_manager {
  bucket "extras" { url = "https://github.com/ScoopInstaller/Extras" }
  tools = ["git", "7zip"]
}

ini {
  path = "%s"
}

env "PHPRC" { value = "%s" }

project "backend" {
  dir          = "api"
  generator    = ["composer", "create-project", "laravel/laravel"]
  add          = ["composer", "require"]
  runner       = ["php", "artisan"]
  dependencies = ["laravel/sanctum"]
  post_init    = ["key:generate"]
}

project "frontend" {
  dir       = "web"
  generator = ["npm", "create", "vue@latest", "{target}", "--", "--default"]
  installer = ["npm", "install"]
}
`

type testEnv struct {
	dir     string
	ini     string
	profile string
	fake    *runnertest.Fake
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	resetFlags()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, k := range []string{"DEVBOOT_PACKAGE_MANAGER", "DEVBOOT_PROFILE", "DEVBOOT_LOG_LEVEL", "DEVBOOT_COMMAND_TIMEOUT"} {
		t.Setenv(k, "")
	}
	t.Setenv("DEVBOOT_ELEVATE", "false")
	t.Setenv("PHPRC", "")

	e := &testEnv{
		dir:     dir,
		ini:     filepath.Join(dir, "php.ini"),
		profile: filepath.Join(dir, "devboot.hcl"),
		fake:    runnertest.New(),
	}
	if err := os.WriteFile(e.ini, []byte(testIni), 0o644); err != nil {
		t.Fatal(err)
	}
	e.writeProfile(t, fmt.Sprintf(testProfile, filepath.ToSlash(e.ini), filepath.ToSlash(dir)))

	e.fake.SetPath("scoop", "scoop")
	e.fake.Results["scoop bucket list"] = runner.Result{Stdout: "main https://github.com/ScoopInstaller/Main\n"}
	e.fake.Results["scoop list"] = runner.Result{Stdout: "git 2.40.0\n"}

	savedRunner := newRunner
	newRunner = func() runner.Runner { return e.fake }
	t.Cleanup(func() { newRunner = savedRunner })

	savedExitCode := exitCode
	t.Cleanup(func() { exitCode = savedExitCode })
	exitCode = ExitSuccess

	return e
}

func (e *testEnv) writeProfile(t *testing.T, src string) {
	t.Helper()
	if err := os.WriteFile(e.profile, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

// execute runs the root command with args and returns captured stdout and
// stderr. A non-nil error is cobra's usage error.
func execute(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	if m := buildOverrides(); len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProfile = "team.hcl"
	flagLogLevel = "debug"

	want := map[string]string{"profileFile": "team.hcl", "logLevel": "debug"}
	if diff := cmp.Diff(want, buildOverrides()); diff != "" {
		t.Errorf("buildOverrides() mismatch (-want +got):\n%s", diff)
	}
}

// --- exit code mapping ---

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"declined", fmt.Errorf("setup: %w", elevate.ErrDeclined), ExitSuccess},
		{"interrupted", fmt.Errorf("scoop install: %w", context.Canceled), ExitInterrupted},
		{"tool exit", fmt.Errorf("installing: %w", &runner.ExitError{Name: "scoop", Code: 42}), 42},
		{"elevated child exit", &runner.ExitError{Name: `C:\tools\devboot.exe`, Args: []string{"setup"}, Code: 5}, 5},
		{"other", errors.New("disk full"), ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAbsProfileArgs(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(t.TempDir(), "team.hcl")
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"no profile", []string{"setup"}, []string{"setup"}},
		{"relative", []string{"setup", "--profile", "team.hcl"}, []string{"setup", "--profile", filepath.Join(wd, "team.hcl")}},
		{"relative with equals", []string{"--profile=conf/team.hcl", "setup"}, []string{"--profile=" + filepath.Join(wd, "conf", "team.hcl"), "setup"}},
		{"absolute kept", []string{"setup", "--profile", abs}, []string{"setup", "--profile", abs}},
		{"dangling flag", []string{"setup", "--profile"}, []string{"setup", "--profile"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.in...)
			if diff := cmp.Diff(tt.want, absProfileArgs(in)); diff != "" {
				t.Errorf("absProfileArgs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.in, in); diff != "" {
				t.Errorf("input modified (-want +got):\n%s", diff)
			}
		})
	}
}

// --- setup command tests ---

func TestSetupCmd(t *testing.T) {
	e := newTestEnv(t)

	out, stderr, err := execute("", "setup", "--profile", e.profile)
	if err != nil {
		t.Fatalf("setup returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want 0; stderr:\n%s", exitCode, stderr)
	}

	want := []string{
		"scoop bucket list",
		"scoop bucket add extras https://github.com/ScoopInstaller/Extras",
		"scoop list",
		"scoop install 7zip",
		"scoop update git",
		"scoop cleanup *",
		"scoop cache rm *",
	}
	if diff := cmp.Diff(want, e.fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(e.ini)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\nextension=curl\n") || !strings.Contains(string(data), "memory_limit = 512M") {
		t.Errorf("php.ini not patched:\n%s", data)
	}
	if got := os.Getenv("PHPRC"); got != filepath.ToSlash(e.dir) {
		t.Errorf("PHPRC = %q, want %q", got, filepath.ToSlash(e.dir))
	}
	if !strings.Contains(out, "Setup complete.") {
		t.Errorf("stdout missing completion line:\n%s", out)
	}
}

func TestSetupCmd_ToolExitCodePropagates(t *testing.T) {
	e := newTestEnv(t)
	e.fake.Results["scoop install"] = runner.Result{ExitCode: 7, Stderr: "Couldn't find manifest for '7zip'"}

	_, stderr, err := execute("", "setup", "--profile", e.profile)
	if err != nil {
		t.Fatalf("setup returned error: %v", err)
	}
	if exitCode != 7 {
		t.Errorf("exitCode = %d, want 7", exitCode)
	}
	if !strings.Contains(stderr, "Couldn't find manifest") {
		t.Errorf("stderr missing tool output:\n%s", stderr)
	}
	data, _ := os.ReadFile(e.ini)
	if string(data) != testIni {
		t.Error("php.ini patched after a failed install")
	}
}

func TestSetupCmd_BadProfile(t *testing.T) {
	e := newTestEnv(t)
	e.writeProfile(t, "package_manager {")

	_, stderr, err := execute("", "setup", "--profile", e.profile)
	if err != nil {
		t.Fatalf("setup returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
	if !strings.Contains(stderr, "profile") {
		t.Errorf("stderr should mention the profile:\n%s", stderr)
	}
	if len(e.fake.Calls) != 0 {
		t.Errorf("commands ran despite a bad profile: %v", e.fake.Lines())
	}
}

func TestSetupCmd_RejectsArgs(t *testing.T) {
	newTestEnv(t)
	if _, _, err := execute("", "setup", "extra"); err == nil {
		t.Error("setup with positional args should return error")
	}
}

// --- plan command tests ---

func TestPlanCmd_JSON(t *testing.T) {
	e := newTestEnv(t)

	out, stderr, err := execute("", "plan", "--profile", e.profile, "--format", "json")
	if err != nil {
		t.Fatalf("plan returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d; stderr:\n%s", exitCode, stderr)
	}

	var plan setup.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("plan output is not JSON: %v\n%s", err, out)
	}
	if diff := cmp.Diff([]string{"7zip"}, plan.Tools.ToInstall); diff != "" {
		t.Errorf("ToInstall mismatch (-want +got):\n%s", diff)
	}
	if plan.INI.Changed != 2 || plan.INI.Total != 3 {
		t.Errorf("INI = %+v, want 2 of 3 changed", plan.INI)
	}

	for _, line := range e.fake.Lines() {
		if line != "scoop bucket list" && line != "scoop list" {
			t.Errorf("plan ran a mutating command: %q", line)
		}
	}
	data, _ := os.ReadFile(e.ini)
	if string(data) != testIni {
		t.Error("plan modified php.ini")
	}
}

func TestPlanCmd_BadFormat(t *testing.T) {
	e := newTestEnv(t)
	if _, _, err := execute("", "plan", "--profile", e.profile, "--format", "yaml"); err == nil {
		t.Error("plan with unsupported format should return error")
	}
}

// --- scaffold command tests ---

type fakeChanger struct {
	cwd   string
	trail []string
}

func (f *fakeChanger) Getwd() (string, error) { return f.cwd, nil }

func (f *fakeChanger) Chdir(dir string) error {
	f.trail = append(f.trail, dir)
	f.cwd = dir
	return nil
}

func useChanger(t *testing.T, ch workdir.Changer) {
	t.Helper()
	saved := changer
	changer = ch
	t.Cleanup(func() { changer = saved })
}

func TestScaffoldCmd(t *testing.T) {
	e := newTestEnv(t)
	root := filepath.Join(e.dir, "shop")
	ch := &fakeChanger{cwd: e.dir}
	useChanger(t, ch)

	out, stderr, err := execute(root+"\n", "scaffold", "--profile", e.profile)
	if err != nil {
		t.Fatalf("scaffold returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d; stderr:\n%s", exitCode, stderr)
	}

	api := filepath.Join(root, "api")
	web := filepath.Join(root, "web")
	want := []runnertest.Call{
		{Name: "composer", Args: []string{"create-project", "laravel/laravel", api}, Dir: root},
		{Name: "composer", Args: []string{"require", "laravel/sanctum"}, Dir: api},
		{Name: "php", Args: []string{"artisan", "key:generate"}, Dir: api},
		{Name: "npm", Args: []string{"create", "vue@latest", web, "--", "--default"}, Dir: root},
		{Name: "npm", Args: []string{"install"}, Dir: web},
	}
	if diff := cmp.Diff(want, e.fake.Calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if ch.cwd != e.dir {
		t.Errorf("cwd = %q after scaffold, want starting dir %q", ch.cwd, e.dir)
	}
	for _, dir := range []string{api, web} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("target %s not created: %v", dir, err)
		}
	}
	if !strings.Contains(out, "Scaffolding complete.") {
		t.Errorf("stdout missing completion line:\n%s", out)
	}

	j, err := journal.New(true, filepath.Join(e.dir, "state", "devboot"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := j.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("journal entries = %d, want 2", len(entries))
	}
}

func TestScaffoldCmd_FailureStopsAndRestores(t *testing.T) {
	e := newTestEnv(t)
	root := filepath.Join(e.dir, "shop")
	ch := &fakeChanger{cwd: e.dir}
	useChanger(t, ch)
	e.fake.Results["composer require"] = runner.Result{ExitCode: 3, Stderr: "package not found"}

	if _, _, err := execute(root+"\n", "scaffold", "--profile", e.profile); err != nil {
		t.Fatalf("scaffold returned error: %v", err)
	}
	if exitCode != 3 {
		t.Errorf("exitCode = %d, want 3", exitCode)
	}
	if ch.cwd != e.dir {
		t.Errorf("cwd = %q after failure, want starting dir %q", ch.cwd, e.dir)
	}
	for _, c := range e.fake.Calls {
		if c.Name == "npm" {
			t.Errorf("frontend generated after backend failure: %s", c.Line())
		}
	}
}

func TestScaffoldCmd_UnknownProject(t *testing.T) {
	e := newTestEnv(t)
	useChanger(t, &fakeChanger{cwd: e.dir})
	if _, _, err := execute("\n", "scaffold", "--profile", e.profile, "--only", "mobile"); err == nil {
		t.Error("scaffold with an unknown project should return error")
	}
	if len(e.fake.Calls) != 0 {
		t.Errorf("commands ran for unknown project: %v", e.fake.Lines())
	}
}

func TestPromptRoot(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(t.TempDir(), "proj")
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"blank uses cwd", "\n", wd},
		{"eof uses cwd", "", wd},
		{"absolute path", abs + "\n", abs},
		{"trimmed", "  " + abs + "  \r\n", abs},
		{"relative resolved", "proj\n", filepath.Join(wd, "proj")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptRoot(strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("promptRoot error: %v", err)
			}
			if got != tt.want {
				t.Errorf("promptRoot(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Project directory") {
				t.Error("prompt not written")
			}
		})
	}
}

// --- ini command tests ---

func TestIniCheckCmd(t *testing.T) {
	e := newTestEnv(t)

	out, stderr, err := execute("", "ini", "check", "--profile", e.profile)
	if err != nil {
		t.Fatalf("ini check returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d; stderr:\n%s", exitCode, stderr)
	}
	if !strings.Contains(out, "2 of 3 lines would change") {
		t.Errorf("output missing summary:\n%s", out)
	}
	if !strings.Contains(out, "+ extension=curl") {
		t.Errorf("output missing line diff:\n%s", out)
	}
}

func TestIniCheckCmd_NonIdempotentRule(t *testing.T) {
	e := newTestEnv(t)
	e.writeProfile(t, fmt.Sprintf(`
ini {
  path = "%s"
  rule "x" { replace = "xx" }
}
`, filepath.ToSlash(e.ini)))
	if err := os.WriteFile(e.ini, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute("", "ini", "check", "--profile", e.profile)
	if err != nil {
		t.Fatalf("ini check returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
	if !strings.Contains(out, "rule 1") {
		t.Errorf("output should name the offending rule:\n%s", out)
	}
}

func TestIniRestoreCmd(t *testing.T) {
	e := newTestEnv(t)

	if _, _, err := execute("", "setup", "--profile", e.profile); err != nil || exitCode != ExitSuccess {
		t.Fatalf("setup failed: err=%v exitCode=%d", err, exitCode)
	}
	resetFlags()

	out, stderr, err := execute("", "ini", "restore", "--profile", e.profile)
	if err != nil {
		t.Fatalf("ini restore returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d; stderr:\n%s", exitCode, stderr)
	}
	data, _ := os.ReadFile(e.ini)
	if string(data) != testIni {
		t.Errorf("php.ini = %q after restore, want original", data)
	}
	if !strings.Contains(out, "Restored") {
		t.Errorf("output missing confirmation:\n%s", out)
	}
}

func TestIniRestoreCmd_NoBackup(t *testing.T) {
	e := newTestEnv(t)

	_, stderr, err := execute("", "ini", "restore", "--profile", e.profile)
	if err != nil {
		t.Fatalf("ini restore returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
	if !strings.Contains(stderr, "no recorded backup") {
		t.Errorf("stderr missing explanation:\n%s", stderr)
	}
}

// --- journal command tests ---

func TestJournalCmd_ListAndClear(t *testing.T) {
	e := newTestEnv(t)

	out, _, err := execute("", "journal", "list")
	if err != nil {
		t.Fatalf("journal list returned error: %v", err)
	}
	if !strings.Contains(out, "No journal entries.") {
		t.Errorf("empty journal output:\n%s", out)
	}

	if _, _, err := execute("", "setup", "--profile", e.profile); err != nil || exitCode != ExitSuccess {
		t.Fatalf("setup failed: err=%v exitCode=%d", err, exitCode)
	}
	resetFlags()

	out, _, err = execute("", "journal", "list")
	if err != nil {
		t.Fatalf("journal list returned error: %v", err)
	}
	if !strings.Contains(out, "ini-patch") || !strings.Contains(out, "reconcile") {
		t.Errorf("journal list missing entries:\n%s", out)
	}

	out, _, err = execute("", "journal", "clear")
	if err != nil {
		t.Fatalf("journal clear returned error: %v", err)
	}
	if !strings.Contains(out, "Removed 2 journal entries.") {
		t.Errorf("journal clear output:\n%s", out)
	}
}

// --- config command tests ---

func TestConfigInit_Execute(t *testing.T) {
	e := newTestEnv(t)
	profilePath := filepath.Join(e.dir, "config", "devboot", "devboot.hcl")

	out, _, err := execute("", "config", "init")
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(out, "Config file created") || !strings.Contains(out, "Profile created at "+profilePath) {
		t.Errorf("config init output:\n%s", out)
	}
	data, err := os.ReadFile(profilePath)
	if err != nil {
		t.Fatalf("starter profile not written: %v", err)
	}
	if string(data) != profile.Starter {
		t.Error("starter profile content mismatch")
	}

	_, stderr, err := execute("", "config", "init")
	if err != nil {
		t.Fatalf("second config init returned error: %v", err)
	}
	if !strings.Contains(stderr, "Config file already exists") || !strings.Contains(stderr, "Profile already exists") {
		t.Errorf("second config init should report existing files:\n%s", stderr)
	}
}

func TestConfigInit_KeepsExistingProfile(t *testing.T) {
	e := newTestEnv(t)
	profilePath := filepath.Join(e.dir, "config", "devboot", "devboot.hcl")
	if err := os.MkdirAll(filepath.Dir(profilePath), 0o755); err != nil {
		t.Fatal(err)
	}
	mine := "package_manager { tools = [\"git\"] }\n"
	if err := os.WriteFile(profilePath, []byte(mine), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute("", "config", "init")
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(out, "Config file created") {
		t.Errorf("config not created alongside existing profile:\n%s", out)
	}
	data, _ := os.ReadFile(profilePath)
	if string(data) != mine {
		t.Errorf("existing profile overwritten: %q", data)
	}
}

func TestConfigSet_Execute(t *testing.T) {
	e := newTestEnv(t)

	if _, _, err := execute("", "config", "set", "commandTimeoutSeconds", "900"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(e.dir, "config", "devboot", "config.json"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved["commandTimeoutSeconds"] != float64(900) {
		t.Errorf("commandTimeoutSeconds = %v, want 900", saved["commandTimeoutSeconds"])
	}
	if saved["packageManager"] != "scoop" {
		t.Errorf("packageManager = %v, want defaults preserved", saved["packageManager"])
	}
}

func TestConfigSet_InvalidKey(t *testing.T) {
	newTestEnv(t)
	if _, _, err := execute("", "config", "set", "unknownKey", "value"); err == nil {
		t.Error("config set with invalid key should return error")
	}
}

func TestConfigSet_MissingArgs(t *testing.T) {
	newTestEnv(t)
	if _, _, err := execute("", "config", "set", "elevate"); err == nil {
		t.Error("config set with 1 arg should return error (requires 2)")
	}
}

func TestConfigShow_Execute(t *testing.T) {
	newTestEnv(t)

	out, _, err := execute("", "config", "show", "--log-level", "debug")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(out, `"logLevel": "debug"`) {
		t.Errorf("config show should reflect --log-level:\n%s", out)
	}
}

// --- command tree ---

func TestRootCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"setup": false, "scaffold": false, "plan": false, "ini": false,
		"journal": false, "config": false, "version": false,
	}
	for _, sub := range rootCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("subcommand %q not found", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	resetFlags()
	out, _, err := execute("", "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.Contains(out, "devboot version "+version) {
		t.Errorf("version output = %q", out)
	}
}
