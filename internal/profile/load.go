package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/devboot/internal/inipatch"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclFile is the top-level structure of a profile file for decoding.
type hclFile struct {
	PackageManager *hclPackageManager `hcl:"package_manager,block"`
	INI            *hclINI            `hcl:"ini,block"`
	Env            []hclEnv           `hcl:"env,block"`
	Projects       []hclProject       `hcl:"project,block"`
}

type hclPackageManager struct {
	Buckets []hclBucket `hcl:"bucket,block"`
	Tools   []string    `hcl:"tools,optional"`
}

type hclBucket struct {
	Name string `hcl:"name,label"`
	URL  string `hcl:"url"`
}

type hclINI struct {
	Path  string    `hcl:"path,optional"`
	Rules []hclRule `hcl:"rule,block"`
}

type hclRule struct {
	Pattern string  `hcl:"pattern,label"`
	Replace *string `hcl:"replace,optional"`
	Literal *string `hcl:"literal,optional"`
}

type hclEnv struct {
	Name  string `hcl:"name,label"`
	Value string `hcl:"value"`
}

type hclProject struct {
	Name            string   `hcl:"name,label"`
	Dir             string   `hcl:"dir,optional"`
	Generator       []string `hcl:"generator"`
	Add             []string `hcl:"add,optional"`
	DevAdd          []string `hcl:"dev_add,optional"`
	Runner          []string `hcl:"runner,optional"`
	Installer       []string `hcl:"installer,optional"`
	Dependencies    []string `hcl:"dependencies,optional"`
	DevDependencies []string `hcl:"dev_dependencies,optional"`
	PostInit        []string `hcl:"post_init,optional"`
}

// Load returns the default profile with the file at path applied on top. An
// empty path returns the defaults unchanged.
func Load(path string, v Vars) (Profile, error) {
	p := Default(v)
	if path == "" {
		return p, nil
	}
	if _, err := os.Stat(path); err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Profile{}, fmt.Errorf("failed to parse profile %s: %w", path, diags)
	}
	return decode(file.Body, path, p, v)
}

// Parse is Load for in-memory source; filename is used in diagnostics.
func Parse(src []byte, filename string, v Vars) (Profile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Profile{}, fmt.Errorf("failed to parse profile %s: %w", filename, diags)
	}
	return decode(file.Body, filename, Default(v), v)
}

func decode(body hcl.Body, filename string, p Profile, v Vars) (Profile, error) {
	var f hclFile
	if diags := gohcl.DecodeBody(body, evalContext(v), &f); diags.HasErrors() {
		return Profile{}, fmt.Errorf("failed to decode profile %s: %w", filename, diags)
	}

	if pm := f.PackageManager; pm != nil {
		if len(pm.Buckets) > 0 {
			p.Buckets = nil
			for _, b := range pm.Buckets {
				p.Buckets = append(p.Buckets, Bucket{Name: b.Name, URL: b.URL})
			}
		}
		if pm.Tools != nil {
			p.Tools = pm.Tools
		}
	}

	if ini := f.INI; ini != nil {
		if ini.Path != "" {
			p.INI.Path = ini.Path
		}
		if len(ini.Rules) > 0 {
			rules, err := compileRules(ini.Rules)
			if err != nil {
				return Profile{}, fmt.Errorf("profile %s: %w", filename, err)
			}
			p.INI.Rules = rules
		}
	}

	if len(f.Env) > 0 {
		p.Env = nil
		for _, e := range f.Env {
			p.Env = append(p.Env, EnvVar{Name: e.Name, Value: e.Value})
		}
	}

	for _, hp := range f.Projects {
		pr := Project{
			Name:            hp.Name,
			Dir:             hp.Dir,
			Generator:       hp.Generator,
			Add:             hp.Add,
			DevAdd:          hp.DevAdd,
			Runner:          hp.Runner,
			Installer:       hp.Installer,
			Dependencies:    hp.Dependencies,
			DevDependencies: hp.DevDependencies,
			PostInit:        hp.PostInit,
		}
		p.Projects = upsertProject(p.Projects, pr)
	}

	return p, nil
}

func compileRules(in []hclRule) ([]inipatch.Rule, error) {
	rules := make([]inipatch.Rule, 0, len(in))
	for _, r := range in {
		var (
			rule inipatch.Rule
			err  error
		)
		switch {
		case r.Replace != nil && r.Literal != nil:
			return nil, fmt.Errorf("rule %q: set either replace or literal, not both", r.Pattern)
		case r.Replace != nil:
			rule, err = inipatch.Substitute(r.Pattern, *r.Replace)
		case r.Literal != nil:
			rule, err = inipatch.SetLine(r.Pattern, *r.Literal)
		default:
			return nil, fmt.Errorf("rule %q: one of replace or literal is required", r.Pattern)
		}
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func upsertProject(projects []Project, pr Project) []Project {
	out := make([]Project, 0, len(projects)+1)
	replaced := false
	for _, existing := range projects {
		if existing.Name == pr.Name {
			out = append(out, pr)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, pr)
	}
	return out
}

func evalContext(v Vars) *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, val, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(val)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home":      cty.StringVal(v.Home),
			"scoop_dir": cty.StringVal(v.ScoopDir),
			"env":       cty.ObjectVal(env),
		},
	}
}
