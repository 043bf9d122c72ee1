package profile

import (
	"os"
	"path/filepath"

	"github.com/dshills/devboot/internal/inipatch"
	"github.com/dshills/devboot/internal/scaffold"
)

// Bucket is a package manager bucket to register.
type Bucket struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// INI is the configuration file to patch and the rules to apply.
type INI struct {
	Path  string          `json:"path"`
	Rules []inipatch.Rule `json:"-"`
}

// EnvVar is an environment variable set at the end of setup.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Project is a scaffolding template.
type Project struct {
	Name            string   `json:"name"`
	Dir             string   `json:"dir"`
	Generator       []string `json:"generator"`
	Add             []string `json:"add,omitempty"`
	DevAdd          []string `json:"devAdd,omitempty"`
	Runner          []string `json:"runner,omitempty"`
	Installer       []string `json:"installer,omitempty"`
	Dependencies    []string `json:"dependencies,omitempty"`
	DevDependencies []string `json:"devDependencies,omitempty"`
	PostInit        []string `json:"postInit,omitempty"`
}

// Descriptor turns the template into a scaffold.Descriptor rooted at root.
func (p Project) Descriptor(root string) scaffold.Descriptor {
	dir := p.Dir
	if dir == "" {
		dir = p.Name
	}
	return scaffold.Descriptor{
		Name:            p.Name,
		RootPath:        root,
		TargetPath:      filepath.Join(root, dir),
		Generator:       p.Generator,
		AddCommand:      p.Add,
		DevAddCommand:   p.DevAdd,
		CommandRunner:   p.Runner,
		Installer:       p.Installer,
		Dependencies:    p.Dependencies,
		DevDependencies: p.DevDependencies,
		PostInit:        p.PostInit,
	}
}

// Profile is the complete description of a machine setup.
type Profile struct {
	Buckets  []Bucket  `json:"buckets"`
	Tools    []string  `json:"tools"`
	INI      INI       `json:"ini"`
	Env      []EnvVar  `json:"env"`
	Projects []Project `json:"projects"`
}

// Project returns the template named name.
func (p Profile) Project(name string) (Project, bool) {
	for _, pr := range p.Projects {
		if pr.Name == name {
			return pr, true
		}
	}
	return Project{}, false
}

// Vars are the values exposed to profile expressions.
type Vars struct {
	Home     string
	ScoopDir string
}

// DefaultVars resolves Vars from the environment.
func DefaultVars() Vars {
	home, _ := os.UserHomeDir()
	scoop := os.Getenv("SCOOP")
	if scoop == "" && home != "" {
		scoop = filepath.Join(home, "scoop")
	}
	return Vars{Home: home, ScoopDir: scoop}
}

// Default returns the built-in profile.
func Default(v Vars) Profile {
	phpDir := filepath.Join(v.ScoopDir, "apps", "php", "current")
	return Profile{
		Buckets: []Bucket{
			{Name: "extras", URL: "https://github.com/ScoopInstaller/Extras"},
			{Name: "versions", URL: "https://github.com/ScoopInstaller/Versions"},
			{Name: "php", URL: "https://github.com/ScoopInstaller/PHP"},
		},
		Tools: []string{"git", "7zip", "php", "composer", "nodejs-lts", "mysql"},
		INI: INI{
			Path:  filepath.Join(phpDir, "php.ini"),
			Rules: inipatch.DefaultRules(),
		},
		Env: []EnvVar{
			{Name: "PHPRC", Value: phpDir},
		},
		Projects: []Project{
			{
				Name:            "backend",
				Dir:             "backend",
				Generator:       []string{"composer", "create-project", "laravel/laravel"},
				Add:             []string{"composer", "require"},
				DevAdd:          []string{"composer", "require", "--dev"},
				Runner:          []string{"php", "artisan"},
				Installer:       []string{"npm", "install"},
				Dependencies:    []string{"laravel/sanctum", "spatie/laravel-permission"},
				DevDependencies: []string{"laravel/pint", "barryvdh/laravel-debugbar"},
				PostInit:        []string{"key:generate", "storage:link"},
			},
			{
				Name:            "frontend",
				Dir:             "frontend",
				Generator:       []string{"npm", "create", "vue@latest", scaffold.TargetPlaceholder, "--", "--default"},
				Add:             []string{"npm", "install"},
				DevAdd:          []string{"npm", "install", "--save-dev"},
				Installer:       []string{"npm", "install"},
				Dependencies:    []string{"vue-router", "pinia", "axios"},
				DevDependencies: []string{"tailwindcss", "@tailwindcss/vite"},
			},
		},
	}
}
