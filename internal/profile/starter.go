package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Starter is the profile written by `devboot config init`. It restates the
// built-in buckets, tools and PHPRC so they can be edited in place, and shows
// the remaining blocks commented out.
const Starter = `# devboot profile. Every block present here replaces the matching built-in
# section; delete a block to fall back to the default.
# Expressions can use home, scoop_dir and env.NAME.

package_manager {
  bucket "extras" { url = "https://github.com/ScoopInstaller/Extras" }
  bucket "versions" { url = "https://github.com/ScoopInstaller/Versions" }
  bucket "php" { url = "https://github.com/ScoopInstaller/PHP" }

  tools = ["git", "7zip", "php", "composer", "nodejs-lts", "mysql"]
}

env "PHPRC" { value = "${scoop_dir}/apps/php/current" }

# ini {
#   path = "${scoop_dir}/apps/php/current/php.ini"
#   rule "^;?\\s*extension\\s*=\\s*(redis)\\s*$" { replace = "extension=$1" }
#   rule "^;?\\s*memory_limit\\s*=" { literal = "memory_limit = 512M" }
# }

# project "backend" {
#   dir              = "backend"
#   generator        = ["composer", "create-project", "laravel/laravel"]
#   add              = ["composer", "require"]
#   dev_add          = ["composer", "require", "--dev"]
#   runner           = ["php", "artisan"]
#   installer        = ["npm", "install"]
#   dependencies     = ["laravel/sanctum"]
#   dev_dependencies = ["laravel/pint"]
#   post_init        = ["key:generate"]
# }
`

// WriteStarter writes Starter to path unless a file is already there. It
// reports whether the file was created.
func WriteStarter(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating profile directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating profile: %w", err)
	}
	if _, err := f.WriteString(Starter); err != nil {
		f.Close()
		return false, fmt.Errorf("writing profile: %w", err)
	}
	return true, f.Close()
}
