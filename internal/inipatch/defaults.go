package inipatch

import (
	"fmt"
	"regexp"
)

// DefaultExtensions are the PHP extensions a Laravel install expects.
var DefaultExtensions = []string{
	"curl", "fileinfo", "gd", "intl", "mbstring",
	"openssl", "pdo_mysql", "pdo_sqlite", "sqlite3", "zip",
}

// ExtensionRule uncomments extension=name, keeping the captured name.
func ExtensionRule(name string) Rule {
	return Rule{
		Pattern:     regexp.MustCompile(fmt.Sprintf(`^;?\s*extension\s*=\s*(%s)\s*$`, regexp.QuoteMeta(name))),
		Replacement: "extension=$1",
	}
}

// SettingRule forces key = value, whether the line is commented or not.
func SettingRule(key, value string) Rule {
	return Rule{
		Pattern:     regexp.MustCompile(fmt.Sprintf(`^;?\s*%s\s*=`, regexp.QuoteMeta(key))),
		Replacement: fmt.Sprintf("%s = %s", key, value),
		Literal:     true,
	}
}

// DefaultRules is the php.ini rule set applied by setup.
func DefaultRules() []Rule {
	rules := []Rule{
		{
			Pattern:     regexp.MustCompile(`^;?\s*extension_dir\s*=\s*"ext"\s*$`),
			Replacement: `extension_dir = "ext"`,
			Literal:     true,
		},
	}
	for _, ext := range DefaultExtensions {
		rules = append(rules, ExtensionRule(ext))
	}
	rules = append(rules,
		SettingRule("memory_limit", "512M"),
		SettingRule("upload_max_filesize", "64M"),
		SettingRule("post_max_size", "64M"),
	)
	return rules
}
