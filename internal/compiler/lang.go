package compiler

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// language describes one native toolchain target. The flag set is fixed
// and versioned through the cache fingerprint; changing it here changes
// the fingerprint and invalidates prior cache entries.
type language struct {
	id      string // canonical id used in cache keys
	srcExt  string
	flags   []string
	sources mapset.Set[string] // extensions picked up in multi-file builds
	isCxx   bool
}

var (
	langC = &language{
		id:      "c",
		srcExt:  ".c",
		flags:   []string{"-std=c99", "-O2", "-Wall", "-Wextra"},
		sources: mapset.NewSet(".c"),
	}
	langCpp = &language{
		id:      "cpp",
		srcExt:  ".cpp",
		flags:   []string{"-std=c++17", "-O2", "-Wall", "-Wextra"},
		sources: mapset.NewSet(".cpp", ".cc", ".cxx"),
		isCxx:   true,
	}
)

// SupportedLanguages holds every accepted language name, lowercase.
var SupportedLanguages = mapset.NewSet("c", "cpp", "c++")

// resolveLanguage maps a request language name to its toolchain target.
// Matching is case-insensitive; "cpp" and "c++" are synonyms.
func resolveLanguage(name string) (*language, error) {
	id := strings.ToLower(name)
	if !SupportedLanguages.Contains(id) {
		return nil, errUnsupportedLanguage(name)
	}
	if id == "c" {
		return langC, nil
	}
	return langCpp, nil
}
