package migrate

import "golang.org/x/mod/semver"

// Schema versions are plain semantic versions ("3.1.0"). golang.org/x/mod
// wants the "v" prefix, so these wrappers add it.

// isValidVersion reports whether s is a well-formed semantic version.
func isValidVersion(s string) bool {
	return s != "" && semver.IsValid("v"+s)
}

// compareVersions orders two semantic versions: -1 if a < b, 0 if equal,
// +1 if a > b.
func compareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}
