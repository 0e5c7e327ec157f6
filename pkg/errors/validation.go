package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ManifestFilename is the name every package manifest must have.
const ManifestFilename = "Cargo.toml"

// validateName applies the checks shared by package and target names.
// Names become file names of build artifacts, so anything that could
// escape the output directory is rejected.
func validateName(code Code, kind, name string) error {
	if name == "" {
		return New(code, "%s name cannot be empty", kind)
	}

	if len(name) > 256 {
		return New(code, "%s name too long (max 256 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(code, "%s name contains invalid control characters", kind)
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(code, "%s name contains invalid characters: %q", kind, pattern)
		}
	}

	return nil
}

// ValidatePackageName validates a package name for safety:
//   - No empty names
//   - No control characters
//   - No path traversal sequences or separators
//   - Maximum length of 256 characters
//
// Anything else is accepted, including leading digits and dots.
func ValidatePackageName(name string) error {
	return validateName(ErrCodeInvalidPackage, "package", name)
}

// ValidateTargetName validates the name of a build target. Target names
// come from the manifest or from file stems, so they may start with a digit,
// but they must still be safe to use as an artifact file name.
func ValidateTargetName(name string) error {
	return validateName(ErrCodeInvalidManifest, "target", name)
}

// ValidateManifestPath validates a --manifest-path style argument.
// It must point at a file named Cargo.toml.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "manifest path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "manifest path contains invalid characters")
		}
	}

	if filepath.Base(path) != ManifestFilename {
		return New(ErrCodeInvalidPath, "the manifest-path must be a path to a %s file", ManifestFilename)
	}

	return nil
}
