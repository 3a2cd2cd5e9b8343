package model

import (
	"path"
	"strings"

	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// ModelFileExt is the only accepted upload extension.
const ModelFileExt = ".ifc"

// LocatorScheme prefixes storage locators persisted on projects.
const LocatorScheme = "r2://"

// ValidateModelFile rejects anything that is not a non-empty .ifc file within maxBytes.
// It runs before any storage write.
func ValidateModelFile(name string, size, maxBytes int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ValidationField("file", "No file provided")
	}
	if base := path.Base(strings.ReplaceAll(name, "\\", "/")); base != name || base == "." || base == ".." {
		return apperrors.ValidationField("file", "File name must not contain a path")
	}
	if !strings.EqualFold(path.Ext(name), ModelFileExt) {
		return apperrors.ValidationField("file", "Only .ifc files are accepted")
	}
	if size <= 0 {
		return apperrors.ValidationField("file", "File is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return apperrors.Validationf("File exceeds the %d byte upload limit", maxBytes)
	}
	return nil
}

// ProjectNameFromFile strips a trailing .ifc (any case).
func ProjectNameFromFile(name string) string {
	if len(name) >= len(ModelFileExt) && strings.EqualFold(name[len(name)-len(ModelFileExt):], ModelFileExt) {
		return name[:len(name)-len(ModelFileExt)]
	}
	return name
}

// ObjectKey is where a project's model file lives in the bucket.
func ObjectKey(projectID, filename string) string {
	return "ifc/" + projectID + "/" + filename
}

// Locator turns an object key into the persisted file URL.
func Locator(key string) string {
	return LocatorScheme + key
}

// KeyFromLocator reverses Locator. ok is false when the value is not a storage locator.
func KeyFromLocator(locator string) (string, bool) {
	key, ok := strings.CutPrefix(locator, LocatorScheme)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
