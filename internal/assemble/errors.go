package assemble

import "errors"

var (
	// ErrEmptySection means the manifest section exists but lists no
	// bitcode files. Distinct from elfsec.ErrSectionNotFound.
	ErrEmptySection = errors.New("bitcode manifest section is empty")

	// ErrMissingEntry means a path listed in the manifest does not exist.
	// Fatal in the module path, where linking over a gap would silently
	// produce a broken module.
	ErrMissingEntry = errors.New("bitcode file listed in manifest does not exist")
)
