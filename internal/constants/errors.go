package constants

import "errors"

// Configuration errors.
var (
	ErrNoServiceConfigured = errors.New("no service configured, use 'cms config set service <name>' or CMS_SERVICE")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrEmptyKeyValue       = errors.New("key value must not be empty")
	ErrSchemaFileRequired  = errors.New("a schema file is required (use --schema or CMS_SCHEMA)")
)

// Input errors.
var (
	ErrInvalidBodyJSON       = errors.New("body must be a JSON object")
	ErrBodyRequired          = errors.New("a body is required (use --data or --data-file)")
	ErrDirectoryTraversal    = errors.New("path contains directory traversal sequences")
	ErrNotRegularFile        = errors.New("path is not a regular file")
	ErrUnsupportedOutput     = errors.New("unsupported output format")
	ErrConfirmationRequired  = errors.New("refusing to purge without --force")
	ErrPartialBatchFailure   = errors.New("some batch operations failed")
)
