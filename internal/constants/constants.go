package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API location.
const (
	// DefaultAPIHost is the content API domain.
	DefaultAPIHost = "microcms.io"

	// APIBasePath prefixes every endpoint path.
	APIBasePath = "/api/v1/"
)

// Request headers.
const (
	// HeaderAPIKey carries the read key.
	HeaderAPIKey = "X-API-KEY"

	// HeaderGlobalDraftKey carries the elevated draft read key.
	HeaderGlobalDraftKey = "X-GLOBAL-DRAFT-KEY"

	// HeaderWriteAPIKey carries the write key.
	HeaderWriteAPIKey = "X-WRITE-API-KEY"

	// HeaderContentType is the content type header name.
	HeaderContentType = "Content-Type"

	// HeaderUserAgent is the user agent header name.
	HeaderUserAgent = "User-Agent"

	// ContentTypeJSON is sent with every write.
	ContentTypeJSON = "application/json"

	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "cms-client-go"
)

// Success status codes per operation. Replace answers 201 while update
// answers 200; the two are not interchangeable.
const (
	// StatusGetOK is returned by get and list.
	StatusGetOK = 200

	// StatusCreateOK is returned by create.
	StatusCreateOK = 201

	// StatusReplaceOK is returned by replace.
	StatusReplaceOK = 201

	// StatusUpdateOK is returned by update.
	StatusUpdateOK = 200

	// StatusDeleteOK is returned by delete.
	StatusDeleteOK = 202
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the CLI's request timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit caps in-flight requests of batch commands.
	DefaultConcurrencyLimit = 20

	// DefaultPageSize is the page size used by list --all and purge.
	DefaultPageSize = 100

	// StandardPageSize is the default limit of a single list call.
	StandardPageSize = 10
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the indent used by JSON and YAML encoders.
	JSONIndentSize = 2

	// StringTruncationLength limits cell width in tables.
	StringTruncationLength = 60
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// CheckMarkSymbol marks successful rows.
	CheckMarkSymbol = "✓"

	// CrossMarkSymbol marks failed rows.
	CrossMarkSymbol = "✗"
)

// Notification subjects.
const (
	// NotifySubjectPrefix prefixes every mutation subject.
	NotifySubjectPrefix = "cms"
)
