package cmsclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/cms-client/internal/client"
	cmshttp "github.com/fivetwenty-io/cms-client/internal/http"
	"github.com/fivetwenty-io/cms-client/internal/logger"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
)

// leveledLogger is implemented by loggers that can also drive the
// transport's own logging.
type leveledLogger interface {
	Leveled() *logger.LeveledLogger
}

// New creates a content API client. The config is copied; later changes to
// it do not affect the client.
func New(config *cms.Config) (cms.Client, error) {
	if config == nil {
		return nil, cms.ErrConfigRequired
	}

	normalized := normalize(*config)

	err := normalized.Validate()
	if err != nil {
		return nil, err
	}

	transport, err := newTransport(&normalized)
	if err != nil {
		return nil, err
	}

	return client.New(&normalized, transport), nil
}

// NewWithKeys creates a client for service with read and write keys. Either
// key may be empty; calls needing it report ResultNotConfigured.
func NewWithKeys(service, apiKey, writeAPIKey string) (cms.Client, error) {
	return New(&cms.Config{
		Service:     service,
		APIKey:      apiKey,
		WriteAPIKey: writeAPIKey,
	})
}

// NewWithSchemas creates a client bound to the schemas in schemaFile.
func NewWithSchemas(config *cms.Config, schemaFile string) (cms.Client, error) {
	if config == nil {
		return nil, cms.ErrConfigRequired
	}

	schemas, err := cms.LoadSchemaFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("loading schemas: %w", err)
	}

	withSchemas := *config
	withSchemas.Schemas = schemas

	return New(&withSchemas)
}

func normalize(config cms.Config) cms.Config {
	config.Service = strings.TrimSpace(config.Service)

	host := strings.TrimSpace(config.APIHost)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	config.APIHost = strings.TrimSuffix(host, "/")

	config.BaseURL = strings.TrimSuffix(strings.TrimSpace(config.BaseURL), "/")

	if config.TransportType == "" {
		config.TransportType = cms.TransportRetryable
	}

	return config
}

func newTransport(config *cms.Config) (cms.Transport, error) {
	if config.Transport != nil {
		return config.Transport, nil
	}

	opts := []cmshttp.Option{
		cmshttp.WithDebug(config.Debug),
		cmshttp.WithTimeout(config.HTTPTimeout),
		cmshttp.WithUserAgent(config.UserAgent),
	}

	if config.Logger != nil {
		opts = append(opts, cmshttp.WithLogger(config.Logger))

		if leveled, ok := config.Logger.(leveledLogger); ok && config.Debug {
			opts = append(opts, cmshttp.WithLeveledLogger(leveled.Leveled()))
		}
	}

	switch config.TransportType {
	case cms.TransportRetryable:
		return cmshttp.NewClient(opts...), nil
	case cms.TransportResty:
		return cmshttp.NewRestyTransport(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", cms.ErrUnsupportedTransport, config.TransportType)
	}
}
