package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/internal/logger"
	"github.com/fivetwenty-io/cms-client/internal/notify"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/fivetwenty-io/cms-client/pkg/cmsclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Viper keys shared by flags, environment variables and the config file.
const (
	KeyConfig         = "config"
	KeyService        = "service"
	KeyAPIKey         = "api_key"
	KeyWriteAPIKey    = "write_api_key"
	KeyGlobalDraftKey = "global_draft_key"
	KeyAPIHost        = "api_host"
	KeyBaseURL        = "base_url"
	KeyOutput         = "output"
	KeyTransport      = "transport"
	KeySchema         = "schema"
	KeyNATSURL        = "nats_url"
	KeyTimeout        = "timeout"
	KeyDebug          = "debug"
)

const dateLayout = "2006-01-02 15:04:05"

// session is a configured client plus the resources a command must release.
type session struct {
	client   cms.Client
	logger   *logger.Logger
	notifier *notify.Notifier
}

func (s *session) Close() {
	if s.notifier != nil {
		s.notifier.Close()
	}

	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// newSession builds a client from the merged flag, environment and file
// configuration.
func newSession() (*session, error) {
	config := loadConfig()
	if config.Service == "" {
		return nil, constants.ErrNoServiceConfigured
	}

	sess := &session{}

	clientConfig := &cms.Config{
		Service:        config.Service,
		APIKey:         config.APIKey,
		WriteAPIKey:    config.WriteAPIKey,
		GlobalDraftKey: config.GlobalDraftKey,
		APIHost:        config.APIHost,
		BaseURL:        config.BaseURL,
		HTTPTimeout:    viper.GetDuration(KeyTimeout),
		Debug:          viper.GetBool(KeyDebug),
		UserAgent:      constants.DefaultUserAgent + "-cli",
		TransportType:  cms.TransportType(config.Transport),
		Interceptors:   cms.NewInterceptorChain(),
	}

	if clientConfig.Debug {
		sess.logger = logger.New("debug", os.Stderr)
		clientConfig.Logger = sess.logger
		clientConfig.Interceptors.AddRequestInterceptor(cms.LoggingInterceptor(sess.logger))
		clientConfig.Interceptors.AddResponseInterceptor(cms.LoggingResponseInterceptor(sess.logger))
	}

	if config.NATSURL != "" {
		notifyLogger := sess.logger
		if notifyLogger == nil {
			notifyLogger = logger.Nop()
		}

		notifier, err := notify.Connect(config.NATSURL, config.Service, notifyLogger)
		if err != nil {
			return nil, err
		}

		sess.notifier = notifier
		clientConfig.Interceptors.AddResponseInterceptor(notifier.Interceptor())
	}

	var err error

	if config.Schema != "" {
		sess.client, err = cmsclient.NewWithSchemas(clientConfig, config.Schema)
	} else {
		sess.client, err = cmsclient.New(clientConfig)
	}

	if err != nil {
		sess.Close()

		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return sess, nil
}

// renderOutput writes data in the configured output format. table renders the
// table form.
func renderOutput(w io.Writer, data interface{}, table func(w io.Writer) error) error {
	output := viper.GetString(KeyOutput)

	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(data)
	case constants.FormatTable, "":
		return table(w)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, output)
	}
}

// renderStatus prints the status-aware view of a write and converts a
// non-success result into an error.
func renderStatus[T any](cmd *cobra.Command, verb string, res cms.Result[T]) error {
	if status, ok := res.StatusAware(); ok {
		err := renderOutput(cmd.OutOrStdout(), status, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header("Property", "Value")
			_ = table.Append("Status", strconv.Itoa(status.Code))

			if res.OK() {
				_ = table.Append("Result", fmt.Sprint(status.Value))
			} else if status.Error != nil && status.Error.Message != "" {
				_ = table.Append("Error", status.Error.Message)
			}

			return table.Render()
		})
		if err != nil {
			return err
		}
	}

	if !res.OK() {
		return fmt.Errorf("failed to %s content: %w", verb, res.Error())
	}

	return nil
}

// renderRecord prints one record as a field/value table or a document.
func renderRecord(w io.Writer, record cms.Record) error {
	return renderOutput(w, record, func(w io.Writer) error {
		names := make([]string, 0, len(record))
		for name := range record {
			names = append(names, name)
		}

		sort.Strings(names)

		table := tablewriter.NewWriter(w)
		table.Header("Field", "Value")

		for _, name := range names {
			_ = table.Append(name, formatValue(record[name]))
		}

		return table.Render()
	})
}

// renderList prints a page of records.
func renderList(w io.Writer, page *cms.ListResult) error {
	return renderOutput(w, page, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Published", "Updated", "Content")

		for _, record := range page.Contents {
			content := record.Without(cms.FieldID, cms.FieldCreatedAt, cms.FieldUpdatedAt, cms.FieldPublishedAt, cms.FieldRevisedAt)
			_ = table.Append(record.ID(), formatTime(record.PublishedAt()), formatTime(record.UpdatedAt()), formatValue(content))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		_, err = fmt.Fprintf(w, "\nShowing %d of %d (offset %d)\n", len(page.Contents), page.TotalCount, page.Offset)

		return err
	})
}

// formatValue renders a field value for a table cell.
func formatValue(value interface{}) string {
	var text string

	switch v := value.(type) {
	case nil:
		text = constants.NotAvailable
	case string:
		text = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			text = fmt.Sprint(v)
		} else {
			text = string(data)
		}
	}

	if len(text) > constants.StringTruncationLength {
		return text[:constants.StringTruncationLength-3] + "..."
	}

	return text
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Local().Format(dateLayout)
}

// formatKind renders a result kind for humans, e.g. "Not Configured".
func formatKind(kind cms.ResultKind) string {
	return cases.Title(language.English).String(strings.ReplaceAll(kind.String(), "_", " "))
}

// readBody loads a JSON object from --data, or from --data-file which may be
// JSON or YAML ("-" reads stdin).
func readBody(stdin io.Reader, data, dataFile string) (cms.Record, error) {
	var (
		raw    []byte
		isYAML bool
	)

	switch {
	case dataFile == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read body from stdin: %w", err)
		}

		raw = content
	case dataFile != "":
		content, err := readDataFile(dataFile)
		if err != nil {
			return nil, err
		}

		raw = content
		ext := strings.ToLower(filepath.Ext(dataFile))
		isYAML = ext == ".yaml" || ext == ".yml"
	case data != "":
		raw = []byte(data)
	default:
		return nil, constants.ErrBodyRequired
	}

	var body cms.Record

	var err error
	if isYAML {
		err = yaml.Unmarshal(raw, &body)
	} else {
		err = json.Unmarshal(raw, &body)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidBodyJSON, err)
	}

	if body == nil {
		return nil, constants.ErrInvalidBodyJSON
	}

	return body, nil
}

func readDataFile(path string) ([]byte, error) {
	if strings.Contains(path, "..") {
		return nil, fmt.Errorf("%w: %s", constants.ErrDirectoryTraversal, path)
	}

	cleaned := filepath.Clean(path)

	info, err := os.Stat(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to access data file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	content, err := os.ReadFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	return content, nil
}

// addBodyFlags registers --data and --data-file.
func addBodyFlags(cmd *cobra.Command, data, dataFile *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "JSON object to send")
	cmd.Flags().StringVarP(dataFile, "data-file", "f", "", "file holding the body (JSON or YAML, - for stdin)")
}
