// Package notify publishes content mutation events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn used to send events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event describes one successful write.
type Event struct {
	Service   string    `json:"service"`
	Endpoint  string    `json:"endpoint"`
	Operation string    `json:"operation"`
	ID        string    `json:"id,omitempty"`
	Status    int       `json:"status"`
	At        time.Time `json:"at"`
}

// Subject returns cms.<service>.<endpoint>.<operation>.
func (e Event) Subject() string {
	return strings.Join([]string{constants.NotifySubjectPrefix, e.Service, e.Endpoint, e.Operation}, ".")
}

// Notifier turns successful writes into events.
type Notifier struct {
	publisher Publisher
	service   string
	logger    cms.Logger
	now       func() time.Time
	closer    func()
}

// New creates a notifier over an existing publisher.
func New(publisher Publisher, service string, logger cms.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		service:   service,
		logger:    logger,
		now:       time.Now,
	}
}

// Connect dials a NATS server and returns a notifier that owns the connection.
func Connect(url, service string, logger cms.Logger) (*Notifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("cms-client"),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	n := New(conn, service, logger)
	n.closer = func() { _ = conn.Drain() }

	return n, nil
}

// Close drains the connection when the notifier owns one.
func (n *Notifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}

// successStatus maps write operations to the status that means success.
var successStatus = map[cms.Operation]int{
	cms.OperationCreate:  constants.StatusCreateOK,
	cms.OperationReplace: constants.StatusReplaceOK,
	cms.OperationUpdate:  constants.StatusUpdateOK,
	cms.OperationDelete:  constants.StatusDeleteOK,
}

// Interceptor returns a response interceptor that publishes an event after
// every successful write. Publishing failures are logged and never fail the call.
func (n *Notifier) Interceptor() cms.ResponseInterceptor {
	return func(ctx context.Context, req *cms.Request, resp *cms.Response) error {
		op := cms.Operation(req.MetadataString(cms.MetadataOperation))

		want, isWrite := successStatus[op]
		if !isWrite || resp.Error != nil || resp.StatusCode != want {
			return nil
		}

		event := Event{
			Service:   n.service,
			Endpoint:  req.MetadataString(cms.MetadataEndpoint),
			Operation: string(op),
			ID:        req.MetadataString(cms.MetadataID),
			Status:    resp.StatusCode,
			At:        n.now().UTC(),
		}

		if event.ID == "" {
			var written cms.WriteResponse
			if json.Unmarshal(resp.Body, &written) == nil {
				event.ID = written.ID
			}
		}

		err := n.Publish(event)
		if err != nil && n.logger != nil {
			n.logger.Warn("Failed to publish mutation event", map[string]interface{}{
				"subject": event.Subject(),
				"error":   err.Error(),
			})
		}

		return nil
	}
}

// Publish sends one event.
func (n *Notifier) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	err = n.publisher.Publish(event.Subject(), data)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", event.Subject(), err)
	}

	return nil
}
