package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
)

// Get implements cms.Client.Get.
func (c *Client) Get(ctx context.Context, endpoint, id string, opts *cms.QueryOptions) cms.Result[cms.Record] {
	err := c.checkRead(endpoint, opts)
	if err != nil {
		return rejectRead[cms.Record](c, cms.OperationGet, endpoint, err)
	}

	req := newRequest(http.MethodGet, c.endpointURL(endpoint, id, opts), c.readHeaders(opts), nil,
		cms.OperationGet, endpoint, id)

	resp, err := c.send(ctx, req)

	return toResult(resp, err, constants.StatusGetOK, decodeRecord)
}

// List implements cms.Client.List.
func (c *Client) List(ctx context.Context, endpoint string, opts *cms.QueryOptions) cms.Result[cms.ListResult] {
	err := c.checkRead(endpoint, opts)
	if err != nil {
		return rejectRead[cms.ListResult](c, cms.OperationList, endpoint, err)
	}

	req := newRequest(http.MethodGet, c.endpointURL(endpoint, "", opts), c.readHeaders(opts), nil,
		cms.OperationList, endpoint, "")

	resp, err := c.send(ctx, req)

	return toResult(resp, err, constants.StatusGetOK, decodeList)
}

// checkRead validates a read before any I/O.
func (c *Client) checkRead(endpoint string, opts *cms.QueryOptions) error {
	if endpoint == "" {
		return cms.ErrEndpointRequired
	}

	if c.apiKey == "" {
		return cms.ErrReadKeyNotConfigured
	}

	schema, err := c.schemaFor(endpoint)
	if err != nil || schema == nil {
		return err
	}

	fields, ok := opts.Get(cms.OptionFields)
	if !ok {
		return nil
	}

	return schema.ValidateFields(fieldNames(fields))
}

func rejectRead[T any](c *Client, op cms.Operation, endpoint string, err error) cms.Result[T] {
	c.debugLog("Request not sent", map[string]interface{}{
		"operation": string(op),
		"endpoint":  endpoint,
		"error":     err.Error(),
	})

	if errors.Is(err, cms.ErrReadKeyNotConfigured) {
		return cms.NotConfigured[T](err)
	}

	return cms.Rejected[T](err)
}

// fieldNames normalizes a fields option value to a name list.
func fieldNames(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}

		return strings.Split(v, ",")
	case []any:
		names := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				names = append(names, s)
			}
		}

		return names
	default:
		return nil
	}
}
