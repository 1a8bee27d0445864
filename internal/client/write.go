package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
)

// Create implements cms.Client.Create.
func (c *Client) Create(ctx context.Context, endpoint string, params cms.Record) cms.Result[string] {
	return c.write(ctx, cms.OperationCreate, http.MethodPost, endpoint, "", params, constants.StatusCreateOK)
}

// Replace implements cms.Client.Replace. An empty id posts to the collection
// URL and lets the server assign one.
func (c *Client) Replace(ctx context.Context, endpoint, id string, params cms.Record) cms.Result[string] {
	return c.write(ctx, cms.OperationReplace, http.MethodPut, endpoint, id, params, constants.StatusReplaceOK)
}

// Update implements cms.Client.Update.
func (c *Client) Update(ctx context.Context, endpoint, id string, params cms.Record) cms.Result[string] {
	return c.write(ctx, cms.OperationUpdate, http.MethodPatch, endpoint, id, params, constants.StatusUpdateOK)
}

// Delete implements cms.Client.Delete.
func (c *Client) Delete(ctx context.Context, endpoint, id string) cms.Result[bool] {
	err := c.checkWrite(cms.OperationDelete, endpoint, id, nil)
	if err != nil {
		return rejectWrite[bool](c, cms.OperationDelete, endpoint, err)
	}

	req := newRequest(http.MethodDelete, c.endpointURL(endpoint, id, nil), c.writeHeaders(), nil,
		cms.OperationDelete, endpoint, id)

	resp, err := c.send(ctx, req)

	return toResult(resp, err, constants.StatusDeleteOK, deleted)
}

func (c *Client) write(
	ctx context.Context,
	op cms.Operation,
	method, endpoint, id string,
	params cms.Record,
	successStatus int,
) cms.Result[string] {
	err := c.checkWrite(op, endpoint, id, params)
	if err != nil {
		return rejectWrite[string](c, op, endpoint, err)
	}

	// The id travels in the path, never in the body.
	body, err := json.Marshal(params.Without(cms.FieldID))
	if err != nil {
		return cms.Rejected[string](fmt.Errorf("%w: encoding body: %w", cms.ErrInvalidOperationData, err))
	}

	req := newRequest(method, c.endpointURL(endpoint, id, nil), c.writeHeaders(), body, op, endpoint, id)

	resp, err := c.send(ctx, req)

	return toResult(resp, err, successStatus, decodeWriteID)
}

// checkWrite validates a write before any I/O.
func (c *Client) checkWrite(op cms.Operation, endpoint, id string, params cms.Record) error {
	if endpoint == "" {
		return cms.ErrEndpointRequired
	}

	if c.writeAPIKey == "" {
		return cms.ErrWriteKeyNotConfigured
	}

	if (op == cms.OperationUpdate || op == cms.OperationDelete) && id == "" {
		return fmt.Errorf("%w: %s needs a record id", cms.ErrInvalidOperationData, op)
	}

	schema, err := c.schemaFor(endpoint)
	if err != nil || schema == nil || op == cms.OperationDelete {
		return err
	}

	return schema.ValidateBody(op, params)
}

func rejectWrite[T any](c *Client, op cms.Operation, endpoint string, err error) cms.Result[T] {
	c.debugLog("Request not sent", map[string]interface{}{
		"operation": string(op),
		"endpoint":  endpoint,
		"error":     err.Error(),
	})

	if errors.Is(err, cms.ErrWriteKeyNotConfigured) {
		return cms.NotConfigured[T](err)
	}

	return cms.Rejected[T](err)
}
