package client

import (
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/cms-client/pkg/cms"
)

// toResult maps a transport outcome to a tagged result. Only the exact
// success status decodes the body; any other status is a failure carrying
// the API's error payload.
func toResult[T any](resp *cms.Response, err error, successStatus int, decode func([]byte) (T, error)) cms.Result[T] {
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		return cms.TransportError[T](status, err)
	}

	if resp.StatusCode != successStatus {
		return cms.Failure[T](resp.StatusCode, resp.Body)
	}

	value, err := decode(resp.Body)
	if err != nil {
		return cms.TransportError[T](resp.StatusCode, err)
	}

	return cms.Success(resp.StatusCode, value, resp.Body)
}

func decodeRecord(body []byte) (cms.Record, error) {
	var rec cms.Record

	err := json.Unmarshal(body, &rec)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing record: %w", cms.ErrMalformedResponse, err)
	}

	if rec == nil {
		return nil, fmt.Errorf("%w: record body is null", cms.ErrMalformedResponse)
	}

	return rec, nil
}

func decodeList(body []byte) (cms.ListResult, error) {
	var list cms.ListResult

	err := json.Unmarshal(body, &list)
	if err != nil {
		return cms.ListResult{}, fmt.Errorf("%w: parsing list: %w", cms.ErrMalformedResponse, err)
	}

	if list.Contents == nil {
		list.Contents = []cms.Record{}
	}

	return list, nil
}

func decodeWriteID(body []byte) (string, error) {
	var written cms.WriteResponse

	err := json.Unmarshal(body, &written)
	if err != nil {
		return "", fmt.Errorf("%w: parsing write response: %w", cms.ErrMalformedResponse, err)
	}

	if written.ID == "" {
		return "", fmt.Errorf("%w: write response has no id", cms.ErrMalformedResponse)
	}

	return written.ID, nil
}

func deleted([]byte) (bool, error) {
	return true, nil
}
