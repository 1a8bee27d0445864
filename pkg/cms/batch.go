package cms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBatchConcurrency caps in-flight requests of a BatchExecutor.
const DefaultBatchConcurrency = 20

// DefaultBatchTimeout bounds each batch operation.
const DefaultBatchTimeout = 30 * time.Second

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Type     Operation
	Endpoint string
	RecordID string
	Data     Record
	Options  *QueryOptions
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID         string
	Type       Operation
	Kind       ResultKind
	Success    bool
	StatusCode int
	Data       interface{}
	Error      error
	Duration   time.Duration
}

// BatchExecutor executes batch operations.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
	limiter     *rate.Limiter
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     DefaultBatchTimeout,
	}
}

// SetTimeout sets the timeout for batch operations.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// SetRateLimit caps how many operations start per second. Zero or less removes the cap.
func (b *BatchExecutor) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		b.limiter = nil

		return
	}

	b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Execute runs a batch of operations. Results are returned in input order.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) []BatchResult {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()

			var result *BatchResult

			if err := b.wait(opCtx); err != nil {
				result = &BatchResult{
					ID:    operation.ID,
					Type:  operation.Type,
					Kind:  ResultTransportError,
					Error: fmt.Errorf("waiting for rate limiter: %w", err),
				}
			} else {
				result = b.executeOperation(opCtx, operation)
			}

			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results
}

// DeleteAll builds and runs delete operations for ids.
func (b *BatchExecutor) DeleteAll(ctx context.Context, endpoint string, ids []string) []BatchResult {
	operations := make([]BatchOperation, len(ids))
	for i, id := range ids {
		operations[i] = BatchOperation{ID: id, Type: OperationDelete, Endpoint: endpoint, RecordID: id}
	}

	return b.Execute(ctx, operations)
}

func (b *BatchExecutor) wait(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}

	return b.limiter.Wait(ctx)
}

// executeOperation executes a single operation.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	switch operation.Type {
	case OperationGet:
		return batchResult(operation, b.client.Get(ctx, operation.Endpoint, operation.RecordID, operation.Options))
	case OperationList:
		return batchResult(operation, b.client.List(ctx, operation.Endpoint, operation.Options))
	case OperationCreate:
		if operation.Data == nil {
			return invalidBatchData(operation)
		}

		return batchResult(operation, b.client.Create(ctx, operation.Endpoint, operation.Data))
	case OperationReplace:
		if operation.Data == nil {
			return invalidBatchData(operation)
		}

		return batchResult(operation, b.client.Replace(ctx, operation.Endpoint, operation.RecordID, operation.Data))
	case OperationUpdate:
		if operation.Data == nil || operation.RecordID == "" {
			return invalidBatchData(operation)
		}

		return batchResult(operation, b.client.Update(ctx, operation.Endpoint, operation.RecordID, operation.Data))
	case OperationDelete:
		if operation.RecordID == "" {
			return invalidBatchData(operation)
		}

		return batchResult(operation, b.client.Delete(ctx, operation.Endpoint, operation.RecordID))
	default:
		return &BatchResult{
			ID:    operation.ID,
			Type:  operation.Type,
			Kind:  ResultRejected,
			Error: fmt.Errorf("%w: %s", ErrUnsupportedOperation, operation.Type),
		}
	}
}

func invalidBatchData(operation BatchOperation) *BatchResult {
	return &BatchResult{
		ID:    operation.ID,
		Type:  operation.Type,
		Kind:  ResultRejected,
		Error: fmt.Errorf("%w %s", ErrInvalidOperationData, operation.Type),
	}
}

func batchResult[T any](operation BatchOperation, res Result[T]) *BatchResult {
	result := &BatchResult{
		ID:         operation.ID,
		Type:       operation.Type,
		Kind:       res.Kind,
		Success:    res.OK(),
		StatusCode: res.StatusCode,
		Error:      res.Error(),
	}

	if res.OK() {
		result.Data = res.Value
	}

	return result
}
