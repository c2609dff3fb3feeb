package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"verilens/internal/model"
)

// Checker defines the interface for assessing one content item
type Checker interface {
	CheckContent(ctx context.Context, content string) (*model.CheckResult, error)
}

// CheckJob represents one content assessment job
type CheckJob struct {
	Index   int
	Content string
	Checker Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	result, err := j.Checker.CheckContent(ctx, j.Content)
	return &CheckOutcome{
		Index:   j.Index,
		Content: j.Content,
		Result:  result,
		Error:   err,
	}
}

// CheckOutcome represents the result of one content assessment
type CheckOutcome struct {
	Index   int
	Content string
	Result  *model.CheckResult
	Error   error
}

// GetError returns the error from the outcome
func (o *CheckOutcome) GetError() error {
	return o.Error
}

// BatchProcessor assesses multiple content items concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessItems assesses multiple content items concurrently under ctx.
// Outcomes are returned in input order regardless of completion order; items
// dropped by cancellation still get an outcome carrying the context error.
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []string) []*CheckOutcome {
	if len(items) == 0 {
		return []*CheckOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, item := range items {
		job := &CheckJob{
			Index:   i,
			Content: item,
			Checker: b.checker,
		}
		pool.Submit(job)
	}

	outcomes := make([]*CheckOutcome, len(items))
	for _, result := range pool.Wait() {
		outcome := result.(*CheckOutcome)
		outcomes[outcome.Index] = outcome
	}

	for i, outcome := range outcomes {
		if outcome == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			outcomes[i] = &CheckOutcome{Index: i, Content: items[i], Error: err}
		}
	}

	return outcomes
}

// ProcessFile reads content items from a file and assesses them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckOutcome, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	return b.ProcessItems(ctx, items), nil
}

// ReadItemsFromFile reads content items from a file (one per line)
func ReadItemsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		items = append(items, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}
