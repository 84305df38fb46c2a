package lexquery

import (
	"context"
	"time"

	"github.com/lexquery/lexquery/pkg/search"
	"github.com/lexquery/lexquery/pkg/telemetry"
	"github.com/lexquery/lexquery/pkg/types"
)

// Search runs one hybrid query through the engine and records the
// outcome. See search.Engine.Search for the error contract.
func (c *Client) Search(ctx context.Context, q types.Query) (*search.Response, error) {
	start := time.Now()
	resp, err := c.engine.Search(ctx, q)
	c.record(q, resp, err, time.Since(start))
	return resp, err
}

func (c *Client) record(q types.Query, resp *search.Response, err error, elapsed time.Duration) {
	if c.telemetry == nil {
		return
	}

	rec := telemetry.QueryRecord{
		QueryText:      q.Text,
		Court:          q.Court,
		StartDate:      q.StartDate,
		EndDate:        q.EndDate,
		K:              q.K,
		DurationMillis: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if resp != nil {
		rec.ResultCount = len(resp.Results)
		rec.Partial = resp.Partial
		backends := make([]string, len(resp.Failures))
		for i, f := range resp.Failures {
			backends[i] = f.Backend
		}
		rec.FailedBackends = telemetry.JoinBackends(backends)
	}

	if recErr := c.telemetry.Record(rec); recErr != nil {
		c.logger.Warn("failed to record query telemetry", "error", recErr)
	}
}
