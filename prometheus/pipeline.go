package prometheus

import (
	"time"

	"github.com/poozantata/pagelens"
)

var _ pagelens.Pipeline = (*Pipeline)(nil)

// Pipeline records run counts, durations and content types.
type Pipeline struct {
	next    pagelens.Pipeline
	metrics *Metrics
}

// NewPipeline wraps next.
func NewPipeline(next pagelens.Pipeline, m *Metrics) *Pipeline {
	return &Pipeline{next: next, metrics: m}
}

func (p *Pipeline) Run(doc *pagelens.RawDocument) (*pagelens.PipelineResult, error) {
	begin := time.Now()
	result, err := p.next.Run(doc)
	p.metrics.PipelineDuration.Observe(time.Since(begin).Seconds())
	p.metrics.PipelineRunsTotal.WithLabelValues(runResult(err)).Inc()
	if result != nil {
		p.metrics.ContentTypesTotal.WithLabelValues(string(result.Study.ContentType)).Inc()
	}
	return result, err
}

func runResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case pagelens.ErrorStage(err) != "":
		return string(pagelens.ErrorStage(err))
	case pagelens.ErrorCode(err) == pagelens.EINVALID:
		return ResultInvalid
	default:
		return ResultError
	}
}
