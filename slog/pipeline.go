package slog

import (
	"log/slog"
	"time"

	"github.com/poozantata/pagelens"
)

var _ pagelens.Pipeline = (*LoggingPipeline)(nil)

// LoggingPipeline wraps a Pipeline with logging.
type LoggingPipeline struct {
	next   pagelens.Pipeline
	logger *slog.Logger
}

// NewLoggingPipeline creates a new LoggingPipeline.
func NewLoggingPipeline(next pagelens.Pipeline, logger *slog.Logger) *LoggingPipeline {
	return &LoggingPipeline{next: next, logger: logger}
}

// Run delegates to the wrapped pipeline and logs the result shape. Stage
// failures carry the failing stage.
func (p *LoggingPipeline) Run(doc *pagelens.RawDocument) (result *pagelens.PipelineResult, err error) {
	defer func(begin time.Time) {
		args := []any{"duration", time.Since(begin)}
		if doc != nil {
			args = append(args, "url", doc.URL, "bytes", len(doc.HTML))
		}
		if result != nil {
			args = append(args,
				"blocks", len(result.Content.Blocks),
				"links", len(result.Content.Links),
				"contentType", result.Study.ContentType,
			)
		}
		if stage := pagelens.ErrorStage(err); stage != "" {
			args = append(args, "stage", stage)
		}
		logCall(p.logger, err, "pipeline run", args...)
	}(time.Now())
	return p.next.Run(doc)
}
