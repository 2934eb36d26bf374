package slog_test

import (
	"errors"
	"testing"

	"github.com/poozantata/pagelens"
	"github.com/poozantata/pagelens/mock"
	plslog "github.com/poozantata/pagelens/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPipeline_Run(t *testing.T) {
	t.Parallel()

	doc := &pagelens.RawDocument{HTML: "<p>hi</p>", URL: "https://example.com"}

	t.Run("logs result shape", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Pipeline{
			RunFn: func(_ *pagelens.RawDocument) (*pagelens.PipelineResult, error) {
				return &pagelens.PipelineResult{
					Content: pagelens.ContentRecord{Blocks: make([]pagelens.ContentBlock, 3)},
					Study:   pagelens.StudyMetadata{ContentType: pagelens.ContentTypeArticle},
				}, nil
			},
		}

		result, err := plslog.NewLoggingPipeline(inner, logger).Run(doc)

		require.NoError(t, err)
		require.NotNil(t, result)
		output := buf.String()
		assert.Contains(t, output, `msg="pipeline run"`)
		assert.Contains(t, output, "url=https://example.com")
		assert.Contains(t, output, "bytes=9")
		assert.Contains(t, output, "blocks=3")
		assert.Contains(t, output, "contentType=article")
	})

	t.Run("logs failing stage", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Pipeline{
			RunFn: func(_ *pagelens.RawDocument) (*pagelens.PipelineResult, error) {
				return nil, &pagelens.StageError{Stage: pagelens.StageClassify, Err: errors.New("boom")}
			},
		}

		_, err := plslog.NewLoggingPipeline(inner, logger).Run(doc)

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "stage=classify")
	})

	t.Run("tolerates nil document", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Pipeline{
			RunFn: func(_ *pagelens.RawDocument) (*pagelens.PipelineResult, error) {
				return nil, pagelens.Errorf(pagelens.EINVALID, "document required")
			},
		}

		_, err := plslog.NewLoggingPipeline(inner, logger).Run(nil)

		require.Error(t, err)
		assert.NotContains(t, buf.String(), "url=")
	})
}
