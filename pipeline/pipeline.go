// Package pipeline sequences sanitizing, extraction, structural analysis
// and classification of a single raw document.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poozantata/pagelens"
	"golang.org/x/net/html"
)

// Ensure Pipeline implements pagelens.Pipeline at compile time.
var _ pagelens.Pipeline = (*Pipeline)(nil)

// Pipeline is safe for concurrent use as long as its stages are: every run
// parses its own trees and shares no state with other runs.
type Pipeline struct {
	Sanitizer  pagelens.Sanitizer
	Extractor  pagelens.ContentExtractor
	Analyzer   pagelens.StructureAnalyzer
	Classifier *pagelens.Classifier
}

// New creates a Pipeline from its stages with the default classifier.
// A nil sanitizer leaves documents untouched.
func New(sanitizer pagelens.Sanitizer, extractor pagelens.ContentExtractor, analyzer pagelens.StructureAnalyzer) *Pipeline {
	return &Pipeline{
		Sanitizer:  sanitizer,
		Extractor:  extractor,
		Analyzer:   analyzer,
		Classifier: pagelens.NewClassifier(),
	}
}

// Run processes doc. Invalid input yields an EINVALID error; a failing or
// panicking stage yields a *pagelens.StageError. No partial result is
// ever returned.
func (p *Pipeline) Run(doc *pagelens.RawDocument) (*pagelens.PipelineResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	contentTree, err := parse(doc.HTML)
	if err != nil {
		return nil, err
	}
	structureTree, err := parse(doc.HTML)
	if err != nil {
		return nil, err
	}

	if p.Sanitizer != nil {
		if err := runStage(pagelens.StageSanitize, func() error {
			p.Sanitizer.Sanitize(contentTree)
			p.Sanitizer.Sanitize(structureTree)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	var content *pagelens.ContentRecord
	if err := runStage(pagelens.StageExtract, func() (err error) {
		content, err = p.Extractor.Extract(contentTree, doc.URL)
		if err == nil && content == nil {
			err = errors.New("extractor returned no record")
		}
		return err
	}); err != nil {
		return nil, err
	}

	var structure *pagelens.StructureRecord
	if err := runStage(pagelens.StageAnalyze, func() (err error) {
		structure, err = p.Analyzer.Analyze(structureTree)
		if err == nil && structure == nil {
			err = errors.New("analyzer returned no record")
		}
		return err
	}); err != nil {
		return nil, err
	}

	classifier := p.Classifier
	if classifier == nil {
		classifier = pagelens.NewClassifier()
	}
	result := &pagelens.PipelineResult{
		Content:   *content,
		Structure: *structure,
	}
	if err := runStage(pagelens.StageClassify, func() error {
		result.Study = classifier.Classify(content)
		result.Hints = pagelens.StudyHintsFor(content, structure)
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func parse(markup string) (*html.Node, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, pagelens.Errorf(pagelens.EINVALID, "unparseable document: %v", err)
	}
	return root, nil
}

// runStage runs fn, tagging any error or panic with the stage name.
func runStage(stage pagelens.Stage, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &pagelens.StageError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := fn(); err != nil {
		return &pagelens.StageError{Stage: stage, Err: err}
	}
	return nil
}
