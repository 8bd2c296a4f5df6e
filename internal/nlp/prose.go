package nlp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"

	"github.com/KaramelBytes/coexnet/internal/analysis"
)

var _ analysis.EntityClassifier = (*ProseClassifier)(nil)

// ProseClassifier labels entities with the prose named-entity model.
// The model is loaded once and shared by all calls.
type ProseClassifier struct {
	mu    sync.Mutex
	model *prose.Model
}

// NewProseClassifier loads the default prose model.
func NewProseClassifier() (*ProseClassifier, error) {
	doc, err := prose.NewDocument("warm up", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("load entity model: %w", err)
	}
	return &ProseClassifier{model: doc.Model}, nil
}

// EntityLabels returns the label of every entity prose finds in text.
// Model failures yield no labels.
func (c *ProseClassifier) EntityLabels(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.UsingModel(c.model),
	)
	if err != nil {
		return nil
	}
	ents := doc.Entities()
	if len(ents) == 0 {
		return nil
	}
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		out = append(out, e.Label)
	}
	return out
}
