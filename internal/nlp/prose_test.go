package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProseClassifier(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the entity model")
	}
	c, err := NewProseClassifier()
	require.NoError(t, err)

	assert.Nil(t, c.EntityLabels("   "))
	assert.NotPanics(t, func() {
		for _, s := range []string{"TP53", "Goldman Sachs is based in New York", "12.5", "gene"} {
			for _, l := range c.EntityLabels(s) {
				assert.NotEmpty(t, l)
			}
		}
	})
}
