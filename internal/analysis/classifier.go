package analysis

// EntityClassifier labels the named entities found in a short string.
// It returns one label per detected entity (e.g. "ORG", "GPE"); nil means none.
// Implementations must be safe to call repeatedly and keep no per-call state.
type EntityClassifier interface {
	EntityLabels(text string) []string
}

// ClassifierFunc adapts a function to EntityClassifier.
type ClassifierFunc func(text string) []string

// EntityLabels calls f(text).
func (f ClassifierFunc) EntityLabels(text string) []string { return f(text) }

// NoEntities is a classifier that never reports an entity.
var NoEntities EntityClassifier = ClassifierFunc(func(string) []string { return nil })

// identifierEntityLabels are the entity types that count as identifier-like.
var identifierEntityLabels = map[string]bool{
	"ORG":          true,
	"ORGANIZATION": true,
	"GPE":          true,
	"PRODUCT":      true,
}
