package onelog

// Classifier is the interface for anything that turns a log line into a Record.
// Format is the standard implementation.
type Classifier interface {
	// Classify classifies a single line. Implementations must be total:
	// unrecognized lines yield an OtherRecord holding the line.
	Classify(line string) Record
}

// ClassifierFunc is an adapter to allow ordinary functions to be used as Classifiers.
type ClassifierFunc func(line string) Record

// Classify implements the Classifier interface.
func (f ClassifierFunc) Classify(line string) Record {
	return f(line)
}

// Chain combines multiple classifiers. The first classifier that produces an
// EventRecord or StatusRecord wins; if none does, the line is returned as an
// OtherRecord.
//
// Chain is useful when one stream carries lines written in several grammars.
type Chain struct {
	Classifiers []Classifier
}

// Classify implements the Classifier interface.
func (c *Chain) Classify(line string) Record {
	for _, cl := range c.Classifiers {
		// Skip nil classifiers
		if cl == nil {
			continue
		}
		rec := cl.Classify(line)
		if rec != nil && rec.Kind() != KindOther {
			return rec
		}
	}
	return OtherRecord{Message: line}
}

// Ensure Format and Chain implement Classifier.
var (
	_ Classifier = (*Format)(nil)
	_ Classifier = (*Chain)(nil)
)
