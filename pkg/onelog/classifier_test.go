package onelog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onelog/onelog-go/pkg/onelog"
)

func TestClassifierFunc(t *testing.T) {
	var cl onelog.Classifier = onelog.ClassifierFunc(func(line string) onelog.Record {
		return onelog.EventRecord{Message: strings.ToUpper(line)}
	})

	assert.Equal(t, onelog.EventRecord{Message: "HELLO"}, cl.Classify("hello"))
}

func TestChain(t *testing.T) {
	// Lines of the form "name: text" with no brackets.
	colon, err := onelog.New(`(?<system>\w+):`, `.*`, `(?<id>\w+)\s*\{\s*\}`)
	require.NoError(t, err)

	chain := &onelog.Chain{Classifiers: []onelog.Classifier{nil, onelog.Default(), colon}}

	tests := []struct {
		name  string
		input string
		kind  onelog.Kind
		check func(t *testing.T, rec onelog.Record)
	}{
		{
			name:  "first classifier wins",
			input: "[INFO] [net] up",
			kind:  onelog.KindEvent,
			check: func(t *testing.T, rec onelog.Record) {
				assert.Equal(t, "net", rec.(onelog.EventRecord).System)
			},
		},
		{
			name:  "falls through to second",
			input: "db: ready",
			kind:  onelog.KindEvent,
			check: func(t *testing.T, rec onelog.Record) {
				ev := rec.(onelog.EventRecord)
				assert.Equal(t, "db", ev.System)
				assert.Equal(t, "ready", ev.Message)
			},
		},
		{
			name:  "nothing matches",
			input: "!!! nothing",
			kind:  onelog.KindOther,
			check: func(t *testing.T, rec onelog.Record) {
				assert.Equal(t, onelog.OtherRecord{Message: "!!! nothing"}, rec)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := chain.Classify(tt.input)
			require.Equal(t, tt.kind, rec.Kind())
			tt.check(t, rec)
		})
	}
}

func TestChain_Empty(t *testing.T) {
	var chain onelog.Chain
	assert.Equal(t, onelog.OtherRecord{Message: "x"}, chain.Classify("x"))
}

func TestChain_NilRecordSkipped(t *testing.T) {
	chain := &onelog.Chain{Classifiers: []onelog.Classifier{
		onelog.ClassifierFunc(func(string) onelog.Record { return nil }),
		onelog.ClassifierFunc(func(line string) onelog.Record { return onelog.EventRecord{Message: line} }),
	}}
	assert.Equal(t, onelog.EventRecord{Message: "x"}, chain.Classify("x"))
}
