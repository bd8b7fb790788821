// Package grammar loads log format grammars from YAML or XML documents and
// compiles them into onelog Formats.
package grammar

import "github.com/onelog/onelog-go/pkg/onelog"

// Grammar represents a grammar document: the three pattern texts of a
// onelog.Format plus metadata.
//
// Example YAML document:
//
//	version: 1
//	name: service
//	filter: '\[(?<level>\w+)\]\s*\[(?<system>\w+)\](?:\s*\[(?<tags>\w+)\])*'
//	event: '.*?'
//	status: '(?<id>\w+)\s*\{(?:\s*(?<keys>\w+)\s*=\s*(?<values>\"|\w+)\s*[,;]?)*\s*\}'
//
// Example XML document (the root element name is not significant):
//
//	<format name="service">
//	  <filter>\[(?&lt;level&gt;\w+)\]\s*\[(?&lt;system&gt;\w+)\]</filter>
//	  <event>.*?</event>
//	  <status>(?&lt;id&gt;\w+)\s*\{\s*\}</status>
//	</format>
type Grammar struct {
	// Version is the document format version. Currently only version 1 is
	// supported. XML documents may omit it.
	Version int `yaml:"version" xml:"version,attr"`

	// Name is an optional label used in log messages and errors.
	Name string `yaml:"name,omitempty" xml:"name,attr,omitempty"`

	// Filter matches the header at the start of a line.
	Filter string `yaml:"filter" xml:"filter"`

	// Event matches a free-text body at the end of a line.
	Event string `yaml:"event" xml:"event"`

	// Status matches an identifier and assignments at the end of a line.
	Status string `yaml:"status" xml:"status"`
}

// Default returns the built-in grammar.
func Default() Grammar {
	return Grammar{
		Version: SupportedVersion,
		Name:    "default",
		Filter:  onelog.DefaultFilterPattern,
		Event:   onelog.DefaultEventPattern,
		Status:  onelog.DefaultStatusPattern,
	}
}
