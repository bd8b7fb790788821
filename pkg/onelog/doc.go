// Package onelog classifies free-form log lines against a grammar of three
// patterns and extracts structured fields from them.
//
// A line is classified into exactly one of three records:
//   - [EventRecord]: a header followed by a free-text message
//   - [StatusRecord]: a header followed by an identifier and key/value assignments
//   - [OtherRecord]: anything else, holding the line unchanged
//
// # Grammars
//
// A [Format] is built from a filter pattern, matched against the header at
// the start of a line, and an event and a status pattern, matched against the
// body at its end. Patterns use .NET-style regular expressions with named
// groups (timestamp, level, system, tags, message, id, keys, values). The
// shorthand \" and \' stands for a complete double- or single-quoted string
// literal; see [Expand].
//
//	f, err := onelog.New(
//	    `\[(?<level>\w+)\]\s*\[(?<system>\w+)\](?:\s*\[(?<tags>\w+)\])*`,
//	    `.*`,
//	    `(?<id>\w+)\s*\{(?:\s*(?<keys>\w+)\s*=\s*(?<values>\"|\w+)\s*;?)*\s*\}`,
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	switch r := f.Classify(line).(type) {
//	case onelog.EventRecord:
//	    fmt.Printf("%s/%s: %s\n", r.Level, r.System, r.Message)
//	case onelog.StatusRecord:
//	    fmt.Printf("%s %v\n", r.ID, r.Assignments)
//	case onelog.OtherRecord:
//	    fmt.Println(r.Message)
//	}
//
// [Default] returns a Format for a built-in bracketed grammar. Grammars can
// also be loaded from YAML or XML documents with the [grammar] subpackage.
//
// # Reading Logs
//
// [ParseReader], [ParseFile] and [ParseFiles] classify whole inputs and
// return iterators:
//
//	for rec, err := range onelog.ParseFile(ctx, "app.log") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(rec.Kind())
//	}
//
// A [Watcher] follows the newest file in a log directory, switches to newer
// files as they appear, and delivers records on a channel:
//
//	w, err := onelog.NewWatcher(onelog.WithLogDir("/var/log/myapp"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	records, errs, err := w.Watch(ctx)
//
// # Concurrency
//
// A Format is immutable once built and safe for concurrent use.
package onelog
