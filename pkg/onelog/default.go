package onelog

import "sync"

// Built-in grammar.
//
// The header is an optional bracketed timestamp, a bracketed level, a
// bracketed system name and any number of bracketed tags:
//
//	[12:30:01] [INFO] [net] [conn] [tls] handshake complete
//
// A status body is an identifier followed by braced assignments separated by
// commas or semicolons. Values are bare words or quoted strings:
//
//	[WARN] [disk] sda1 { used = 91, mount = '/var'; label = "data \"hot\"" }
//
// Anything else after the header is an event message.
const (
	DefaultFilterPattern = `(?:\[(?<timestamp>\d[\d:.\-/ T]*)\]\s*)?` +
		`\[(?<level>\w+)\]\s*` +
		`\[(?<system>[^\]]+)\]` +
		`(?:\s*\[(?<tags>[^\]]*)\])*`

	DefaultEventPattern = `.*?`

	DefaultStatusPattern = `(?<id>[\w.\-]+)\s*\{\s*` +
		`(?:(?<keys>[\w.\-]+)\s*=\s*(?<values>\"|\'|[^\s,;}]+)\s*[,;]?\s*)*` +
		`\}`
)

var defaultFormat = sync.OnceValue(func() *Format {
	return MustNew(DefaultFilterPattern, DefaultEventPattern, DefaultStatusPattern)
})

// Default returns the Format built from the built-in grammar.
// The same instance is returned on every call.
func Default() *Format {
	return defaultFormat()
}
