package onelog

// compiledFilter decides which record kinds are passed on.
// Exclude takes precedence over include. An empty include set allows all kinds.
type compiledFilter struct {
	include map[Kind]struct{}
	exclude map[Kind]struct{}
}

func newCompiledFilter(include, exclude []Kind) *compiledFilter {
	f := &compiledFilter{}
	if len(include) > 0 {
		f.include = make(map[Kind]struct{}, len(include))
		for _, k := range include {
			f.include[k] = struct{}{}
		}
	}
	if len(exclude) > 0 {
		f.exclude = make(map[Kind]struct{}, len(exclude))
		for _, k := range exclude {
			f.exclude[k] = struct{}{}
		}
	}
	return f
}

// Allows reports whether records of kind k pass the filter.
func (f *compiledFilter) Allows(k Kind) bool {
	if f == nil {
		return true
	}
	if _, excluded := f.exclude[k]; excluded {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	_, included := f.include[k]
	return included
}
