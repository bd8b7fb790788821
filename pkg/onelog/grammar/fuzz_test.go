package grammar

import "testing"

// FuzzLoadBytes tests LoadBytes with arbitrary input to ensure it never
// panics and only returns documents that pass validation.
func FuzzLoadBytes(f *testing.F) {
	f.Add([]byte("version: 1\nfilter: 'a'\nevent: 'b'\nstatus: 'c'\n"))
	f.Add([]byte("<log><filter>a</filter><event>b</event><status>c</status></log>"))
	f.Add([]byte(""))
	f.Add([]byte("not yaml"))
	f.Add([]byte("version: 999"))
	f.Add([]byte("<"))
	f.Add([]byte{0xff, 0xfe, 0xfd})
	f.Add(make([]byte, MaxGrammarFileSize+1))

	f.Fuzz(func(t *testing.T, data []byte) {
		g, err := LoadBytes(data)

		if (g == nil) != (err != nil) {
			t.Errorf("LoadBytes inconsistent: g=%v, err=%v", g != nil, err)
		}
		if g == nil {
			return
		}
		if g.Version != SupportedVersion {
			t.Errorf("LoadBytes succeeded with unsupported version: %d", g.Version)
		}
		if g.Filter == "" || g.Event == "" || g.Status == "" {
			t.Errorf("LoadBytes succeeded with a missing pattern: %+v", g)
		}
	})
}
