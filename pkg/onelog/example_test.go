package onelog_test

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/onelog/onelog-go/pkg/onelog"
)

// ExampleNew demonstrates building a format and classifying lines.
func ExampleNew() {
	f, err := onelog.New(
		`\[(?<level>\w+)\]\s*\[(?<system>\w+)\](?:\s*\[(?<tags>\w+)\])*`,
		`.*`,
		`(?<id>\w+)\s*\{(?:\s*(?<keys>\w+)\s*=\s*(?<values>\"|\w+)\s*;?)*\s*\}`,
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, line := range []string{
		"[INFO] [test] [a] [b] [c] This is a test.",
		"[INFO] [test] [a] myid { k = 1 }",
		"no header at all",
	} {
		switch r := f.Classify(line).(type) {
		case onelog.EventRecord:
			fmt.Printf("event %s/%s %v: %s\n", r.Level, r.System, r.Tags, r.Message)
		case onelog.StatusRecord:
			fmt.Printf("status %s %v\n", r.ID, r.Assignments)
		case onelog.OtherRecord:
			fmt.Printf("other %q\n", r.Message)
		}
	}
	// Output:
	// event INFO/test [a b c]: This is a test.
	// status myid map[k:1]
	// other "no header at all"
}

// ExampleFold demonstrates handling every record kind with Fold.
func ExampleFold() {
	rec := onelog.Default().Classify(`[WARN] [disk] sda1 { used = 91, mount = '/var' }`)

	summary := onelog.Fold(rec,
		func(e onelog.EventRecord) string { return "event: " + e.Message },
		func(s onelog.StatusRecord) string {
			return fmt.Sprintf("status %s: used=%s mount=%s", s.ID, s.Assignments["used"], s.Assignments["mount"])
		},
		func(o onelog.OtherRecord) string { return "other: " + o.Message },
	)
	fmt.Println(summary)
	// Output:
	// status sda1: used=91 mount='/var'
}

// ExampleParseReader demonstrates classifying a stream of lines.
func ExampleParseReader() {
	input := strings.NewReader("[INFO] [net] up\nnoise\n[ERROR] [db] down\n")

	for rec, err := range onelog.ParseReader(context.Background(), input,
		onelog.WithParseExcludeKinds(onelog.KindOther)) {
		if err != nil {
			log.Fatal(err)
		}
		h, _ := onelog.HeaderOf(rec)
		fmt.Println(h.Level, h.System)
	}
	// Output:
	// INFO net
	// ERROR db
}

// ExampleWatcher demonstrates following a log directory.
func ExampleWatcher() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w, err := onelog.NewWatcher(
		onelog.WithLogDir("/var/log/myapp"),
		onelog.WithPollInterval(5*time.Second),
		onelog.WithIncludeKinds(onelog.KindStatus),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()

	records, errs, err := w.Watch(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for {
		select {
		case rec, ok := <-records:
			if !ok {
				return
			}
			if st, ok := rec.(onelog.StatusRecord); ok {
				fmt.Printf("%s: %v\n", st.ID, st.Assignments)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Printf("error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}
