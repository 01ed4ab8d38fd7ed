// Package ingest feeds the session store from an event source: the
// stdin NDJSON pipe a producer writes to, or a torchlit broker
// WebSocket stream. Sources run in their own goroutine and only touch
// shared state through Store.Apply.
package ingest

import (
	"bufio"
	"io"
	"strings"

	"github.com/ChanLumerico/torchlit/internal/protocol"
	"github.com/ChanLumerico/torchlit/internal/session"
)

// maxLineBytes bounds a single event line. Metric maps are small; one
// megabyte leaves generous headroom.
const maxLineBytes = 1 << 20

// LogFunc receives ingest diagnostics for the debug overlay. It may be
// nil. Implementations must be safe to call from the ingest goroutine.
type LogFunc func(kind, message string)

// Run consumes r line by line until end of input, applying every
// decoded event to the store. Lines that are blank or fail to decode
// are skipped; producer noise never stops ingestion. When the stream
// ends the session is marked done. Run blocks and is meant to be
// launched as a goroutine.
func Run(r io.Reader, store *session.Store, logf LogFunc) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ev, ok := protocol.Decode(line)
		if !ok {
			if logf != nil {
				logf("drop", truncate(line, 120))
			}
			continue
		}
		store.Apply(ev)
	}

	if logf != nil {
		if err := sc.Err(); err != nil {
			logf("err", "event stream: "+err.Error())
		} else {
			logf("eof", "event stream closed")
		}
	}
	store.SetDone()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
