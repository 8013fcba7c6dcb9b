package moisturelog_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/moisturelog/internal/adapters/memory"
	"github.com/bft-labs/moisturelog/pkg/moisturelog"
)

// replay is a finite byte source, such as a capture of a serial session.
type replay struct{ *strings.Reader }

func (replay) Close() error { return nil }

// ExampleBridge replays a captured session into an in-memory document.
func ExampleBridge() {
	capture := "MOISTURE:42.5,RELAY:1,THRESHOLD:65.0\r\nRELAY:1\r\n"

	b, err := moisturelog.New(
		moisturelog.Config{SyncWindow: -1},
		moisturelog.WithByteSource(replay{strings.NewReader(capture)}),
		moisturelog.WithStorage(memory.NewDocumentStore(nil)),
		moisturelog.WithClock(func() time.Time {
			return time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
		}),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := b.Start(context.Background()); err != nil {
		fmt.Println(err)
		return
	}
	<-b.Done()

	records, _ := b.Records(context.Background())
	for _, r := range records {
		fmt.Println(r.Timestamp, r.Humidity, r.RelayStatus, r.Threshold)
	}
	fmt.Println("rejected:", b.Stats().ParseErrors)

	// Output:
	// 2025-03-14T09:26:53 42.5 ON 65
	// rejected: 1
}
