// Result collector stores measurement data broadcast by the picostat API.
// It is the only process that writes to the result database.
package main

import (
	"log"
	"os"
	"time"

	"github.com/open-electrochem/picostat/pkg/config"
	"github.com/open-electrochem/picostat/pkg/livedata"
	"github.com/open-electrochem/picostat/pkg/resultdb"
)

// Samples are buffered per run and only flushed once the run summary
// arrives, so replayed runs can be dropped whole on a checksum match.
var pendingSamples = make(map[string][]*resultdb.ResultDbSample)

func main() {
	// Initialize database
	resultdb.InitializeDatabase()

	// Load config, allow env var override for the API host
	if err := config.LoadResultCollectorConfig(); err != nil {
		log.Fatalf("Failed to load result collector config: %v", err)
	}
	host := os.Getenv("PICOSTAT_API_HOST")
	if host == "" {
		host = config.ActiveResultCollectorConfig.PicostatAPIHost
	}

	// Subscribe to websocket with revive
	livedata.StartListener(host, handleMessage)
}

func handleMessage(msg *livedata.Message) {
	switch msg.Kind {
	case livedata.KindSample:
		bufferSample(msg)
	case livedata.KindRun:
		storeRun(msg)
	}
}

func bufferSample(msg *livedata.Message) {
	if msg.Sample == nil {
		return
	}
	for col, v := range msg.Sample.Values {
		pendingSamples[msg.RunID] = append(pendingSamples[msg.RunID], &resultdb.ResultDbSample{
			RunUID:   msg.RunID,
			CurveIdx: msg.Sample.Curve,
			RowIdx:   msg.Sample.Row,
			ColIdx:   col,
			VarID:    v.TypeID,
			Name:     v.Name,
			Unit:     v.Unit,
			Value:    v.Value,
			Text:     v.Text,
		})
	}
}

func storeRun(msg *livedata.Message) {
	samples := pendingSamples[msg.RunID]
	delete(pendingSamples, msg.RunID)
	if msg.Run == nil {
		return
	}

	// Skip runs we already stored. The API re-sends the latest run summary
	// to every new subscriber, so duplicates are routine here.
	exists, err := resultdb.HasRunWithChecksum(msg.Run.Checksum)
	if err != nil {
		log.Printf("Failed to check for existing run %s: %v", msg.RunID, err)
		return
	}
	if exists {
		log.Printf("Run %s already stored, skipping", msg.RunID)
		return
	}

	run := &resultdb.ResultDbRun{
		RunUID:     msg.RunID,
		Technique:  msg.Run.Technique,
		State:      msg.Run.State,
		LineCount:  msg.Run.Lines,
		CurveCount: msg.Run.Curves,
		PointCount: msg.Run.Points,
		Checksum:   msg.Run.Checksum,
		StartedAt:  parseTimestampOrZero(msg.Run.StartedAt),
		FinishedAt: parseTimestampOrZero(msg.Run.FinishedAt),
	}
	if err := resultdb.InsertRun(run); err != nil {
		log.Printf("Failed to store run %s: %v", msg.RunID, err)
		return
	}
	for _, sample := range samples {
		if err := resultdb.InsertSample(sample); err != nil {
			log.Printf("Failed to store sample for run %s: %v", msg.RunID, err)
		}
	}
	log.Printf("Stored run %s (%s, %d samples)", msg.RunID, msg.Run.Technique, len(samples))
}

func parseTimestampOrZero(ts string) int64 {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return 0
	}
	return t.Unix()
}
