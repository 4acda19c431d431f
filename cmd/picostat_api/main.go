// Picostat API drives the potentiostat over its serial port and broadcasts
// decoded measurement data to websocket subscribers.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/open-electrochem/picostat/pkg/auxmonitor"
	"github.com/open-electrochem/picostat/pkg/config"
	"github.com/open-electrochem/picostat/pkg/instrument"
	"github.com/open-electrochem/picostat/pkg/livedata"
	"github.com/open-electrochem/picostat/pkg/mscript"
	"github.com/open-electrochem/picostat/pkg/picoserial"
	"github.com/open-electrochem/picostat/pkg/techniques"
)

var device *instrument.Device

// Only one measurement may run on the instrument at a time.
var runMutex sync.Mutex

var (
	latestRunMu sync.RWMutex
	latestRun   *livedata.Message
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// ws clients for broadcasting live measurement data
var (
	wsClients                   = make(map[*websocket.Conn]bool)
	wsClientsMutex sync.RWMutex = sync.RWMutex{}
)

func main() {
	// Load config
	if err := config.LoadPicostatAPIConfig(); err != nil {
		log.Fatalf("Failed to load picostat API config: %v", err)
	}

	// Resolve the configured instrument model; its limits are served to
	// clients that build scripts against this instrument.
	model, err := techniques.ModelFromName(config.ActivePicostatAPIConfig.DeviceModel)
	if err != nil {
		log.Fatalf("Invalid device_model in config: %v", err)
	}
	modelSpec := techniques.Spec(model)

	// Resolve and open the instrument port
	portName := config.ActivePicostatAPIConfig.SerialDevice
	if portName == "" {
		detected, err := picoserial.AutoDetectPort()
		if err != nil {
			log.Fatalf("Failed to auto-detect instrument port: %v", err)
		}
		portName = detected
		log.Printf("Auto-detected instrument on %s", portName)
	}
	conn := picoserial.NewConnection(portName, config.ActivePicostatAPIConfig.Baudrate)
	if err := conn.Open(); err != nil {
		log.Fatalf("Failed to open serial port %s: %v", portName, err)
	}
	defer conn.Close()
	device = instrument.New(conn)

	// Setup HTTP handlers
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]string{
			"message": "Picostat API",
			"status":  "running",
			"port":    portName,
			"model":   modelSpec.Name,
			"state":   device.State().String(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	http.HandleFunc("/model", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(modelSpec)
	})

	http.HandleFunc("/firmware", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		runMutex.Lock()
		version, err := device.FirmwareVersion(readTimeout())
		runMutex.Unlock()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"firmware": version,
		})
	})

	http.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		latestRunMu.RLock()
		msg := latestRun
		latestRunMu.RUnlock()
		w.Header().Set("Content-Type", "application/json")
		if msg == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "No runs completed yet",
			})
			return
		}
		w.Write(msg.ToJsonBytes())
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		AddWebSocketClient(conn)

		// Send the latest run summary immediately if available
		latestRunMu.RLock()
		msg := latestRun
		latestRunMu.RUnlock()
		if msg != nil {
			conn.WriteMessage(websocket.TextMessage, msg.ToJsonBytes())
		}

		// Keep connection alive
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				RemoveWebSocketClient(conn)
				break
			}
		}
	})

	http.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "POST a MethodSCRIPT body to start a run",
			})
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "empty or unreadable script body",
			})
			return
		}

		summary, err := executeRun(string(body), r.URL.Query().Get("technique"))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(summary)
	})

	// May be fast or slow depending on cached response from the thermostat.
	http.HandleFunc("/temperature", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		temp, err := auxmonitor.ReadCellTemperature()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{
			"cellTemperature": temp,
		})
	})

	listener := fmt.Sprintf("%s:%d", config.ActivePicostatAPIConfig.ListenAddress, config.ActivePicostatAPIConfig.ListenPort)

	log.Printf("Starting Picostat API on %s", listener)
	log.Fatal(http.ListenAndServe(listener, nil))
}

func readTimeout() time.Duration {
	return time.Duration(config.ActivePicostatAPIConfig.ReadTimeoutMs) * time.Millisecond
}

// executeRun sends a script to the instrument, broadcasts each decoded data
// package as it arrives, and returns the run summary.
func executeRun(script, technique string) (*livedata.RunSummary, error) {
	runMutex.Lock()
	defer runMutex.Unlock()

	if technique == "" {
		technique = "custom"
	}
	runID := fmt.Sprintf("run-%s", time.Now().UTC().Format("20060102T150405.000"))
	startedAt := time.Now().UTC().Format(time.RFC3339)

	log.Printf("Starting %s measurement %s (%d script bytes)", technique, runID, len(script))
	if err := device.SendScript(script); err != nil {
		return nil, fmt.Errorf("failed to send script: %w", err)
	}

	curveIdx, rowIdx := 0, 0
	onLine := func(line string) {
		if pkg := mscript.ParseDataPackage(line); pkg != nil {
			msg := &livedata.Message{
				Kind:      livedata.KindSample,
				RunID:     runID,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Sample:    livedata.NewSample(curveIdx, rowIdx, pkg),
			}
			BroadcastToWebSockets(msg)
			rowIdx++
			return
		}
		// Curve terminators separate scan segments within a run.
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-") {
			if rowIdx > 0 {
				curveIdx++
				rowIdx = 0
			}
		}
	}

	lines, err := device.ReadLinesUntilEnd(readTimeout(), onLine)
	if err != nil {
		return nil, fmt.Errorf("failed reading measurement data: %w", err)
	}

	// Samples are broadcast as they arrive, but a trailing curve that was
	// never closed by a terminator does not parse into the result set, so
	// on a timed-out run the summary's curve/point counts can be lower
	// than what subscribers saw live. The collector keys on the summary,
	// so the stored run reflects these counts.
	curves := mscript.ParseResultLines(lines)
	points := 0
	for _, curve := range curves {
		points += len(curve)
	}

	summary := &livedata.RunSummary{
		Technique:  technique,
		State:      device.State().String(),
		Lines:      len(lines),
		Curves:     len(curves),
		Points:     points,
		Checksum:   livedata.RunChecksum(script, lines),
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	msg := &livedata.Message{
		Kind:      livedata.KindRun,
		RunID:     runID,
		Timestamp: summary.FinishedAt,
		Run:       summary,
	}

	latestRunMu.Lock()
	latestRun = msg
	latestRunMu.Unlock()

	BroadcastToWebSockets(msg)
	log.Printf("Measurement %s finished: %s, %d curves, %d points", runID, summary.State, summary.Curves, summary.Points)
	return summary, nil
}

func BroadcastToWebSockets(msg *livedata.Message) {
	payload := msg.ToJsonBytes()
	if payload == nil {
		return
	}

	wsClientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(wsClients))
	for client := range wsClients {
		clients = append(clients, client)
	}
	wsClientsMutex.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
			RemoveWebSocketClient(client)
		}
	}
}

func AddWebSocketClient(conn *websocket.Conn) {
	wsClientsMutex.Lock()
	wsClients[conn] = true
	wsClientsMutex.Unlock()
}

func RemoveWebSocketClient(conn *websocket.Conn) {
	wsClientsMutex.Lock()
	delete(wsClients, conn)
	wsClientsMutex.Unlock()
	conn.Close()
}
