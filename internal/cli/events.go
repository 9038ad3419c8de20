package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		since      int64
	)

	cmd := &cobra.Command{
		Use:   "events <room-id>",
		Short: "Stream a room's events",
		Long: `Connect to the room's SSE endpoint and stream events in real-time.

Events are the room's transitions: players entering and readying, bids, the dog,
tricks, scores and chat. Private events such as dealt hands are only sent to the
player they belong to, so pass --player to see your own.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], since, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().Int64Var(&since, "since", 0, "Replay events after this sequence number first")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	ID    string    `json:"id,omitempty"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(roomID string, since int64, jsonOutput bool) error {
	query := url.Values{}
	query.Set("since", strconv.FormatInt(since, 10))
	if cfg.Player != "" {
		query.Set("player", cfg.Player)
	}
	eventsURL := strings.TrimSuffix(cfg.ServerURL, "/") + roomPath(roomID, "events") + "?" + query.Encode()

	// Create request
	req, err := http.NewRequest(http.MethodGet, eventsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Set up cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	req = req.WithContext(ctx)

	// Make request
	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Connected to room %s\n", roomID)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	var currentID, currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "id: "):
			currentID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if currentEvent != "" {
				data := strings.Join(dataLines, "\n")
				printEvent(SSEEvent{Time: time.Now(), ID: currentID, Event: currentEvent, Data: data}, jsonOutput)
			}
			currentID, currentEvent = "", ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(evt SSEEvent, jsonOutput bool) {
	if jsonOutput {
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
		return
	}

	timestamp := evt.Time.Format("2006-01-02 15:04:05")
	id := ""
	if evt.ID != "" {
		id = " #" + evt.ID
	}
	fmt.Printf("[%s]%s %s: %s\n", timestamp, id, evt.Event, truncate(evt.Data, 100))
}
