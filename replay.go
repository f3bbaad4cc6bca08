package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"callview/presenter"
	"callview/vapi"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Replay recorded call events and print the resulting transcript",
	Long: `Reads one JSON object per line, either a browser bridge frame
({"event": ..., "data": ...}) or a server URL message ({"message": {...}}),
feeds them through the transcript presenter and prints the final status and
transcript as a table.`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) {
	loggers := createLoggers(false)
	defer loggers.Close()

	f, err := os.Open(args[0])
	if err != nil {
		loggers.Main.Fatal("open recording", "error", err)
	}
	defer f.Close()

	events, err := readRecording(f, loggers.Main)
	if err != nil {
		loggers.Main.Fatal("read recording", "error", err)
	}

	snap := replay(events, loggers.Call)
	printTranscript(os.Stdout, snap)
}

type recordedLine struct {
	Event   *string         `json:"event"`
	Message json.RawMessage `json:"message"`
}

func readRecording(r io.Reader, logger *log.Logger) ([]presenter.Event, error) {
	var events []presenter.Event

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var probe recordedLine
		if err := json.Unmarshal(line, &probe); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		var ev presenter.Event
		switch {
		case probe.Event != nil:
			decoded, err := vapi.DecodeClientFrame(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ev = decoded
		case len(probe.Message) > 0:
			msg, err := vapi.DecodeServerMessage(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ev = msg.Event()
		default:
			logger.Warn("skipping unrecognised line", "line", lineNo)
		}

		if ev != nil {
			events = append(events, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func replay(events []presenter.Event, logger *log.Logger) presenter.Snapshot {
	p := presenter.New(presenter.NewRecorder(), logger)
	for _, ev := range events {
		presenter.Dispatch(p, ev)
	}
	return p.Snapshot()
}

func printTranscript(w io.Writer, snap presenter.Snapshot) {
	fmt.Fprintf(w, "Status: %s\n", snap.Status.Label())

	if len(snap.Entries) == 0 {
		fmt.Fprintln(w, "No transcript entries.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Role", "Text"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)

	for i, entry := range snap.Entries {
		table.Append([]string{
			strconv.Itoa(i + 1),
			entry.Role.Icon() + " " + string(entry.Role),
			entry.Text,
		})
	}

	table.Render()
}
