package client

import (
	"bufio"
	"io"
	"strings"
)

// readEvents parses the server-sent-event framing from r and dispatches
// one callback per event. Events default to the "message" type; data lines
// within an event are joined with newlines; comment lines (leading colon)
// and unknown fields are ignored, per the SSE wire format.
func readEvents(r io.Reader, dispatch func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	event := ""
	var data []string

	flush := func() {
		if len(data) == 0 {
			event = ""
			return
		}
		name := event
		if name == "" {
			name = "message"
		}
		dispatch(name, strings.Join(data, "\n"))
		event = ""
		data = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				event = value
			case "data":
				data = append(data, value)
			}
		}
	}
	// A final event unterminated by a blank line is still delivered.
	flush()

	return scanner.Err()
}
