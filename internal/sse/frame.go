package sse

import (
	"bytes"
	"encoding/json"

	"github.com/Apple-Square/moment-notification/internal/domain"
)

// Encode renders an event as a wire-ready SSE frame:
//
//	id: <recipient record id>      (only when the event carries one)
//	event: <name>
//	data: <json>
//
// terminated by a blank line.
func Encode(ev domain.Event) []byte {
	var buf bytes.Buffer
	if ev.ID != "" {
		buf.WriteString("id: ")
		buf.WriteString(ev.ID)
		buf.WriteByte('\n')
	}
	buf.WriteString("event: ")
	buf.WriteString(string(ev.Name))
	buf.WriteByte('\n')

	data, err := json.Marshal(ev.Data)
	if err != nil {
		data = []byte("{}")
	}
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes()
}
