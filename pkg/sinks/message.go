package sinks

import (
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

// message is the serialized event plus the attributes queue sinks expose for filtering.
type message struct {
	body       string
	attributes map[string]string
}

func encodeEvent(evt notify.Event) (message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return message{}, fmt.Errorf("marshal event: %w", err)
	}
	attrs := map[string]string{"kind": string(evt.Kind)}
	if evt.Source != "" {
		attrs["source"] = evt.Source
	}
	return message{body: string(payload), attributes: attrs}, nil
}
