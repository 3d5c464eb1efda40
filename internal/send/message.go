package send

import (
	"fmt"
	"strings"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

const defaultSubject = "No Subject"

// Message is what a Sender delivers.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"-"`
}

// MessageFromData builds a message from the request body keys to, subject
// and from. to may be a string (comma separated) or an array of strings.
func MessageFromData(html string, data literal.Value, defaultFrom string) (Message, error) {
	msg := Message{From: defaultFrom, Subject: defaultSubject, HTML: html}

	if to, ok := data.Get("to"); ok {
		switch to.Kind() {
		case literal.KindString:
			for _, addr := range strings.Split(to.Str(), ",") {
				if addr = strings.TrimSpace(addr); addr != "" {
					msg.To = append(msg.To, addr)
				}
			}
		case literal.KindArray:
			for _, item := range to.Items() {
				if item.Kind() == literal.KindString && strings.TrimSpace(item.Str()) != "" {
					msg.To = append(msg.To, strings.TrimSpace(item.Str()))
				}
			}
		}
	}
	if subject, ok := data.Get("subject"); ok && subject.Kind() == literal.KindString && subject.Str() != "" {
		msg.Subject = subject.Str()
	}
	if from, ok := data.Get("from"); ok && from.Kind() == literal.KindString && from.Str() != "" {
		msg.From = from.Str()
	}

	if len(msg.To) == 0 {
		return Message{}, fmt.Errorf("%w: at least one recipient is required in \"to\"", ErrInvalidMessage)
	}
	if msg.From == "" {
		return Message{}, fmt.Errorf("%w: sender address is required", ErrInvalidMessage)
	}
	return msg, nil
}
