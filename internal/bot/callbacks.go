package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions carried in inline button data as "<session>:<action>[:<arg>]".
const (
	actUp      = "up"
	actDown    = "down"
	actLeft    = "left"
	actRight   = "right"
	actNext    = "next"
	actFlip    = "flip"
	actReveal  = "reveal"
	actClose   = "close"
	actPlay    = "play"
	actPrev    = "prev"
	actForward = "fwd"
	actFaster  = "faster"
	actSlower  = "slower"
	actVoice   = "voice"
	actNoop    = "noop"

	actAnswerVoice = "avoice"
)

type callback struct {
	Session string
	Action  string
	Arg     int
}

// tag is the short session id printed into button data.
func tag(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}
	return sessionID
}

func callbackData(sessionID, action string, arg ...int) string {
	if len(arg) > 0 {
		return fmt.Sprintf("%s:%s:%d", tag(sessionID), action, arg[0])
	}
	return tag(sessionID) + ":" + action
}

func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return callback{}, fmt.Errorf("malformed callback data %q", data)
	}
	cb := callback{Session: parts[0], Action: parts[1]}
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return callback{}, fmt.Errorf("malformed callback argument in %q: %w", data, err)
		}
		cb.Arg = n
	}
	return cb, nil
}
