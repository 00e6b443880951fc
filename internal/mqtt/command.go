package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/led"
	"github.com/sweeney/devboard/internal/logic"
)

// Command is the JSON body of a devboard/led/<n>/set message:
//
//	{"action":"set","on":true}
//	{"action":"toggle"}
//	{"action":"blink","hz":4}
//	{"action":"pwm","duty":500}
type Command struct {
	Action string `json:"action"`
	On     bool   `json:"on,omitempty"`
	Hz     int    `json:"hz,omitempty"`
	Duty   int    `json:"duty,omitempty"`
}

// CommandTopic returns the command topic for id.
func CommandTopic(id led.ID) string {
	return "devboard/led/" + strconv.Itoa(int(id)) + "/set"
}

// ParseCommandTopic extracts the LED from a command topic.
func ParseCommandTopic(topic string) (led.ID, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "devboard" || parts[1] != "led" || parts[3] != "set" {
		return 0, fmt.Errorf("topic %q: %w", topic, errcode.InvalidArgument)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || !led.ID(n).Valid() {
		return 0, fmt.Errorf("topic %q: no such led: %w", topic, errcode.InvalidArgument)
	}
	return led.ID(n), nil
}

// ParseCommand decodes a command message into an LED action.
func ParseCommand(topic string, payload []byte) (logic.Action, error) {
	id, err := ParseCommandTopic(topic)
	if err != nil {
		return logic.Action{}, err
	}
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return logic.Action{}, fmt.Errorf("decode command: %w", err)
	}

	switch logic.ActionKind(cmd.Action) {
	case logic.ActionSet:
		return logic.Set(id, cmd.On), nil
	case logic.ActionToggle:
		return logic.Toggle(id), nil
	case logic.ActionBlink:
		f := led.Frequency(cmd.Hz)
		if cmd.Hz < 0 || cmd.Hz > 255 || !f.Valid() {
			return logic.Action{}, fmt.Errorf("blink %d Hz: %w", cmd.Hz, errcode.InvalidArgument)
		}
		return logic.Blink(id, f), nil
	case logic.ActionPWM:
		if cmd.Duty < 0 {
			return logic.Action{}, fmt.Errorf("duty %d: %w", cmd.Duty, errcode.InvalidArgument)
		}
		duty := led.MaxDuty
		if cmd.Duty < int(led.MaxDuty) {
			duty = uint16(cmd.Duty)
		}
		return logic.PWM(id, duty), nil
	default:
		return logic.Action{}, fmt.Errorf("action %q: %w", cmd.Action, errcode.Unsupported)
	}
}
