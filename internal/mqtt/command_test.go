package mqtt

import (
	"errors"
	"testing"

	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/led"
	"github.com/sweeney/devboard/internal/logic"
)

func TestCommandTopicRoundTrip(t *testing.T) {
	for id := led.ID(0); id < led.Count; id++ {
		got, err := ParseCommandTopic(CommandTopic(id))
		if err != nil {
			t.Fatalf("%v: %v", id, err)
		}
		if got != id {
			t.Errorf("got %v, want %v", got, id)
		}
	}
}

func TestParseCommandTopicErrors(t *testing.T) {
	for _, topic := range []string{
		"devboard/led/4/set",
		"devboard/led/-1/set",
		"devboard/led/x/set",
		"devboard/led/1/get",
		"devboard/button/1/set",
		"devboard/led/set",
		"",
	} {
		if _, err := ParseCommandTopic(topic); !errors.Is(err, errcode.InvalidArgument) {
			t.Errorf("%q: expected invalid_argument, got %v", topic, err)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		topic   string
		payload string
		want    logic.Action
	}{
		{"devboard/led/0/set", `{"action":"set","on":true}`, logic.Set(led.Led0, true)},
		{"devboard/led/1/set", `{"action":"set"}`, logic.Set(led.Led1, false)},
		{"devboard/led/2/set", `{"action":"toggle"}`, logic.Toggle(led.Led2)},
		{"devboard/led/1/set", `{"action":"blink","hz":8}`, logic.Blink(led.Led1, led.Hz8)},
		{"devboard/led/3/set", `{"action":"pwm","duty":420}`, logic.PWM(led.Led3, 420)},
		{"devboard/led/3/set", `{"action":"pwm","duty":99999}`, logic.PWM(led.Led3, led.MaxDuty)},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseCommand(tt.topic, []byte(tt.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		code    errcode.Code
	}{
		{"bad topic", "devboard/led/9/set", `{"action":"toggle"}`, errcode.InvalidArgument},
		{"blink zero", "devboard/led/0/set", `{"action":"blink"}`, errcode.InvalidArgument},
		{"blink too fast", "devboard/led/0/set", `{"action":"blink","hz":17}`, errcode.InvalidArgument},
		{"blink overflow", "devboard/led/0/set", `{"action":"blink","hz":258}`, errcode.InvalidArgument},
		{"negative duty", "devboard/led/3/set", `{"action":"pwm","duty":-1}`, errcode.InvalidArgument},
		{"unknown action", "devboard/led/0/set", `{"action":"strobe"}`, errcode.Unsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.topic, []byte(tt.payload))
			if errcode.Of(err) != tt.code {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	if _, err := ParseCommand("devboard/led/0/set", []byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}
