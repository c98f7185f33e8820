package protocol

import (
	"testing"
	"time"
)

func TestNewCallService(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		args     interface{}
		wantArgs string
	}{
		{
			name:     "empty service",
			service:  ServiceResetWorld,
			args:     nil,
			wantArgs: "{}",
		},
		{
			name:     "model state",
			service:  ServiceGetModelState,
			args:     GetModelStateArgs{ModelName: "meu_primeiro_robo"},
			wantArgs: `{"model_name":"meu_primeiro_robo","relative_entity_name":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewCallService("id-1", tt.service, tt.args)
			if err != nil {
				t.Fatalf("NewCallService() error = %v", err)
			}
			if f.Op != OpCallService {
				t.Errorf("Op = %v, want %v", f.Op, OpCallService)
			}
			if f.ID != "id-1" {
				t.Errorf("ID = %q, want id-1", f.ID)
			}
			if string(f.Args) != tt.wantArgs {
				t.Errorf("Args = %s, want %s", f.Args, tt.wantArgs)
			}
		})
	}
}

func TestParseFrame_ServiceResponse(t *testing.T) {
	raw := `{"op":"service_response","id":"abc","service":"/gazebo/get_model_state","result":true,
		"values":{"pose":{"position":{"x":0.4,"y":1.075,"z":0}},"twist":{"linear":{"x":0.003,"y":0.003}},"success":true}}`

	f, err := ParseFrame([]byte(raw))
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}
	if !f.Succeeded() {
		t.Fatal("Succeeded() = false, want true")
	}

	var v GetModelStateValues
	if err := f.ParseValues(&v); err != nil {
		t.Fatalf("ParseValues() error = %v", err)
	}
	if v.Pose.Position.X != 0.4 || v.Pose.Position.Y != 1.075 {
		t.Errorf("position = %+v", v.Pose.Position)
	}
	if v.Twist.Linear.X != 0.003 {
		t.Errorf("linear.x = %v, want 0.003", v.Twist.Linear.X)
	}
}

func TestServiceFailure(t *testing.T) {
	f := NewServiceFailure("abc", ServiceResetWorld, "physics engine crashed")

	data, err := f.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}

	if parsed.Succeeded() {
		t.Error("Succeeded() = true for failure frame")
	}
	if got := parsed.FailureReason(); got != "physics engine crashed" {
		t.Errorf("FailureReason() = %q", got)
	}
}

func TestSucceeded_MissingResult(t *testing.T) {
	f, err := ParseFrame([]byte(`{"op":"service_response","id":"x","values":{}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !f.Succeeded() {
		t.Error("missing result should count as success")
	}
}

func TestParseFrame_Invalid(t *testing.T) {
	for _, raw := range []string{`not json`, `{}`, `{"id":"x"}`} {
		if _, err := ParseFrame([]byte(raw)); err == nil {
			t.Errorf("ParseFrame(%q) expected error", raw)
		}
	}
}

func TestTimeDuration(t *testing.T) {
	d := 12*time.Second + 345*time.Millisecond
	stamp := NewTime(d)

	if stamp.Secs != 12 || stamp.Nsecs != 345000000 {
		t.Errorf("NewTime() = %+v", stamp)
	}
	if stamp.Duration() != d {
		t.Errorf("Duration() = %v, want %v", stamp.Duration(), d)
	}
}
