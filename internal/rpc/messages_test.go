package rpc

import (
	"encoding/json"
	"testing"
)

func TestSessionID_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		output string
	}{
		{"string token", `{"session":"a1b2c3"}`, "a1b2c3", `{"method":"x","params":null,"id":0,"session":"a1b2c3"}`},
		{"numeric token", `{"session":1234567}`, "1234567", `{"method":"x","params":null,"id":0,"session":1234567}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response
			if err := json.Unmarshal([]byte(tt.input), &resp); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if resp.Session.String() != tt.want {
				t.Errorf("String() = %s, want %s", resp.Session.String(), tt.want)
			}

			out, err := json.Marshal(&Request{Method: "x", Session: resp.Session})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.output {
				t.Errorf("Marshal() = %s, want %s", out, tt.output)
			}
		})
	}
}

func TestSessionID_Null(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"result":true,"session":null}`), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !resp.Session.IsZero() {
		t.Errorf("Session = %s, want zero", resp.Session)
	}
}

func TestResponse_OK(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"result":true}`, true},
		{`{"result": true }`, true},
		{`{"result":false}`, false},
		{`{"result":1}`, false},
		{`{}`, false},
	}

	for _, tt := range tests {
		var resp Response
		if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.body, err)
		}
		if got := resp.OK(); got != tt.want {
			t.Errorf("OK() for %s = %v, want %v", tt.body, got, tt.want)
		}
	}

	var nilResp *Response
	if nilResp.OK() {
		t.Error("nil Response should not be OK")
	}
}

func TestResponse_DecodeParamsKeepsNumbers(t *testing.T) {
	resp := Response{Params: json.RawMessage(`{"table":[{"Value":12345678901234567890}]}`)}

	var params struct {
		Table any `json:"table"`
	}
	if err := resp.DecodeParams(&params); err != nil {
		t.Fatalf("DecodeParams() error = %v", err)
	}

	out, _ := json.Marshal(params.Table)
	if string(out) != `[{"Value":12345678901234567890}]` {
		t.Errorf("round trip = %s", out)
	}
}

func TestResponse_DecodeParamsMissing(t *testing.T) {
	resp := Response{}
	var v any
	err := resp.DecodeParams(&v)
	if !IsProtocolError(err) {
		t.Errorf("DecodeParams() error = %v, want protocol error", err)
	}
}

func TestFault(t *testing.T) {
	if !(&Fault{Code: CodeNoSuchSession}).IsSessionInvalid() {
		t.Error("CodeNoSuchSession should be session invalid")
	}
	if !(&Fault{Code: CodeInvalidSession}).IsSessionInvalid() {
		t.Error("CodeInvalidSession should be session invalid")
	}
	if (&Fault{Code: 268632071}).IsSessionInvalid() {
		t.Error("other codes should not be session invalid")
	}
	if !(&Fault{Code: CodeDeviceBusy}).IsBusy() {
		t.Error("486 should be busy")
	}
	var nilFault *Fault
	if nilFault.IsBusy() || nilFault.IsSessionInvalid() {
		t.Error("nil fault should match nothing")
	}
}

func TestNewMulticallRequest(t *testing.T) {
	session := NewSessionID("S1")
	set := NewSetConfigRequest("Lighting_V2", []any{1}, session)
	multi := NewMulticallRequest(session, set)

	out, err := json.Marshal(multi)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"method":"system.multicall","params":[{"method":"configManager.setConfig","params":{"name":"Lighting_V2","table":[1],"options":[]},"id":20,"session":"S1"}],"id":21,"session":"S1"}`
	if string(out) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", out, want)
	}
}
