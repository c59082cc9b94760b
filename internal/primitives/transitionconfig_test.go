package primitives

import (
	"strings"
	"testing"
)

func TestTransitionConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		tc          TransitionConfig
		wantErr     bool
		errContains string
	}{
		{name: "valid", tc: TransitionConfig{Event: "click", Target: "next"}},
		{name: "valid path", tc: TransitionConfig{Event: "click", Target: "loaded.ready"}},
		{
			name:        "empty target segment",
			tc:          TransitionConfig{Event: "e", Target: "parent..child"},
			wantErr:     true,
			errContains: "empty segment",
		},
		{
			name:        "invalid target char",
			tc:          TransitionConfig{Event: "e", Target: "invalid@state"},
			wantErr:     true,
			errContains: "invalid character",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tc.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %v, want contains %q", err, tt.errContains)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestNewTransitionOptions(t *testing.T) {
	guard := func(*Context, Event) bool { return true }
	tc := NewTransition("e", "t", WithGuard(guard, "x > 1"), WithActions(noop), AsInternal())
	if len(tc.Guards) != 2 || len(tc.Actions) != 1 || !tc.Internal {
		t.Errorf("NewTransition = %+v", tc)
	}
}

func TestInvokeConfigValidate(t *testing.T) {
	if err := (&InvokeConfig{ID: "child", Src: &MachineConfig{}}).Validate(); err != nil {
		t.Errorf("machine source: %v", err)
	}
	if err := (&InvokeConfig{ID: "p", Src: PromiseFunc(nil)}).Validate(); err != nil {
		t.Errorf("promise source: %v", err)
	}
	if err := (&InvokeConfig{ID: "bad", Src: 42}).Validate(); err == nil {
		t.Error("expected error for unsupported source")
	}
	if err := (&InvokeConfig{Src: &MachineConfig{}}).Validate(); err == nil {
		t.Error("expected error for missing ID")
	}
}
