/*
Copyright 2026 The consulk8s contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package synchronizer

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/consulk8s/consulk8s/internal/pkg/publisher"
	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []consulv1.Service) (publisher.Outcome, error) {
	return publisher.Outcome{}, nil
}

type nopRunner struct{}

func (nopRunner) Run(context.Context, string) error {
	return nil
}

func validConfig() *Config {
	return &Config{
		Log:       zap.NewNop().Sugar(),
		Source:    &fakeSource{},
		Publisher: nopPublisher{},
		Convert:   defaultOptions,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name: "valid config with command and runner",
			mutate: func(cfg *Config) {
				cfg.Command = "consul reload"
				cfg.Runner = nopRunner{}
				cfg.ChangeCode = 3
			},
		},
		{
			name: "invalid config with nil logger",
			mutate: func(cfg *Config) {
				cfg.Log = nil
			},
			expectError: true,
			errorMsg:    "log cannot be nil",
		},
		{
			name: "invalid config with nil source",
			mutate: func(cfg *Config) {
				cfg.Source = nil
			},
			expectError: true,
			errorMsg:    "source cannot be nil",
		},
		{
			name: "invalid config with nil publisher",
			mutate: func(cfg *Config) {
				cfg.Publisher = nil
			},
			expectError: true,
			errorMsg:    "publisher cannot be nil",
		},
		{
			name: "invalid config with command but no runner",
			mutate: func(cfg *Config) {
				cfg.Command = "consul reload"
			},
			expectError: true,
			errorMsg:    "runner cannot be nil when a command is set",
		},
		{
			name: "invalid config with negative change code",
			mutate: func(cfg *Config) {
				cfg.ChangeCode = -1
			},
			expectError: true,
			errorMsg:    "change code must be between 0 and 255",
		},
		{
			name: "invalid config with change code out of range",
			mutate: func(cfg *Config) {
				cfg.ChangeCode = 256
			},
			expectError: true,
			errorMsg:    "change code must be between 0 and 255",
		},
		{
			name: "invalid config with empty interval",
			mutate: func(cfg *Config) {
				cfg.Convert.CheckInterval = ""
			},
			expectError: true,
			errorMsg:    "check interval cannot be empty",
		},
		{
			name: "invalid config with empty default IP",
			mutate: func(cfg *Config) {
				cfg.Convert.DefaultIP = ""
			},
			expectError: true,
			errorMsg:    "default IP cannot be empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.validate()

			if tc.expectError {
				if err == nil {
					t.Errorf("expected error but got nil")
					return
				}
				if err.Error() != tc.errorMsg {
					t.Errorf("expected error message %q, got %q", tc.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := validConfig()
	cfg.Log = nil
	if _, err := New(cfg); err == nil || err.Error() != "failed to instantiate synchronizer: log cannot be nil" {
		t.Errorf("unexpected error: %v", err)
	}

	s, err := New(validConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected a synchronizer")
	}
}
