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
	"fmt"

	"go.uber.org/zap"

	"github.com/consulk8s/consulk8s/internal/pkg/command"
	"github.com/consulk8s/consulk8s/internal/pkg/publisher"

	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Source lists the resources converted into services.
type Source interface {
	ListIngresses(ctx context.Context) ([]networkingv1.Ingress, error)
	// ListIngressRoutes returns an empty list when the IngressRoute kind is
	// not installed.
	ListIngressRoutes(ctx context.Context) ([]unstructured.Unstructured, error)
}

// Config holds the configuration of a synchronization run.
type Config struct {
	Log       *zap.SugaredLogger
	Source    Source
	Publisher publisher.Publisher

	// Runner executes Command once the services changed. It may be nil when
	// Command is empty.
	Runner  command.Runner
	Command string

	// ChangeCode is the exit code reported when the services changed.
	ChangeCode int

	Convert ConvertOptions
}

func (c *Config) validate() error {
	if c.Log == nil {
		return fmt.Errorf("log cannot be nil")
	}

	if c.Source == nil {
		return fmt.Errorf("source cannot be nil")
	}

	if c.Publisher == nil {
		return fmt.Errorf("publisher cannot be nil")
	}

	if c.Command != "" && c.Runner == nil {
		return fmt.Errorf("runner cannot be nil when a command is set")
	}

	if c.ChangeCode < 0 || c.ChangeCode > 255 {
		return fmt.Errorf("change code must be between 0 and 255")
	}

	if c.Convert.CheckInterval == "" {
		return fmt.Errorf("check interval cannot be empty")
	}

	if c.Convert.DefaultIP == "" {
		return fmt.Errorf("default IP cannot be empty")
	}

	return nil
}

// Synchronizer converts the ingresses of a cluster into Consul services and
// publishes them once.
type Synchronizer struct {
	cfg    *Config
	logger *zap.SugaredLogger
}

// New validates cfg and returns a Synchronizer.
func New(cfg *Config) (*Synchronizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("failed to instantiate synchronizer: config is nil")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to instantiate synchronizer: %w", err)
	}

	return &Synchronizer{
		cfg:    cfg,
		logger: cfg.Log,
	}, nil
}
