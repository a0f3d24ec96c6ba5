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

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

// Result is the outcome of a synchronization run.
type Result struct {
	Services int
	// Changed reports whether the destination was updated.
	Changed bool
	// Status is the last HTTP status returned by a sink, if any.
	Status int
	// ExitCode is the process exit code matching the outcome.
	ExitCode int
}

// Run lists resources, converts them and publishes the services. When the
// publication changed the destination, the change command is run and the
// change code is reported. Conversion errors abort the run before anything
// is published.
func (s *Synchronizer) Run(ctx context.Context) (Result, error) {
	l := s.logger

	services, err := s.buildServices(ctx)
	if err != nil {
		return Result{}, err
	}
	l.Infow("Converted ingresses", "services", len(services))

	outcome, err := s.cfg.Publisher.Publish(ctx, services)
	if err != nil {
		return Result{}, fmt.Errorf("failed to publish services: %w", err)
	}

	result := Result{
		Services: len(services),
		Changed:  outcome.Changed,
		Status:   outcome.Status,
	}

	if !outcome.Changed {
		l.Debug("Services unchanged")
		return result, nil
	}

	if s.cfg.Command != "" {
		if err := s.cfg.Runner.Run(ctx, s.cfg.Command); err != nil {
			return result, err
		}
	}

	result.ExitCode = s.cfg.ChangeCode
	l.Infow("Services published", "status", outcome.Status, "exitCode", result.ExitCode)

	return result, nil
}

func (s *Synchronizer) buildServices(ctx context.Context) ([]consulv1.Service, error) {
	ingresses, err := s.cfg.Source.ListIngresses(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("Listed ingresses", "count", len(ingresses))

	routes, err := s.cfg.Source.ListIngressRoutes(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("Listed ingress routes", "count", len(routes))

	return BuildServices(ingresses, routes, s.cfg.Convert)
}
