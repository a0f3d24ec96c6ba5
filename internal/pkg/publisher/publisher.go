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

// Package publisher hands converted services over to Consul, either through
// the agent configuration directory, an HTTP sink or the agent API.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

// Outcome describes the result of a publication.
type Outcome struct {
	// Changed is false only when the destination already held the same services.
	Changed bool
	// Status is the last HTTP status code received, or 0 when no request was made.
	Status int
}

// Publisher delivers a set of services to a destination.
type Publisher interface {
	Publish(ctx context.Context, services []consulv1.Service) (Outcome, error)
}

// Marshal serializes v as indented JSON followed by a newline. Struct field
// order and sorted map keys make the output stable for identical input.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// HasChanged reports whether serialized differs from the previously persisted
// content. A missing previous document always counts as a change.
func HasChanged(serialized, previous []byte, previousExists bool) bool {
	if !previousExists {
		return true
	}
	return !bytes.Equal(serialized, previous)
}

func stripChecks(services []consulv1.Service) []consulv1.Service {
	stripped := make([]consulv1.Service, 0, len(services))
	for _, svc := range services {
		stripped = append(stripped, svc.WithoutChecks())
	}
	return stripped
}
