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

package v1

import (
	"fmt"
	"slices"
)

// ServiceFile is the document consumed by the Consul agent from its
// configuration directory.
type ServiceFile struct {
	Services []Service `json:"services"`
}

// Service is a Consul service definition derived from an ingress.
// Field order is significant: it defines the serialized layout.
type Service struct {
	// ID is omitted when a service is relayed to a sink.
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`

	// Tags is only populated for sink and agent registrations.
	//
	// +optional
	Tags    []string `json:"tags,omitempty"`
	Address string   `json:"address"`
	Port    int      `json:"port"`

	// Checks holds zero or one HTTP check. It is omitted when checks are disabled.
	//
	// +optional
	Checks []Check `json:"checks,omitempty"`
}

// Check is an HTTP health check attached to a Service.
type Check struct {
	Name          string              `json:"name"`
	Notes         string              `json:"notes"`
	HTTP          string              `json:"http"`
	Interval      string              `json:"interval"`
	Header        map[string][]string `json:"header"`
	Timeout       string              `json:"timeout"`
	TLSSkipVerify bool                `json:"tls_skip_verify,omitempty"`
}

// ServiceID returns the ID consulk8s assigns to the service with the given name.
func ServiceID(name string) string {
	return ServiceIDPrefix + name
}

// CheckScheme returns the scheme used to check a service listening on port.
func CheckScheme(port int) string {
	if port == 443 {
		return "https"
	}
	return "http"
}

// NewHTTPCheck builds the check for a service. path must not start with a slash.
func NewHTTPCheck(name, host, address string, port int, path, interval, timeout string) Check {
	return Check{
		Name:     fmt.Sprintf("%s check", name),
		Notes:    fmt.Sprintf("HTTP check %s on port %d every %s", host, port, interval),
		HTTP:     fmt.Sprintf("%s://%s:%d/%s", CheckScheme(port), address, port, path),
		Interval: interval,
		Header:   map[string][]string{"Host": {host}},
		Timeout:  timeout,
	}
}

// WithoutChecks returns a copy of the service with its checks removed.
func (s Service) WithoutChecks() Service {
	s.Checks = nil
	return s
}

// ForSink returns a copy of the service as accepted by a registration
// endpoint: without ID and with tags merged with SinkTags.
func (s Service) ForSink() Service {
	s.ID = ""
	s.Tags = MergeTags(s.Tags, SinkTags...)
	return s
}

// MergeTags appends the given tags to existing, skipping duplicates.
// The existing slice is never modified.
func MergeTags(existing []string, tags ...string) []string {
	merged := make([]string, 0, len(existing)+len(tags))
	merged = append(merged, existing...)
	for _, tag := range tags {
		if !slices.Contains(merged, tag) {
			merged = append(merged, tag)
		}
	}
	return merged
}
