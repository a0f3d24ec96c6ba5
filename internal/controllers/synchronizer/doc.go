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

// Package synchronizer converts Ingress and Traefik IngressRoute resources
// into Consul service definitions and publishes them.
//
// Each resource yields at most one service with a single HTTP check. Values
// are resolved with the following precedence: annotation > resource > default.
// The consulk8s/* annotations are:
//
//   - consulk8s/service: service name
//   - consulk8s/address: registered and checked address
//   - consulk8s/port: service port, must be an integer
//   - consulk8s/check_host: Host header of the check
//   - consulk8s/check_path: path of the check
//   - consulk8s/check_timeout: check timeout, "2s" by default
//   - consulk8s/tls_skip_verify: "true" disables certificate verification
//
// Unless services are named after their host, a resource is only converted
// once it carries at least one consulk8s/* annotation; annotations of other
// controllers, such as kubernetes.io/ingress.class, do not count. A resource
// without consulk8s/service is named "namespace/name".
//
// A run is one-shot: resources are listed once, converted, and published.
// A resource with an invalid port or without any host aborts the run before
// anything is published.
package synchronizer
