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

const (
	// AnnotationPrefix is shared by every annotation consulk8s reads.
	AnnotationPrefix = "consulk8s/"

	// AnnotationService overrides the Consul service name.
	AnnotationService = AnnotationPrefix + "service"
	// AnnotationAddress overrides the address registered for the service
	// and used by its HTTP check.
	AnnotationAddress = AnnotationPrefix + "address"
	// AnnotationPort overrides the service port. The value must be an integer.
	AnnotationPort = AnnotationPrefix + "port"
	// AnnotationCheckHost sets the Host header sent by the HTTP check.
	AnnotationCheckHost = AnnotationPrefix + "check_host"
	// AnnotationCheckPath sets the path requested by the HTTP check.
	AnnotationCheckPath = AnnotationPrefix + "check_path"
	// AnnotationCheckTimeout sets the HTTP check timeout.
	AnnotationCheckTimeout = AnnotationPrefix + "check_timeout"
	// AnnotationTLSSkipVerify disables certificate verification of the HTTP
	// check when set to the literal "true".
	AnnotationTLSSkipVerify = AnnotationPrefix + "tls_skip_verify"
)

const (
	// ServiceIDPrefix is prepended to the service name to build its ID.
	ServiceIDPrefix = "consulk8s_"

	DefaultPort         = 80
	DefaultCheckTimeout = "2s"
	DefaultInterval     = "30s"
	DefaultCheckIP      = "127.0.0.1"
	DefaultServiceFile  = "/etc/consul.d/consulk8s_services.json"
	DefaultConsulURL    = "http://localhost:8500"
	DefaultSinkPath     = "/v1/agent/service/register"
)

// SinkTags are appended to every service relayed to an HTTP sink or a Consul agent.
var SinkTags = []string{"k8s", "k8s-ingress"}
