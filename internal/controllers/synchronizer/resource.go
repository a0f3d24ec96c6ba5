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
	"strings"

	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Resource is an ingress-like object that can be converted into a Consul
// service. It is implemented by IngressResource and RouteResource only.
type Resource interface {
	metav1.Object

	// ResourceKind names the resource in diagnostics.
	ResourceKind() string
	// facts extracts everything the converter needs from the object.
	facts() resourceFacts
	// serviceName derives a service name from the resource host.
	serviceName(host, sinkDomain string) string
}

// resourceFacts holds the values read from the object itself, before any
// annotation override is applied.
type resourceFacts struct {
	// hasHosts is false when the object has no rules (or routes) at all.
	hasHosts bool
	host     string
	address  string
	port     int
}

// IngressResource wraps a networking.k8s.io/v1 Ingress.
type IngressResource struct {
	*networkingv1.Ingress
}

var _ Resource = IngressResource{}

func (IngressResource) ResourceKind() string {
	return "Ingress"
}

func (r IngressResource) facts() resourceFacts {
	f := resourceFacts{}

	if rules := r.Spec.Rules; len(rules) > 0 {
		f.hasHosts = true
		f.host = rules[0].Host

		if http := rules[0].HTTP; http != nil && len(http.Paths) > 0 {
			if backend := http.Paths[0].Backend.Service; backend != nil && backend.Port.Number > 0 {
				f.port = int(backend.Port.Number)
			}
		}
	}

	for _, lb := range r.Status.LoadBalancer.Ingress {
		if lb.IP != "" {
			f.address = lb.IP
			break
		}
	}

	return f
}

// serviceName strips a trailing sink domain from the ingress host, so that
// "foo.example.com" becomes "foo" for the domain "example.com".
func (IngressResource) serviceName(host, sinkDomain string) string {
	domain := strings.Trim(sinkDomain, ".")
	if domain == "" {
		return host
	}
	if trimmed, ok := strings.CutSuffix(host, "."+domain); ok && trimmed != "" {
		return trimmed
	}
	return host
}

// RouteResource wraps a Traefik IngressRoute read through the dynamic client.
// Only spec.routes[].match is consulted; the backend port and load balancer
// status are not available on this kind.
type RouteResource struct {
	*unstructured.Unstructured
}

var _ Resource = RouteResource{}

func (RouteResource) ResourceKind() string {
	return "IngressRoute"
}

func (r RouteResource) facts() resourceFacts {
	f := resourceFacts{}

	routes, found, err := unstructured.NestedSlice(r.Object, "spec", "routes")
	if err != nil || !found || len(routes) == 0 {
		return f
	}
	f.hasHosts = true

	if route, ok := routes[0].(map[string]interface{}); ok {
		if match, ok := route["match"].(string); ok {
			f.host = hostFromMatch(match)
		}
	}

	return f
}

func (RouteResource) serviceName(host, _ string) string {
	return host
}

// resourceKey returns "namespace/name", or an empty string when either part is missing.
func resourceKey(obj metav1.Object) string {
	if obj.GetNamespace() == "" || obj.GetName() == "" {
		return ""
	}
	return obj.GetNamespace() + "/" + obj.GetName()
}

// displayName names the object in error messages even when it has no namespace.
func displayName(obj metav1.Object) string {
	if key := resourceKey(obj); key != "" {
		return key
	}
	return obj.GetNamespace() + "/" + obj.GetName()
}
