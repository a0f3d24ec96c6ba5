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
	"strconv"
	"strings"

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"

	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ConvertOptions controls how resources are converted into services.
type ConvertOptions struct {
	// DefaultIP is registered, and checked, when neither an address annotation
	// nor a load balancer IP is available.
	DefaultIP string
	// CheckInterval is the Consul check interval, e.g. "30s".
	CheckInterval string
	// HostAsName derives the service name from the resource host.
	HostAsName bool
	// SinkDomain is stripped from ingress hosts when HostAsName is set.
	SinkDomain string
}

// BuildServices converts ingresses and routes into services, in input order,
// ingress-derived services first. Resources without a usable name are
// skipped. The first conversion error aborts the build.
func BuildServices(
	ingresses []networkingv1.Ingress,
	routes []unstructured.Unstructured,
	opts ConvertOptions,
) ([]consulv1.Service, error) {
	resources := make([]Resource, 0, len(ingresses)+len(routes))
	for i := range ingresses {
		resources = append(resources, IngressResource{Ingress: &ingresses[i]})
	}
	for i := range routes {
		resources = append(resources, RouteResource{Unstructured: &routes[i]})
	}

	services := make([]consulv1.Service, 0, len(resources))
	for _, res := range resources {
		svc, err := convertResourceToService(res, opts)
		if err != nil {
			return nil, err
		}
		if svc != nil {
			services = append(services, *svc)
		}
	}

	return services, nil
}

// convertResourceToService converts one resource into a service, or returns
// nil when the resource has no name. Annotations take precedence over values
// read from the resource, which take precedence over defaults:
//
//   - name:       host (HostAsName) > consulk8s/service > "namespace/name"
//   - address:    consulk8s/address > load balancer IP > DefaultIP
//   - port:       consulk8s/port > backend port > 80
//   - check host: consulk8s/check_host > first rule host
func convertResourceToService(res Resource, opts ConvertOptions) (*consulv1.Service, error) {
	ann := res.GetAnnotations()
	f := res.facts()

	name, err := resolveName(res, f, opts)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}

	address := lookupAnnotation(ann, consulv1.AnnotationAddress, f.address)
	if address == "" {
		address = opts.DefaultIP
	}

	port := consulv1.DefaultPort
	if f.port > 0 {
		port = f.port
	}
	if raw := lookupAnnotation(ann, consulv1.AnnotationPort, ""); raw != "" {
		port, err = parsePort(raw)
		if err != nil {
			return nil, newConversionError(res, ErrBadPort, raw)
		}
	}

	checkHost := lookupAnnotation(ann, consulv1.AnnotationCheckHost, f.host)
	if checkHost == "" {
		return nil, newConversionError(res, ErrNoHost, "")
	}

	checkTimeout := lookupAnnotation(ann, consulv1.AnnotationCheckTimeout, consulv1.DefaultCheckTimeout)
	checkPath := strings.TrimLeft(lookupAnnotation(ann, consulv1.AnnotationCheckPath, ""), "/")

	check := consulv1.NewHTTPCheck(name, checkHost, address, port, checkPath, opts.CheckInterval, checkTimeout)
	check.TLSSkipVerify = ann[consulv1.AnnotationTLSSkipVerify] == "true"

	return &consulv1.Service{
		ID:      consulv1.ServiceID(name),
		Name:    name,
		Address: address,
		Port:    port,
		Checks:  []consulv1.Check{check},
	}, nil
}

// resolveName returns the service name of a resource, or an empty string when
// the resource must be skipped.
//
// Without HostAsName a resource is only managed once it carries at least one
// consulk8s annotation; an annotated resource without consulk8s/service is
// named after its namespace and name.
func resolveName(res Resource, f resourceFacts, opts ConvertOptions) (string, error) {
	ann := res.GetAnnotations()

	if opts.HostAsName {
		if !f.hasHosts {
			return "", newConversionError(res, ErrNoHost, "")
		}
		if name := res.serviceName(f.host, opts.SinkDomain); name != "" {
			return name, nil
		}
	}

	if name := lookupAnnotation(ann, consulv1.AnnotationService, ""); name != "" {
		return name, nil
	}

	if !opts.HostAsName && !hasManagedAnnotation(ann) {
		return "", nil
	}

	return resourceKey(res), nil
}

// lookupAnnotation returns the annotation value for key, or def when the
// annotation is absent or empty.
func lookupAnnotation(annotations map[string]string, key, def string) string {
	if v := annotations[key]; v != "" {
		return v
	}
	return def
}

func hasManagedAnnotation(annotations map[string]string) bool {
	for key := range annotations {
		if strings.HasPrefix(key, consulv1.AnnotationPrefix) {
			return true
		}
	}
	return false
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if port < 0 || port > 65535 {
		return 0, strconv.ErrRange
	}
	return port, nil
}
