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

package kubernetes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifests = `
apiVersion: networking.k8s.io/v1
kind: Ingress
metadata:
  name: foo-service
  namespace: default
  annotations:
    consulk8s/service: foo
spec:
  rules:
  - host: foo.test.tld
    http:
      paths:
      - path: /
        pathType: Prefix
        backend:
          service:
            name: foo
            port:
              number: 8080
status:
  loadBalancer:
    ingress:
    - ip: 127.0.0.5
---
# comments and empty documents are skipped
---
apiVersion: v1
kind: Service
metadata:
  name: ignored
  namespace: default
---
apiVersion: traefik.io/v1alpha1
kind: IngressRoute
metadata:
  name: bar-route
  namespace: web
spec:
  entryPoints: [websecure]
  routes:
  - match: Host(` + "`bar.test.tld`" + `) && PathPrefix(` + "`/api`" + `)
    kind: Rule
    services:
    - name: bar
      port: 443
---
apiVersion: v1
kind: List
items:
- apiVersion: networking.k8s.io/v1
  kind: Ingress
  metadata:
    name: baz-service
    namespace: other
  spec:
    rules:
    - host: baz.test.tld
`

func TestLoadManifests(t *testing.T) {
	src, err := LoadManifests(strings.NewReader(testManifests))
	require.NoError(t, err)

	require.Len(t, src.Ingresses, 2)

	foo := src.Ingresses[0]
	assert.Equal(t, "default", foo.Namespace)
	assert.Equal(t, "foo-service", foo.Name)
	assert.Equal(t, "foo", foo.Annotations["consulk8s/service"])
	require.Len(t, foo.Spec.Rules, 1)
	assert.Equal(t, "foo.test.tld", foo.Spec.Rules[0].Host)
	assert.EqualValues(t, 8080, foo.Spec.Rules[0].HTTP.Paths[0].Backend.Service.Port.Number)
	require.Len(t, foo.Status.LoadBalancer.Ingress, 1)
	assert.Equal(t, "127.0.0.5", foo.Status.LoadBalancer.Ingress[0].IP)

	assert.Equal(t, "other/baz-service", src.Ingresses[1].Namespace+"/"+src.Ingresses[1].Name)

	require.Len(t, src.IngressRoutes, 1)
	route := src.IngressRoutes[0]
	assert.Equal(t, "web", route.GetNamespace())
	assert.Equal(t, "bar-route", route.GetName())

	ingresses, err := src.ListIngresses(context.Background())
	require.NoError(t, err)
	assert.Len(t, ingresses, 2)

	routes, err := src.ListIngressRoutes(context.Background())
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestLoadManifestsEmpty(t *testing.T) {
	src, err := LoadManifests(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, src.Ingresses)
	assert.Empty(t, src.IngressRoutes)
}

func TestLoadManifestsErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		errorMsg string
	}{
		{
			name:     "invalid yaml",
			input:    "kind: [Ingress",
			errorMsg: "failed to decode document 0",
		},
		{
			name:     "missing kind",
			input:    "apiVersion: v1\nmetadata:\n  name: foo\n",
			errorMsg: "document 0",
		},
		{
			name: "invalid ingress",
			input: `apiVersion: networking.k8s.io/v1
kind: Ingress
metadata:
  name: foo
spec:
  rules: not-a-list
`,
			errorMsg: "failed to convert Ingress",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadManifests(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorMsg)
		})
	}
}
