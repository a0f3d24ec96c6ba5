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

package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

func testServices() []consulv1.Service {
	return []consulv1.Service{
		{
			ID:      consulv1.ServiceID("foo"),
			Name:    "foo",
			Address: "127.0.0.5",
			Port:    80,
			Checks: []consulv1.Check{
				consulv1.NewHTTPCheck("foo", "foo.test.tld", "127.0.0.5", 80, "", "30s", "2s"),
			},
		},
		{
			ID:      consulv1.ServiceID("bar"),
			Name:    "bar",
			Address: "127.0.0.4",
			Port:    443,
			Checks: []consulv1.Check{
				consulv1.NewHTTPCheck("bar", "bar.test.tld", "127.0.0.4", 443, "health", "30s", "5s"),
			},
		},
	}
}

const expectedServiceFile = `{
  "services": [
    {
      "id": "consulk8s_foo",
      "name": "foo",
      "address": "127.0.0.5",
      "port": 80,
      "checks": [
        {
          "name": "foo check",
          "notes": "HTTP check foo.test.tld on port 80 every 30s",
          "http": "http://127.0.0.5:80/",
          "interval": "30s",
          "header": {
            "Host": [
              "foo.test.tld"
            ]
          },
          "timeout": "2s"
        }
      ]
    }
  ]
}
`

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := Marshal(consulv1.ServiceFile{Services: testServices()[:1]})
	require.NoError(t, err)
	assert.Equal(t, expectedServiceFile, string(data))
}

func TestMarshalEmpty(t *testing.T) {
	t.Parallel()

	data, err := Marshal(consulv1.ServiceFile{Services: []consulv1.Service{}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"services\": []\n}\n", string(data))
}

func TestMarshalIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Marshal(consulv1.ServiceFile{Services: testServices()})
	require.NoError(t, err)

	for range 10 {
		again, err := Marshal(consulv1.ServiceFile{Services: testServices()})
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestHasChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serialized     string
		previous       string
		previousExists bool
		expected       bool
	}{
		{
			name:           "missing previous content",
			serialized:     "{}\n",
			previousExists: false,
			expected:       true,
		},
		{
			name:           "missing previous content with empty new content",
			serialized:     "",
			previousExists: false,
			expected:       true,
		},
		{
			name:           "identical content",
			serialized:     "{}\n",
			previous:       "{}\n",
			previousExists: true,
			expected:       false,
		},
		{
			name:           "trailing newline differs",
			serialized:     "{}\n",
			previous:       "{}",
			previousExists: true,
			expected:       true,
		},
		{
			name:           "empty previous file",
			serialized:     "{}\n",
			previous:       "",
			previousExists: true,
			expected:       true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HasChanged([]byte(tc.serialized), []byte(tc.previous), tc.previousExists)
			assert.Equal(t, tc.expected, got)
		})
	}
}
