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
	"github.com/grafana/regexp"
)

// hostMatcher finds the first host of a Traefik rule such as
//
//	Host(`foo.example.com`) && PathPrefix(`/api`)
//	Host(`a.example.com`, `b.example.com`)
//
// Whitespace is allowed around the backtick-quoted host. HostSNI and
// HostRegexp matchers are not considered.
var hostMatcher = regexp.MustCompile("(?:^|[^A-Za-z])Host\\(\\s*`([^`]+)`")

// hostFromMatch returns the first host token of a route match expression,
// or an empty string when the expression has no Host matcher.
func hostFromMatch(match string) string {
	m := hostMatcher.FindStringSubmatch(match)
	if m == nil {
		return ""
	}
	return m[1]
}
