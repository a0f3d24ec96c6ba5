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
	"errors"
	"fmt"
)

var (
	// ErrBadPort is returned when the port annotation is not a valid port number.
	ErrBadPort = errors.New("bad port")
	// ErrNoHost is returned when no host can be determined for a resource.
	ErrNoHost = errors.New("has no host")
)

// ConversionError reports a resource that cannot be converted. It aborts the
// whole run so that the destination is never updated from a partial set.
type ConversionError struct {
	Kind     string
	Resource string
	// Value is the offending input, if any.
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q %s: %s", e.Kind, e.Resource, e.Err, e.Value)
	}
	return fmt.Sprintf("%s %q %s", e.Kind, e.Resource, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func newConversionError(res Resource, err error, value string) *ConversionError {
	return &ConversionError{
		Kind:     res.ResourceKind(),
		Resource: displayName(res),
		Value:    value,
		Err:      err,
	}
}
