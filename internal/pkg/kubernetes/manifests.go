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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// StaticSource serves resources loaded ahead of time, e.g. from manifests.
type StaticSource struct {
	Ingresses     []networkingv1.Ingress
	IngressRoutes []unstructured.Unstructured
}

func (s *StaticSource) ListIngresses(_ context.Context) ([]networkingv1.Ingress, error) {
	return s.Ingresses, nil
}

func (s *StaticSource) ListIngressRoutes(_ context.Context) ([]unstructured.Unstructured, error) {
	return s.IngressRoutes, nil
}

// LoadManifests reads a multi-document YAML (or JSON) stream of Ingress and
// IngressRoute objects, as printed by `kubectl get ingress -A -o yaml`.
// List kinds are flattened; other kinds are ignored.
func LoadManifests(r io.Reader) (*StaticSource, error) {
	src := &StaticSource{}
	dec := yaml.NewDecoder(r)

	for i := 0; ; i++ {
		doc := map[string]interface{}{}
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode document %d: %w", i, err)
		}
		if len(doc) == 0 {
			continue
		}

		obj, err := toUnstructured(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		if err := src.add(obj); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}

	return src, nil
}

func (s *StaticSource) add(obj *unstructured.Unstructured) error {
	gvk := obj.GroupVersionKind()

	switch {
	case obj.IsList():
		return obj.EachListItem(func(item runtime.Object) error {
			u, ok := item.(*unstructured.Unstructured)
			if !ok {
				return fmt.Errorf("unexpected list item %T", item)
			}
			return s.add(u)
		})

	case gvk.Group == networkingv1.GroupName && gvk.Kind == "Ingress":
		ing := networkingv1.Ingress{}
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &ing); err != nil {
			return fmt.Errorf("failed to convert Ingress %s/%s: %w", obj.GetNamespace(), obj.GetName(), err)
		}
		s.Ingresses = append(s.Ingresses, ing)

	case strings.HasPrefix(gvk.Group, "traefik.") && gvk.Kind == "IngressRoute":
		s.IngressRoutes = append(s.IngressRoutes, *obj)
	}

	return nil
}

// toUnstructured round-trips through JSON so that numbers end up as the
// int64/float64 values unstructured objects expect.
func toUnstructured(doc map[string]interface{}) (*unstructured.Unstructured, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}

	return obj, nil
}
