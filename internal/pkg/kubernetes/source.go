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
	"fmt"

	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/dynamic"
	ctrlruntimeclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// IngressRouteGVRs lists the Traefik IngressRoute resources in lookup order:
// the current API group first, then the group used before Traefik v3.
var IngressRouteGVRs = []schema.GroupVersionResource{
	{Group: "traefik.io", Version: "v1alpha1", Resource: "ingressroutes"},
	{Group: "traefik.containo.us", Version: "v1alpha1", Resource: "ingressroutes"},
}

// ClusterSource lists ingress resources from a live cluster.
type ClusterSource struct {
	Client    ctrlruntimeclient.Client
	Dynamic   dynamic.Interface
	Namespace string
}

// ListIngresses returns networking.k8s.io/v1 Ingresses.
func (s *ClusterSource) ListIngresses(ctx context.Context) ([]networkingv1.Ingress, error) {
	list := &networkingv1.IngressList{}

	var opts []ctrlruntimeclient.ListOption
	if s.Namespace != "" {
		opts = append(opts, ctrlruntimeclient.InNamespace(s.Namespace))
	}

	if err := s.Client.List(ctx, list, opts...); err != nil {
		return nil, fmt.Errorf("failed to list ingresses: %w", err)
	}

	return list.Items, nil
}

// ListIngressRoutes returns the IngressRoutes of every served API group,
// current group first. Traefik 2.10 and 2.11 serve both groups from separate
// CRDs; an object present in both is returned once, from the current group.
// A cluster without the IngressRoute CRD yields an empty list.
func (s *ClusterSource) ListIngressRoutes(ctx context.Context) ([]unstructured.Unstructured, error) {
	var routes []unstructured.Unstructured
	seen := sets.New[string]()

	for _, gvr := range IngressRouteGVRs {
		var ri dynamic.ResourceInterface = s.Dynamic.Resource(gvr)
		if s.Namespace != "" {
			ri = s.Dynamic.Resource(gvr).Namespace(s.Namespace)
		}

		list, err := ri.List(ctx, metav1.ListOptions{})
		if err != nil {
			if isNotServed(err) {
				continue
			}
			return nil, fmt.Errorf("failed to list %s: %w", gvr.GroupResource(), err)
		}

		for _, item := range list.Items {
			key := item.GetNamespace() + "/" + item.GetName()
			if seen.Has(key) {
				continue
			}
			seen.Insert(key)
			routes = append(routes, item)
		}
	}

	return routes, nil
}

func isNotServed(err error) bool {
	return apierrors.IsNotFound(err) || meta.IsNoMatchError(err)
}
