//go:build e2e

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

package e2e_test

import (
	"context"
	"errors"
	"time"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/e2e-framework/klient"
	"sigs.k8s.io/e2e-framework/klient/wait"
)

const testNamespace = "consulk8s-e2e"

var errClientNotInitialized = errors.New("client is not initialized")

type suite struct {
	client     client.Client
	restConfig *rest.Config
}

func (s *suite) withClient(kl klient.Client) error {
	scheme := runtime.NewScheme()

	schemeBuilders := []runtime.SchemeBuilder{
		corev1.SchemeBuilder,
		networkingv1.SchemeBuilder,
	}

	for _, builder := range schemeBuilders {
		if err := builder.AddToScheme(scheme); err != nil {
			return err
		}
	}

	cl, err := client.New(kl.RESTConfig(), client.Options{Scheme: scheme})
	if err != nil {
		return err
	}

	s.client = cl
	s.restConfig = kl.RESTConfig()
	return nil
}

func (s *suite) ensureNamespace(ctx context.Context) error {
	if s.client == nil {
		return errClientNotInitialized
	}

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: testNamespace}}
	if err := s.client.Create(ctx, ns); err != nil && !apierrors.IsAlreadyExists(err) {
		return err
	}

	return nil
}

func (s *suite) deleteNamespace(ctx context.Context) error {
	if s.client == nil {
		return errClientNotInitialized
	}

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: testNamespace}}
	if err := s.client.Delete(ctx, ns); err != nil && !apierrors.IsNotFound(err) {
		return err
	}

	return nil
}

func (s *suite) cleanupAllIngresses(ctx context.Context) error {
	if s.client == nil {
		return errClientNotInitialized
	}

	return waitFor(ctx, func(ctx context.Context) (bool, error) {
		ingresses := networkingv1.IngressList{}
		err := s.client.List(ctx, &ingresses, client.InNamespace(testNamespace))
		if err != nil {
			return false, err
		}

		for _, ing := range ingresses.Items {
			err := s.client.Delete(ctx, &ing)
			if err != nil && !apierrors.IsNotFound(err) {
				return false, nil
			}
		}

		err = s.client.List(ctx, &ingresses, client.InNamespace(testNamespace))
		if err != nil {
			return false, err
		}

		return len(ingresses.Items) == 0, nil
	})
}

func (s *suite) cleanup(ctx context.Context) error {
	return s.cleanupAllIngresses(ctx)
}

const (
	timeout  = time.Minute * 1
	interval = time.Second * 1
)

func waitFor(ctx context.Context, f func(ctx context.Context) (bool, error)) error {
	err := wait.For(
		f,
		wait.WithTimeout(timeout),
		wait.WithInterval(interval),
		wait.WithContext(ctx),
	)

	return err
}
