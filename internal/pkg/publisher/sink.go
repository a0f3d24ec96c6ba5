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
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

const defaultSinkTimeout = 10 * time.Second

// SinkPublisher registers services one at a time with an HTTP PUT each.
// It stops at the first request that does not return 200 OK; there is no retry.
type SinkPublisher struct {
	Client     *http.Client
	URL        string
	SkipChecks bool
	Log        *zap.SugaredLogger
}

var _ Publisher = &SinkPublisher{}

// NewSinkPublisher returns a SinkPublisher sending to hostPort and path.
// A zero timeout uses a 10 second default.
func NewSinkPublisher(log *zap.SugaredLogger, hostPort, path string, skipChecks bool, timeout time.Duration) (*SinkPublisher, error) {
	sinkURL, err := SinkURL(hostPort, path)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout

	return &SinkPublisher{
		Client:     client,
		URL:        sinkURL,
		SkipChecks: skipChecks,
		Log:        log,
	}, nil
}

// SinkURL builds the registration URL. The scheme is https when the sink port
// is 443 and http otherwise. A sink given as a URL keeps its own scheme unless
// its port is 443, which always uses https.
func SinkURL(sink, path string) (string, error) {
	if sink == "" {
		return "", fmt.Errorf("sink address is empty")
	}

	path = "/" + strings.TrimLeft(path, "/")

	if strings.Contains(sink, "://") {
		u, err := url.Parse(strings.TrimRight(sink, "/"))
		if err != nil {
			return "", fmt.Errorf("invalid sink URL %q: %w", sink, err)
		}
		if u.Port() == "443" {
			u.Scheme = "https"
		}
		return u.String() + path, nil
	}

	scheme := "http"
	if _, port, err := net.SplitHostPort(sink); err == nil && port == "443" {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s%s", scheme, strings.TrimRight(sink, "/"), path), nil
}

// Publish always reports a change: the sink keeps no state consulk8s could compare against.
func (p *SinkPublisher) Publish(ctx context.Context, services []consulv1.Service) (Outcome, error) {
	outcome := Outcome{Changed: true}

	for _, svc := range services {
		l := p.Log.With("service", svc.Name, "url", p.URL)

		if p.SkipChecks {
			svc = svc.WithoutChecks()
		}
		svc = svc.ForSink()

		body, err := Marshal(svc)
		if err != nil {
			return outcome, fmt.Errorf("failed to serialize service %q: %w", svc.Name, err)
		}

		status, err := p.put(ctx, body)
		outcome.Status = status
		if err != nil {
			l.Errorw("Failed to register service", "error", err)
			return outcome, nil
		}
		if status != http.StatusOK {
			l.Warnw("Sink rejected service, skipping remaining services", "status", status)
			return outcome, nil
		}

		l.Debugw("Registered service", "status", status)
	}

	return outcome, nil
}

func (p *SinkPublisher) put(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
