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
	"context"
	"fmt"
	"net/http"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

// AgentPublisher registers services through the Consul agent HTTP API.
// Like SinkPublisher it stops at the first failed registration.
type AgentPublisher struct {
	Agent      *consulapi.Agent
	SkipChecks bool
	Log        *zap.SugaredLogger
}

var _ Publisher = &AgentPublisher{}

// NewAgentPublisher connects to the agent at address. An empty address
// falls back to the CONSUL_HTTP_ADDR environment variable and then to the
// local agent.
func NewAgentPublisher(log *zap.SugaredLogger, address string, skipChecks bool) (*AgentPublisher, error) {
	cfg := consulapi.DefaultConfig()
	if address != "" {
		cfg.Address = address
	}

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &AgentPublisher{
		Agent:      client.Agent(),
		SkipChecks: skipChecks,
		Log:        log,
	}, nil
}

func (p *AgentPublisher) Publish(ctx context.Context, services []consulv1.Service) (Outcome, error) {
	outcome := Outcome{Changed: true}
	opts := consulapi.ServiceRegisterOpts{ReplaceExistingChecks: true}.WithContext(ctx)

	for _, svc := range services {
		l := p.Log.With("service", svc.Name)

		if p.SkipChecks {
			svc = svc.WithoutChecks()
		}

		if err := p.Agent.ServiceRegisterOpts(toAgentRegistration(svc), opts); err != nil {
			outcome.Status = 0
			l.Errorw("Failed to register service with consul agent, skipping remaining services", "error", err)
			return outcome, nil
		}

		outcome.Status = http.StatusOK
		l.Debug("Registered service with consul agent")
	}

	return outcome, nil
}

// toAgentRegistration converts a service into the agent API representation,
// tagged like services sent to a sink.
func toAgentRegistration(svc consulv1.Service) *consulapi.AgentServiceRegistration {
	svc = svc.ForSink()

	reg := &consulapi.AgentServiceRegistration{
		ID:      consulv1.ServiceID(svc.Name),
		Name:    svc.Name,
		Tags:    svc.Tags,
		Port:    svc.Port,
		Address: svc.Address,
	}

	for _, check := range svc.Checks {
		reg.Checks = append(reg.Checks, &consulapi.AgentServiceCheck{
			Name:          check.Name,
			Notes:         check.Notes,
			HTTP:          check.HTTP,
			Header:        check.Header,
			Interval:      check.Interval,
			Timeout:       check.Timeout,
			TLSSkipVerify: check.TLSSkipVerify,
		})
	}

	return reg
}
