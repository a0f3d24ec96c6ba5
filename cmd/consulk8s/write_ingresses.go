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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/consulk8s/consulk8s/internal/controllers/synchronizer"
	"github.com/consulk8s/consulk8s/internal/pkg/command"
	"github.com/consulk8s/consulk8s/internal/pkg/kubernetes"
	"github.com/consulk8s/consulk8s/internal/pkg/publisher"
	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"

	kerrors "k8s.io/apimachinery/pkg/util/errors"
)

type writeIngressesOptions struct {
	serviceFile    string
	defaultIP      string
	checkInterval  string
	changeCode     int
	changeCommand  string
	commandTimeout time.Duration
	skipChecks     bool
	hostAsName     bool
	sinkURL        string
	sinkDomain     string
	sinkPath       string
	sinkTimeout    time.Duration
	consulAgent    string
	manifests      string
	namespace      string
	timeout        time.Duration
}

func newWriteIngressesCmd(root *rootOptions) *cobra.Command {
	o := &writeIngressesOptions{}

	cmd := &cobra.Command{
		Use:   "write-ingresses",
		Short: "Publish the cluster ingresses as Consul services",
		Long: "write-ingresses converts annotated Ingress and IngressRoute resources into Consul\n" +
			"service definitions. The definitions are written to --service-file, or PUT to\n" +
			"--sink-url, or registered with the agent at --consul-agent.\n\n" +
			"The exit code is --code-when-changed when the services changed, 0 when they did\n" +
			"not and 1 on error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWriteIngresses(cmd.Context(), root, o)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&o.serviceFile, "service-file", "s", consulv1.DefaultServiceFile, "Path of the Consul service file to write")
	fs.StringVar(&o.defaultIP, "default-ip", consulv1.DefaultCheckIP, "Address registered when an ingress has no load balancer IP")
	fs.StringVarP(&o.checkInterval, "check-interval", "i", consulv1.DefaultInterval, "Interval of the HTTP checks")
	fs.IntVar(&o.changeCode, "code-when-changed", 0, "Exit code reported when the services changed")
	fs.StringVar(&o.changeCommand, "change-command", "", "Shell command run when the services changed, e.g. \"consul reload\"")
	fs.DurationVar(&o.commandTimeout, "command-timeout", 0, "Maximum duration of the change command, 0 for none")
	fs.BoolVar(&o.skipChecks, "skip-checks", false, "Do not register HTTP checks")
	fs.BoolVar(&o.hostAsName, "host-as-name", false, "Use the ingress host as service name")
	fs.StringVar(&o.sinkURL, "sink-url", "", "host:port or URL of an HTTP registration endpoint, replaces the service file. Port 443 uses https; otherwise a URL keeps its scheme")
	fs.StringVar(&o.sinkDomain, "sink-domain", "", "Domain stripped from hosts used as service names")
	fs.StringVar(&o.sinkPath, "sink-path", consulv1.DefaultSinkPath, "Path of the registration endpoint")
	fs.DurationVar(&o.sinkTimeout, "sink-timeout", 10*time.Second, "Timeout of each registration request")
	fs.StringVar(&o.consulAgent, "consul-agent", "", "Address of a Consul agent to register the services with, replaces the service file")
	fs.StringVar(&o.manifests, "manifests", "", "Read resources from a YAML file (\"-\" for stdin) instead of the cluster")
	fs.StringVarP(&o.namespace, "namespace", "n", "", "Only read resources of this namespace")
	fs.DurationVar(&o.timeout, "timeout", 0, "Maximum duration of the whole run, 0 for none")
	fs.BoolVarP(&root.verbose, "verbose", "v", false, "Alias of --log-debug")
	fs.SetNormalizeFunc(aliasFlags)

	cmd.MarkFlagsMutuallyExclusive("sink-url", "consul-agent")
	_ = cmd.MarkFlagFilename("service-file", "json")
	_ = cmd.MarkFlagFilename("manifests", "yaml", "yml", "json")

	return cmd
}

// aliasFlags keeps the names used by earlier releases working.
func aliasFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "check-ip":
		name = "default-ip"
	}
	return pflag.NormalizedName(name)
}

func (o *writeIngressesOptions) validate() error {
	var errs []error

	if _, err := time.ParseDuration(o.checkInterval); err != nil {
		errs = append(errs, fmt.Errorf("invalid check interval %q: %w", o.checkInterval, err))
	}

	if o.defaultIP == "" {
		errs = append(errs, fmt.Errorf("default IP cannot be empty"))
	}

	if o.changeCode < 0 || o.changeCode > 255 {
		errs = append(errs, fmt.Errorf("code when changed must be between 0 and 255"))
	}

	if o.commandTimeout < 0 {
		errs = append(errs, fmt.Errorf("command timeout must be a non-negative duration"))
	}

	if o.timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be a non-negative duration"))
	}

	if o.sinkURL == "" && o.consulAgent == "" && o.serviceFile == "" {
		errs = append(errs, fmt.Errorf("service file cannot be empty"))
	}

	return kerrors.NewAggregate(errs)
}

func runWriteIngresses(ctx context.Context, root *rootOptions, o *writeIngressesOptions) error {
	if err := o.validate(); err != nil {
		return err
	}

	l := root.logger
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	source, err := newSource(root, o)
	if err != nil {
		return err
	}

	pub, err := newPublisher(l.Named("publisher"), o)
	if err != nil {
		return err
	}

	cfg := &synchronizer.Config{
		Log:        l.Named("synchronizer"),
		Source:     source,
		Publisher:  pub,
		Command:    o.changeCommand,
		ChangeCode: o.changeCode,
		Convert: synchronizer.ConvertOptions{
			DefaultIP:     o.defaultIP,
			CheckInterval: o.checkInterval,
			HostAsName:    o.hostAsName,
			SinkDomain:    o.sinkDomain,
		},
	}
	if o.changeCommand != "" {
		runner := command.NewShellRunner(l.Named("command"), o.commandTimeout)
		runner.Stdout = root.stdout
		runner.Stderr = root.stderr
		cfg.Runner = runner
	}

	s, err := synchronizer.New(cfg)
	if err != nil {
		return err
	}

	result, err := s.Run(ctx)
	if err != nil {
		return err
	}

	if result.ExitCode != 0 {
		return &exitError{code: result.ExitCode}
	}

	return nil
}

func newSource(root *rootOptions, o *writeIngressesOptions) (synchronizer.Source, error) {
	if o.manifests != "" {
		return loadManifests(o.manifests)
	}

	cfg, err := kubernetes.NewRESTConfig(root.kubeconfig, root.kubeContext)
	if err != nil {
		return nil, err
	}

	return kubernetes.NewClusterSource(cfg, o.namespace)
}

func loadManifests(path string) (*kubernetes.StaticSource, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open manifests: %w", err)
		}
		defer f.Close()
		r = f
	}

	return kubernetes.LoadManifests(r)
}

func newPublisher(l *zap.SugaredLogger, o *writeIngressesOptions) (publisher.Publisher, error) {
	switch {
	case o.sinkURL != "":
		return publisher.NewSinkPublisher(l, o.sinkURL, o.sinkPath, o.skipChecks, o.sinkTimeout)
	case o.consulAgent != "":
		return publisher.NewAgentPublisher(l, o.consulAgent, o.skipChecks)
	default:
		return publisher.NewFilePublisher(l, o.serviceFile, o.skipChecks), nil
	}
}
