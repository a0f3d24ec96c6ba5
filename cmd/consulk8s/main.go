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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	cklog "github.com/consulk8s/consulk8s/internal/pkg/log"

	ctrl "sigs.k8s.io/controller-runtime"
	ctrlruntimelog "sigs.k8s.io/controller-runtime/pkg/log"
)

const envPrefix = "CONSULK8S"

// rootOptions are shared by all subcommands.
type rootOptions struct {
	kubeconfig  string
	kubeContext string
	configFile  string
	verbose     bool
	log         cklog.Options

	stdout io.Writer
	stderr io.Writer

	logger *zap.SugaredLogger
}

// exitError carries the process exit code of a command. err is nil when the
// code reports an outcome rather than a failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &rootOptions{
		log:    cklog.NewDefaultOptions(),
		stdout: stdout,
		stderr: stderr,
	}

	cmd := &cobra.Command{
		Use:   "consulk8s",
		Short: "Register Kubernetes ingresses as Consul services",
		Long: "consulk8s reads Ingress and Traefik IngressRoute resources and publishes them\n" +
			"as Consul service definitions, to a file, an HTTP sink or a Consul agent.",
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&o.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file, defaults to the standard loading rules")
	pfs.StringVar(&o.kubeContext, "context", "", "Kubeconfig context to use")
	pfs.StringVar(&o.configFile, "config", "", "Optional YAML file holding flag values")
	o.log.AddPFlags(pfs)

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		if err := bindConfig(c.Flags(), o.configFile); err != nil {
			return err
		}

		if err := o.log.Validate(); err != nil {
			return err
		}

		rawLog := cklog.NewFromOptions(cklog.Options{
			Debug:  o.log.Debug || o.verbose,
			Format: o.log.Format,
		}, o.stderr)
		o.logger = rawLog.Sugar()
		ctrlruntimelog.SetLogger(zapr.NewLogger(rawLog.WithOptions(zap.AddCallerSkip(1))))

		return nil
	}

	cmd.AddCommand(newWriteIngressesCmd(o))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// bindConfig fills every flag not set on the command line from the
// environment (CONSULK8S_SERVICE_FILE for --service-file) or, failing that,
// from the optional YAML config file keyed by flag name.
func bindConfig(fs *pflag.FlagSet, configFile string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile == "" && !fs.Changed("config") {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %q: %w", configFile, err)
		}
	}

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		if err := fs.Set(f.Name, v.GetString(f.Name)); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s: %w", f.Name, err))
		}
	})

	return errors.Join(errs...)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	code := 1
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		code = exitErr.code
		err = exitErr.err
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}

	return code
}

func main() {
	os.Exit(run(ctrl.SetupSignalHandler(), os.Args[1:], os.Stdout, os.Stderr))
}
