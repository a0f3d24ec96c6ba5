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

// Package log builds the zap loggers used by the consulk8s commands.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	ctrlruntimelzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

type Format string

const (
	FormatJSON    Format = "JSON"
	FormatConsole Format = "Console"
)

var AvailableFormats = []Format{FormatJSON, FormatConsole}

func (f *Format) Type() string {
	return "string"
}

func (f *Format) String() string {
	return string(*f)
}

func (f *Format) Set(s string) error {
	switch strings.ToLower(s) {
	case "json":
		*f = FormatJSON
	case "console":
		*f = FormatConsole
	default:
		return fmt.Errorf("invalid format '%s'", s)
	}
	return nil
}

// Options are the logging flags shared by all commands.
type Options struct {
	// Debug enables the debug level.
	Debug bool
	// Format is the encoding of log entries.
	Format Format
}

// NewDefaultOptions logs at info level in the console format, which reads
// better when consulk8s is run from a shell or a timer unit.
func NewDefaultOptions() Options {
	return Options{
		Debug:  false,
		Format: FormatConsole,
	}
}

func (o *Options) AddPFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Debug, "log-debug", o.Debug, "Enables more verbose logging")
	fs.Var(&o.Format, "log-format", "Log format, one of JSON or Console")
}

func (o *Options) Validate() error {
	for i := range AvailableFormats {
		if o.Format == AvailableFormats[i] {
			return nil
		}
	}

	return fmt.Errorf("invalid log-format specified %q; available: %+v", o.Format, AvailableFormats)
}

// NewFromOptions returns a logger writing to w, or to stderr when w is nil.
func NewFromOptions(o Options, w io.Writer) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(w, o.Debug, o.Format)
}

func New(w io.Writer, debug bool, format Format) *zap.Logger {
	sink := zapcore.AddSync(w)

	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	opts := []zap.Option{
		zap.ErrorOutput(sink),
	}
	if debug {
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(&ctrlruntimelzap.KubeAwareEncoder{Encoder: enc, Verbose: debug}, sink, lvl)
	return zap.New(core, opts...)
}
