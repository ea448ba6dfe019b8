// Copyright 2025 Serptrace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/serptrace/serptrace"
)

// engineFlags are the flags shared by every command that performs checks
type engineFlags struct {
	configPath string
	headful    bool
	verbose    bool
}

func registerEngineFlags(fs flagSet, flags *engineFlags) {
	fs.StringVar(&flags.configPath, "config", "", "Path to a config file (YAML/JSON/TOML)")
	fs.StringVar(&flags.configPath, "c", "", "Path to a config file (shorthand)")
	fs.BoolVar(&flags.headful, "headful", false, "Run the browser with a visible window")
	fs.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
}

// flagSet is the subset of *flag.FlagSet the shared registration needs
type flagSet interface {
	StringVar(p *string, name string, value string, usage string)
	BoolVar(p *bool, name string, value bool, usage string)
}

// buildEngine loads configuration (file, then SERPTRACE_* environment
// overrides) and constructs the engine with a logger matching verbosity
func buildEngine(flags engineFlags) (*serptrace.Engine, error) {
	cfg, err := serptrace.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.headful {
		cfg.Headful = true
	}

	var logger *zap.Logger
	if flags.verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %v", err)
	}

	return serptrace.NewEngine(cfg, serptrace.WithLogger(logger))
}
