// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package confighelpers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	pkgerrors "github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

var ErrHelpRequested = errors.New("help requested")

func loadConfigFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json", "":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported configuration file extension for %s", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("error loading local config file %s: %w", path, err)
	}
	return nil
}

// environment variable FOO_MARKET_NET__MAX_PRICE sets market.net.max-price for env prefix FOO
func envKey(prefix string) func(string) string {
	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, prefix+"_"))
		name = strings.ReplaceAll(name, "__", "-")
		return strings.ReplaceAll(name, "_", ".")
	}
}

func loadEnvironmentVariables(k *koanf.Koanf) error {
	envPrefix := k.String("conf.env-prefix")
	if len(envPrefix) == 0 {
		return nil
	}
	return k.Load(env.Provider(envPrefix+"_", ".", envKey(envPrefix)), nil)
}

// BeginCommonParse layers configuration sources, lowest precedence first: flag defaults,
// configuration files, the JSON configuration string, environment variables, then the flags
// actually set on the command line.
func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	if err := f.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrHelpRequested
		}
		return nil, err
	}
	if f.NArg() != 0 {
		// Unexpected number of parameters
		return nil, fmt.Errorf("unexpected parameter: %s", f.Arg(0))
	}

	k := koanf.New(".")

	// Initial application of command line parameters and defaults
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	for _, path := range k.Strings("conf.file") {
		if err := loadConfigFile(k, path); err != nil {
			return nil, err
		}
	}
	if configString := k.String("conf.string"); configString != "" {
		if err := k.Load(rawbytes.Provider([]byte(configString)), json.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config string: %w", err)
		}
	}
	if err := loadEnvironmentVariables(k); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	// Command line overrides everything else
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error loading command line config: %w", err)
	}
	return k, nil
}

// EndCommonParse decodes the layered configuration into config, rejecting unknown keys
func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,

		// Default values
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Metadata:         nil,
		Result:           config,
		WeaklyTypedInput: true,
	}
	err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{DecoderConfig: &decoderConfig})
	if err != nil {
		return err
	}
	return nil
}

// DumpConfig prints the active configuration as JSON, without the dump flag itself
func DumpConfig(k *koanf.Koanf) error {
	err := k.Load(confmap.Provider(map[string]interface{}{
		"conf.dump": false,
	}, "."), nil)
	if err != nil {
		return pkgerrors.Wrap(err, "error removing extra parameters before dump")
	}
	c, err := k.Marshal(json.Parser())
	if err != nil {
		return pkgerrors.Wrap(err, "unable to marshal config file to JSON")
	}
	fmt.Fprintln(os.Stdout, string(c))
	return nil
}
