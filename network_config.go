package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/contract"
)

const networksFileName = "networks.yaml"

var networkNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// NetworksConfig is the root of networks.yaml.
type NetworksConfig struct {
	// Default is the network used when TRONKIT_NETWORK is not set.
	Default  string          `yaml:"default"`
	Networks []NetworkConfig `yaml:"networks"`
}

// NetworkConfig holds the endpoints and limits of one TRON network.
type NetworkConfig struct {
	// Name identifies the network, e.g. "mainnet" or "nile".
	Name         string `yaml:"name" validate:"required,network_name"`
	FullNode     string `yaml:"full_node" validate:"required,url"`
	SolidityNode string `yaml:"solidity_node" validate:"omitempty,url"`
	Explorer     string `yaml:"explorer" validate:"omitempty,url"`
	// APIKey is populated from the environment variable <NAME>_TRON_API_KEY
	// or TRONKIT_API_KEY; it is never read from the file.
	APIKey string `yaml:"-"`
	// USDTContract overrides the built-in USDT address of the network.
	USDTContract string `yaml:"usdt_contract" validate:"omitempty,tron_address"`
	// FeeLimit is the default fee limit in TRX for contract calls.
	FeeLimit int64 `yaml:"fee_limit" validate:"gte=0,lte=500"`
	// Retries is the number of HTTP retries after the first attempt.
	Retries  int  `yaml:"retries" validate:"gte=0,lte=10"`
	Disabled bool `yaml:"disabled"`
}

// builtinNetworks is used when no networks.yaml exists.
var builtinNetworks = NetworksConfig{
	Default: contract.Mainnet,
	Networks: []NetworkConfig{
		{
			Name:         contract.Mainnet,
			FullNode:     "https://api.trongrid.io",
			SolidityNode: "https://api.trongrid.io",
			Explorer:     "https://apilist.tronscanapi.com",
			Retries:      3,
		},
		{
			Name:         contract.Shasta,
			FullNode:     "https://api.shasta.trongrid.io",
			SolidityNode: "https://api.shasta.trongrid.io",
			Explorer:     "https://shastapi.tronscan.org",
			Retries:      3,
		},
		{
			Name:         contract.Nile,
			FullNode:     "https://nile.trongrid.io",
			SolidityNode: "https://nile.trongrid.io",
			Explorer:     "https://nileapi.tronscan.org",
			Retries:      3,
		},
	},
}

func getValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("tron_address", func(fl validator.FieldLevel) bool {
		return address.IsValid(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register tron_address validation: %v", err))
	}
	if err := validate.RegisterValidation("network_name", func(fl validator.FieldLevel) bool {
		return networkNameRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register network_name validation: %v", err))
	}
	return validate
}

// LoadNetworks reads <configDirPath>/networks.yaml, or falls back to the
// built-in mainnet, shasta and nile endpoints when the file does not exist.
func LoadNetworks(configDirPath string) (NetworksConfig, error) {
	networksPath := filepath.Join(configDirPath, networksFileName)
	f, err := os.Open(networksPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg := cloneNetworks(builtinNetworks)
		return cfg, cfg.verifyVariables()
	}
	if err != nil {
		return NetworksConfig{}, err
	}
	defer f.Close()

	var cfg NetworksConfig
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return NetworksConfig{}, fmt.Errorf("failed to parse %s: %w", networksPath, err)
	}
	if err := cfg.verifyVariables(); err != nil {
		return NetworksConfig{}, err
	}
	return cfg, nil
}

// verifyVariables validates every enabled network, applies defaults and
// reads API keys from the environment.
func (cfg *NetworksConfig) verifyVariables() error {
	validate := getValidator()
	seen := make(map[string]bool, len(cfg.Networks))

	for i, nw := range cfg.Networks {
		if nw.Disabled {
			continue
		}
		if err := validate.Struct(nw); err != nil {
			return fmt.Errorf("invalid network '%s': %w", nw.Name, err)
		}
		if seen[nw.Name] {
			return fmt.Errorf("network '%s' is configured twice", nw.Name)
		}
		seen[nw.Name] = true

		if nw.USDTContract == "" {
			cfg.Networks[i].USDTContract = contract.USDTContracts[nw.Name]
		}
		if nw.FeeLimit == 0 {
			cfg.Networks[i].FeeLimit = contract.DefaultFeeLimit
		}
		cfg.Networks[i].APIKey = os.Getenv(fmt.Sprintf("%s_TRON_API_KEY", strings.ToUpper(nw.Name)))
	}

	if cfg.Default != "" && !seen[cfg.Default] {
		return fmt.Errorf("default network '%s' is not configured or disabled", cfg.Default)
	}
	return nil
}

// Get returns the enabled network called name, or the default one when name
// is empty.
func (cfg NetworksConfig) Get(name string) (NetworkConfig, error) {
	if name == "" {
		name = cfg.Default
	}
	for _, nw := range cfg.Networks {
		if nw.Name == name && !nw.Disabled {
			return nw, nil
		}
	}
	return NetworkConfig{}, fmt.Errorf("network '%s' is either not configured or disabled", name)
}

func cloneNetworks(cfg NetworksConfig) NetworksConfig {
	cfg.Networks = append([]NetworkConfig(nil), cfg.Networks...)
	return cfg
}
