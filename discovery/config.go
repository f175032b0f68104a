package discovery

import "github.com/justloop/tokenmap/utils"

// Default tag names
const (
	DefaultDatacenterTag = "dc"
	DefaultRackTag       = "rack"
	DefaultTokensTag     = "tokens"
)

// Config is the configuration related to discovery module
type Config struct {
	// DatacenterTag is the member tag holding the datacenter name, optional, default "dc"
	DatacenterTag string `json:"dcTag"`
	// RackTag is the member tag holding the rack name, optional, default "rack"
	RackTag string `json:"rackTag"`
	// TokensTag is the member tag holding the comma separated tokens, optional, default "tokens"
	TokensTag string `json:"tokensTag"`
	// ServicePort replaces the gossip port in host addresses when set, the database usually listens elsewhere
	ServicePort int `json:"servicePort"`
}

// DefaultConfig is getting the default configuration of Discovery
func DefaultConfig() *Config {
	return setDefaultConfig(&Config{})
}

func setDefaultConfig(config *Config) *Config {
	config.DatacenterTag = utils.SelectString(config.DatacenterTag, DefaultDatacenterTag)
	config.RackTag = utils.SelectString(config.RackTag, DefaultRackTag)
	config.TokensTag = utils.SelectString(config.TokensTag, DefaultTokensTag)
	return config
}
