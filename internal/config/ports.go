package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// PortMapping maps a host port to a container port, optionally bound to a
// specific host IP. The manifest form is "host:container" or
// "ip:host:container", e.g. "5021:80".
type PortMapping struct {
	HostIP        string `json:"hostIP,omitempty" yaml:"host_ip,omitempty" toml:"host_ip,omitempty"`
	HostPort      string `json:"hostPort" yaml:"host_port" toml:"host_port"`
	ContainerPort string `json:"containerPort" yaml:"container_port" toml:"container_port"`
}

func (p PortMapping) String() string {
	if p.HostIP != "" {
		return fmt.Sprintf("%s:%s:%s", p.HostIP, p.HostPort, p.ContainerPort)
	}
	return fmt.Sprintf("%s:%s", p.HostPort, p.ContainerPort)
}

func (p PortMapping) Validate() error {
	for _, part := range []struct {
		name  string
		value string
	}{
		{"host port", p.HostPort},
		{"container port", p.ContainerPort},
	} {
		n, err := strconv.Atoi(part.value)
		if err != nil {
			return fmt.Errorf("%s '%s' is not a number", part.name, part.value)
		}
		if n < 1 || n > 65535 {
			return fmt.Errorf("%s %d is out of range", part.name, n)
		}
	}
	return nil
}

// ParsePortMapping parses "host:container" or "ip:host:container".
func ParsePortMapping(s string) (PortMapping, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var mapping PortMapping
	switch len(parts) {
	case 2:
		mapping = PortMapping{HostPort: parts[0], ContainerPort: parts[1]}
	case 3:
		mapping = PortMapping{HostIP: parts[0], HostPort: parts[1], ContainerPort: parts[2]}
	default:
		return PortMapping{}, fmt.Errorf("invalid port mapping '%s'; expected 'host:container'", s)
	}
	if err := mapping.Validate(); err != nil {
		return PortMapping{}, fmt.Errorf("invalid port mapping '%s': %w", s, err)
	}
	return mapping, nil
}

// portMappingDecodeHook lets the manifest use the compact "5021:80" string
// form while the struct form keeps working.
func portMappingDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(PortMapping{}) {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return ParsePortMapping(s)
	}
}
