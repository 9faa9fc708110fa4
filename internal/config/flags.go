package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-upstream upstream platform base URL
//	-upstream-timeout upstream request timeout (e.g., "30s")
//	-c/-config json file path with configs
//	-access-ttl fallback access-cookie lifetime (e.g., "30m")
//	-refresh-ttl refresh-cookie lifetime (e.g., "168h")
//	-hydration-timeout route-guard hydration timeout (e.g., "4s")
//	-request-timeout inbound request timeout (e.g., "30s")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var upstreamBaseURL string
	var upstreamTimeout time.Duration
	var jsonConfigPath string
	var accessTTL time.Duration
	var refreshTTL time.Duration
	var hydrationTimeout time.Duration
	var requestTimeout time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&upstreamBaseURL, "upstream", "", "Upstream platform base URL")
	flag.DurationVar(&upstreamTimeout, "upstream-timeout", 0, "Upstream request timeout (e.g., 30s)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&accessTTL, "access-ttl", 0, "Fallback access-cookie lifetime (e.g., 30m)")
	flag.DurationVar(&refreshTTL, "refresh-ttl", 0, "Refresh-cookie lifetime (e.g., 168h)")
	flag.DurationVar(&hydrationTimeout, "hydration-timeout", 0, "Route-guard hydration timeout (e.g., 4s)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Inbound request timeout (e.g., 30s)")

	flag.Parse()

	return &StructuredConfig{
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Upstream: Upstream{
			BaseURL:        upstreamBaseURL,
			RequestTimeout: upstreamTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Session: Session{
			AccessTTL:        accessTTL,
			RefreshTTL:       refreshTTL,
			HydrationTimeout: hydrationTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the default server address.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
