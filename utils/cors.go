package utils

import (
	"net"
	"net/url"
	"strings"
)

// IsAllowedOrigin checks whether an Origin header value should be trusted.
// It allows localhost, private/RFC1918 IPs, link-local IPs, .local
// hostnames, and single-label hostnames. Public internet origins are
// blocked.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" {
		return true
	}
	// mDNS hostnames (e.g. mybox.local)
	if strings.HasSuffix(hostname, ".local") {
		return true
	}
	// Single-label hostnames are LAN names.
	if !strings.Contains(hostname, ".") {
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return isPrivateIP(ip)
	}
	return false
}

var privateRanges = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16", // link-local IPv4
		"::1/128",        // loopback IPv6
		"fe80::/10",      // link-local IPv6
		"fc00::/7",       // unique local IPv6
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, network, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, network)
	}
	return nets
}()

// isPrivateIP returns true for RFC1918, loopback, and link-local addresses.
func isPrivateIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
