// Package privacy reduces client identifiers to forms that are safe to log.
package privacy

import (
	"fmt"
	"net/netip"

	"github.com/ethereum/go-ethereum/common"
)

// AnonymizeIP truncates an IP address to its network prefix: /24 for IPv4
// and /48 for IPv6. IPv4-mapped IPv6 addresses are treated as IPv4.
//
// Returns "invalid" for unparseable input and "unknown" for empty input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		v4 := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	v6 := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		v6[0], v6[1],
		v6[2], v6[3],
		v6[4], v6[5])
}

// ShortAddress renders an account as its first and last four hex digits,
// enough to correlate log lines without printing the full address.
func ShortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + ".." + hex[len(hex)-4:]
}
