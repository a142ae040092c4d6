package types

import (
	"net"
	"net/netip"
	"strconv"
)

// Address is a probe target: one IP endpoint paired with the configured port.
// It is a comparable value type and is used as the result store key.
type Address struct {
	IP   netip.Addr
	Port uint16
}

func NewAddress(ip netip.Addr, port uint16) Address {
	if ip.Is4In6() {
		ip = ip.Unmap()
	}
	return Address{IP: ip, Port: port}
}

// String renders host:port, bracketing IPv6 hosts.
func (a Address) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(int(a.Port)))
}
