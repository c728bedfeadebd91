// addrvectors regenerates the wire vectors quoted in docs and tests.
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net"

	"sealaddr.dev/sealaddr/netaddr"
	"sealaddr.dev/sealaddr/seal"
)

func mustAddr(protos ...netaddr.Protocol) netaddr.NetworkAddress {
	a, err := netaddr.New(protos...)
	if err != nil {
		panic(err)
	}
	return a
}

func mustRaw(a netaddr.NetworkAddress) []byte {
	raw, err := netaddr.EncodeRaw(a, netaddr.Version1)
	if err != nil {
		panic(err)
	}
	return raw.Bytes()
}

func main() {
	ip4, err := netaddr.IP4FromIP(net.IPv4(127, 0, 0, 1))
	if err != nil {
		panic(err)
	}
	loopback := mustAddr(ip4, netaddr.Port(6180))
	fmt.Printf("ip4 loopback + port:\n  %s\n  %s\n", loopback, hex.EncodeToString(mustRaw(loopback)))

	dns, err := netaddr.NewDNSName("validator.example.net")
	if err != nil {
		panic(err)
	}
	named := mustAddr(dns, netaddr.Port(6180), netaddr.HandshakeVersion(1))
	fmt.Printf("dns + port + handshake version:\n  %s\n  %s\n", named, hex.EncodeToString(mustRaw(named)))

	// A fully deterministic sealed record for cross-checking decryptors.
	secret := seal.MasterSecret(bytes.Repeat([]byte{0x5a}, 32))
	account := seal.AccountID{0xd4, 0xf0, 0xc0, 0x53, 0x20, 0x5b, 0xa9, 0x34, 0xbb, 0x2a, 0xc0, 0xc4, 0xe8, 0x47, 0x9e, 0x77}
	rec, err := seal.Encrypt(loopback, secret, account, 0, 0)
	if err != nil {
		panic(err)
	}
	fmt.Printf("sealed record (secret=5a*32, account=%s, index=0, seq=0):\n  %s\n",
		account, hex.EncodeToString(rec.Marshal()))
}
