// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// # Client Address Resolution

// TrustedRealIP replaces RemoteAddr with the forwarded client address, but only
// when the direct peer is one of the trusted proxies.
//
// X-Forwarded-For is walked from the right, skipping trusted hops; the first
// untrusted entry is the client. Requests from any other peer keep their socket
// address, so clients cannot pick their own rate limit key.
func TrustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if client, ok := forwardedClient(request, trusted); ok {
				request.RemoteAddr = client.String()
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func forwardedClient(request *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	peer, err := netip.ParseAddr(RealIP(request))
	if err != nil || !isTrusted(peer, trusted) {
		return netip.Addr{}, false
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		client := peer
		for index := len(hops) - 1; index >= 0; index-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[index]))
			if err != nil {
				break
			}
			client = hop.Unmap()
			if !isTrusted(client, trusted) {
				break
			}
		}
		return client, client != peer
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))); err == nil {
		return realIP.Unmap(), true
	}

	return netip.Addr{}, false
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// RealIP returns the host part of RemoteAddr, as resolved by [TrustedRealIP].
func RealIP(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
