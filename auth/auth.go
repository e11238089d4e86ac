// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VoterToken derives the deduplication token for a vote from the client's
// network origin. It is an HMAC of the IP so raw addresses are never stored.
//
// This is not an identity: clients behind one NAT share a token and a client
// that controls X-Forwarded-For can mint new ones. Returns "" for an empty IP.
func VoterToken(ip, salt string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// 128 bits is plenty for deduplication
	return hex.EncodeToString(sum[:16])
}
