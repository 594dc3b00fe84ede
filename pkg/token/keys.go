package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Pebble key schema. Token metadata is the only thing persisted here;
// orders never touch the store.

const prefixToken = "tok:"

// tokenKey returns the key for a token
// Format: "tok:{address}"
// Example: "tok:0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
func tokenKey(addr common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s", prefixToken, addr.Hex()))
}

// tokenPrefixAll returns the prefix covering every token entry
func tokenPrefixAll() []byte {
	return []byte(prefixToken)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
// Example: prefix "tok:" -> upper bound "tok;" (next byte after ':')
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
