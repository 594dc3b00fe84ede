// file: pkg/order/assetdata.go
package order

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Asset data names the traded token in ABIv2 form: a 4-byte proxy
// selector followed by the encoded arguments.
//
//	ERC20Token(address)          -> 0xf47261b0 || address word
//	ERC721Token(address,uint256) -> 0x02571792 || address word || token id word

var (
	erc20ProxyID  = assetProxyID("ERC20Token(address)")
	erc721ProxyID = assetProxyID("ERC721Token(address,uint256)")
)

var ErrInvalidAssetData = errors.New("invalid asset data")

// assetProxyID derives the selector keccak256(sig)[:4].
func assetProxyID(sig string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}

// EncodeERC20AssetData encodes a fungible token reference.
func EncodeERC20AssetData(token common.Address) hexutil.Bytes {
	out := make([]byte, 0, 36)
	out = append(out, erc20ProxyID...)
	out = append(out, common.LeftPadBytes(token.Bytes(), 32)...)
	return out
}

// EncodeERC721AssetData encodes a collectible reference.
func EncodeERC721AssetData(token common.Address, tokenID *big.Int) hexutil.Bytes {
	out := make([]byte, 0, 68)
	out = append(out, erc721ProxyID...)
	out = append(out, common.LeftPadBytes(token.Bytes(), 32)...)
	out = append(out, common.LeftPadBytes(tokenID.Bytes(), 32)...)
	return out
}

// DecodeAssetAddress extracts the token address from either supported
// encoding.
func DecodeAssetAddress(data hexutil.Bytes) (common.Address, error) {
	if len(data) < 36 {
		return common.Address{}, fmt.Errorf("%w: %d bytes", ErrInvalidAssetData, len(data))
	}
	selector := data[:4]
	switch {
	case bytes.Equal(selector, erc20ProxyID):
	case bytes.Equal(selector, erc721ProxyID):
		if len(data) < 68 {
			return common.Address{}, fmt.Errorf("%w: truncated ERC721 payload", ErrInvalidAssetData)
		}
	default:
		return common.Address{}, fmt.Errorf("%w: unknown proxy id 0x%x", ErrInvalidAssetData, selector)
	}
	return common.BytesToAddress(data[4:36]), nil
}
