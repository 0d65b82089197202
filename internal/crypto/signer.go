// Package crypto provides the signing identity for the exchange: EIP-712
// signatures for auth and orders, HMAC headers for authenticated requests,
// and private-key loading.
package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Pre-computed keccak256 hashes of the canonical EIP-712 type strings.
var (
	domainTypeHash = ethcrypto.Keccak256(
		[]byte("EIP712Domain(string name,string version,uint256 chainId)"),
	)
	authTypeHash = ethcrypto.Keccak256(
		[]byte("ClobAuth(address address,uint256 timestamp,uint256 nonce)"),
	)
	orderTypeHash = ethcrypto.Keccak256(
		[]byte("Order(uint256 salt,address maker,address signer,address taker,uint256 tokenId,uint256 makerAmount,uint256 takerAmount,uint256 expiration,uint256 nonce,uint256 feeRateBps,uint8 side,uint8 signatureType)"),
	)
)

// OrderPayload is the order struct signed via EIP-712 before submission.
// Addresses and large integers are strings to survive JSON boundaries.
type OrderPayload struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          int    `json:"side"`          // 0 = BUY, 1 = SELL
	SignatureType int    `json:"signatureType"` // 0 = EOA
}

// Signer holds a secp256k1 key and signs exchange messages.
type Signer struct {
	key       *ecdsa.PrivateKey
	address   common.Address
	domainSep []byte
}

// NewSigner builds a Signer from a hex private key (0x prefix optional) and
// the target chain ID (137 for Polygon mainnet).
func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	pk, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid private key: %w", err)
	}

	s := &Signer{
		key:     pk,
		address: ethcrypto.PubkeyToAddress(pk.PublicKey),
	}
	s.domainSep = ethcrypto.Keccak256(concat(
		domainTypeHash,
		ethcrypto.Keccak256([]byte("ClobAuthDomain")),
		ethcrypto.Keccak256([]byte("1")),
		pad32(big.NewInt(chainID)),
	))
	return s, nil
}

// Address returns the Ethereum address derived from the signing key.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignAuthMessage signs the ClobAuth struct used by the credential-derivation
// endpoint. The result is a hex 65-byte signature (r || s || v).
func (s *Signer) SignAuthMessage(timestamp, nonce int64) (string, error) {
	structHash := ethcrypto.Keccak256(concat(
		authTypeHash,
		common.LeftPadBytes(s.address.Bytes(), 32),
		pad32(big.NewInt(timestamp)),
		pad32(big.NewInt(nonce)),
	))
	return s.sign(structHash)
}

// SignOrder signs an OrderPayload for submission to the CLOB.
func (s *Signer) SignOrder(order OrderPayload) (string, error) {
	structHash, err := orderStructHash(order)
	if err != nil {
		return "", err
	}
	return s.sign(structHash)
}

func (s *Signer) sign(structHash []byte) (string, error) {
	digest := ethcrypto.Keccak256(concat([]byte{0x19, 0x01}, s.domainSep, structHash))
	sig, err := ethcrypto.Sign(digest, s.key)
	if err != nil {
		return "", fmt.Errorf("crypto: sign digest: %w", err)
	}
	// go-ethereum yields v in {0,1}; EIP-712 verifiers expect {27,28}.
	if sig[64] < 27 {
		sig[64] += 27
	}
	return "0x" + hex.EncodeToString(sig), nil
}

func orderStructHash(o OrderPayload) ([]byte, error) {
	nums := make([]*big.Int, 0, 7)
	for _, field := range []struct{ name, val string }{
		{"salt", o.Salt},
		{"tokenId", o.TokenID},
		{"makerAmount", o.MakerAmount},
		{"takerAmount", o.TakerAmount},
		{"expiration", o.Expiration},
		{"nonce", o.Nonce},
		{"feeRateBps", o.FeeRateBps},
	} {
		n, ok := new(big.Int).SetString(field.val, 10)
		if !ok {
			return nil, fmt.Errorf("crypto: invalid %s %q", field.name, field.val)
		}
		nums = append(nums, n)
	}

	return ethcrypto.Keccak256(concat(
		orderTypeHash,
		pad32(nums[0]),
		common.LeftPadBytes(common.HexToAddress(o.Maker).Bytes(), 32),
		common.LeftPadBytes(common.HexToAddress(o.Signer).Bytes(), 32),
		common.LeftPadBytes(common.HexToAddress(o.Taker).Bytes(), 32),
		pad32(nums[1]),
		pad32(nums[2]),
		pad32(nums[3]),
		pad32(nums[4]),
		pad32(nums[5]),
		pad32(nums[6]),
		pad32(big.NewInt(int64(o.Side))),
		pad32(big.NewInt(int64(o.SignatureType))),
	)), nil
}

// pad32 returns the 32-byte big-endian representation of n.
func pad32(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) >= 32 {
		return b[:32]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func concat(slices ...[]byte) []byte {
	var total int
	for _, s := range slices {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range slices {
		buf = append(buf, s...)
	}
	return buf
}
