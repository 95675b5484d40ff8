// Package stackstx builds and signs Stacks STX token transfer transactions from a single-sig standard account.
package stackstx

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/c32"
)

const (
	authTypeStandard = 0x04

	hashModeP2PKH = 0x00

	keyEncodingCompressed   = 0x00
	keyEncodingUncompressed = 0x01

	anchorModeAny = 0x03

	postConditionModeAllow = 0x01

	payloadTypeTokenTransfer = 0x00

	principalTypeStandard = 0x05

	// MemoLength is the fixed size of a token transfer memo.
	MemoLength = 34

	signatureLength = 65
)

var ErrMemoTooLong = errors.Errorf("memo must be at most %d bytes", MemoLength)

// TokenTransfer is an unsigned STX transfer.
type TokenTransfer struct {
	Recipient string // standard Stacks address of the recipient
	Amount    uint64 // micro-STX
	Fee       uint64 // micro-STX
	Nonce     uint64
	Memo      string
}

// Transaction is a signed, serialized transaction ready to broadcast.
type Transaction struct {
	Raw  []byte
	TxId string // hex, without 0x prefix
}

// Signer holds the faucet key and signs transfers for one network.
type Signer struct {
	key        *btcec.PrivateKey
	compressed bool
	network    common.Network
	hash160    []byte
}

// NewSigner parses a hex private key. A 33-byte key ending with 0x01 signs with the compressed public key,
// a bare 32-byte key with the uncompressed one.
func NewSigner(privateKeyHex string, network common.Network) (*Signer, error) {
	if !network.IsSupported() {
		return nil, errors.Wrapf(errs.Unsupported, "network %q", network)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, "private key must be hex encoded")
	}

	var compressed bool
	switch {
	case len(raw) == 33 && raw[32] == 0x01:
		compressed = true
		raw = raw[:32]
	case len(raw) == 32:
	default:
		return nil, errors.Wrapf(errs.InvalidArgument, "private key must be 32 bytes, or 33 bytes with a 0x01 suffix, got %d", len(raw))
	}

	key, _ := btcec.PrivKeyFromBytes(raw)
	s := &Signer{
		key:        key,
		compressed: compressed,
		network:    network,
	}
	s.hash160 = btcutil.Hash160(s.publicKey())
	return s, nil
}

func (s *Signer) publicKey() []byte {
	if s.compressed {
		return s.key.PubKey().SerializeCompressed()
	}
	return s.key.PubKey().SerializeUncompressed()
}

// Address returns the single-sig address of the signer on its network.
func (s *Signer) Address() string {
	address, err := c32.EncodeAddress(s.network.Params().SingleSigAddressVersion, s.hash160)
	if err != nil {
		// hash160 length and network version are checked in NewSigner
		panic(err)
	}
	return address
}

// SignTokenTransfer serializes and signs a transfer with anchor mode `any` and post-condition mode `allow`.
func (s *Signer) SignTokenTransfer(transfer TokenTransfer) (*Transaction, error) {
	if len(transfer.Memo) > MemoLength {
		return nil, errors.WithStack(ErrMemoTooLong)
	}
	version, recipientHash, err := c32.DecodeAddress(transfer.Recipient)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	tx := unsignedTx{
		network:          s.network.Params(),
		signerHash:       s.hash160,
		keyEncoding:      keyEncodingUncompressed,
		recipientVersion: version,
		recipientHash:    recipientHash,
		transfer:         transfer,
	}
	if s.compressed {
		tx.keyEncoding = keyEncodingCompressed
	}

	// initial sighash commits to the transaction with a cleared spending condition
	initial := sha512.Sum512_256(tx.serialize(0, 0, nil))

	presign := make([]byte, 0, len(initial)+1+8+8)
	presign = append(presign, initial[:]...)
	presign = append(presign, authTypeStandard)
	presign = binary.BigEndian.AppendUint64(presign, transfer.Fee)
	presign = binary.BigEndian.AppendUint64(presign, transfer.Nonce)
	presignHash := sha512.Sum512_256(presign)

	signature, err := recoverableSignature(s.key, presignHash[:], s.compressed)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	raw := tx.serialize(transfer.Nonce, transfer.Fee, signature)
	txId := sha512.Sum512_256(raw)
	return &Transaction{
		Raw:  raw,
		TxId: hex.EncodeToString(txId[:]),
	}, nil
}

// recoverableSignature signs hash and returns the 65-byte `recovery id || r || s` form.
func recoverableSignature(key *btcec.PrivateKey, hash []byte, compressed bool) ([]byte, error) {
	compact, err := ecdsa.SignCompact(key, hash, compressed)
	if err != nil {
		return nil, errors.Wrap(err, "can't sign transaction")
	}
	header := compact[0] - 27
	if compressed {
		header -= 4
	}
	signature := make([]byte, 0, signatureLength)
	signature = append(signature, header)
	signature = append(signature, compact[1:]...)
	return signature, nil
}

type unsignedTx struct {
	network          common.NetworkParams
	signerHash       []byte
	keyEncoding      byte
	recipientVersion byte
	recipientHash    []byte
	transfer         TokenTransfer
}

// serialize encodes the transaction with the given spending condition fields. A nil signature is
// encoded as zeros.
func (tx unsignedTx) serialize(nonce, fee uint64, signature []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(tx.network.TransactionVersion)
	buf.Write(binary.BigEndian.AppendUint32(nil, tx.network.ChainID))

	// authorization
	buf.WriteByte(authTypeStandard)
	buf.WriteByte(hashModeP2PKH)
	buf.Write(tx.signerHash)
	buf.Write(binary.BigEndian.AppendUint64(nil, nonce))
	buf.Write(binary.BigEndian.AppendUint64(nil, fee))
	buf.WriteByte(tx.keyEncoding)
	if signature == nil {
		signature = make([]byte, signatureLength)
	}
	buf.Write(signature)

	buf.WriteByte(anchorModeAny)
	buf.WriteByte(postConditionModeAllow)
	buf.Write(binary.BigEndian.AppendUint32(nil, 0)) // no post conditions

	// payload
	buf.WriteByte(payloadTypeTokenTransfer)
	buf.WriteByte(principalTypeStandard)
	buf.WriteByte(tx.recipientVersion)
	buf.Write(tx.recipientHash)
	buf.Write(binary.BigEndian.AppendUint64(nil, tx.transfer.Amount))
	memo := make([]byte, MemoLength)
	copy(memo, tx.transfer.Memo)
	buf.Write(memo)

	return buf.Bytes()
}
