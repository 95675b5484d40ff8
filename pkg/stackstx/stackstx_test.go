package stackstx

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/common/errs"
	"github.com/gaze-network/stamp-indexer/pkg/c32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "edf9aee84d9b7abc145504dde6726c64f369d37ee34ded868fabd876c26570bc"

func TestSignerAddress(t *testing.T) {
	type testSpec struct {
		key      string
		network  common.Network
		expected string
	}

	testSpecs := []testSpec{
		{key: testKey + "01", network: common.NetworkMainnet, expected: "SPAW66WC3G8WA5F28JVNG1NTRJ6H76E7EN5H6QQD"},
		{key: testKey + "01", network: common.NetworkTestnet, expected: "STAW66WC3G8WA5F28JVNG1NTRJ6H76E7EMHDBMBN"},
		{key: "0x" + testKey + "01", network: common.NetworkTestnet, expected: "STAW66WC3G8WA5F28JVNG1NTRJ6H76E7EMHDBMBN"},
		{key: testKey, network: common.NetworkMainnet, expected: "SPZG6BAY4JVR9RNAB1HY92B7Q208ZYY4HZEA9PX5"},
		{key: testKey, network: common.NetworkTestnet, expected: "STZG6BAY4JVR9RNAB1HY92B7Q208ZYY4HZG8ZXFM"},
		{key: "0000000000000000000000000000000000000000000000000000000000000001" + "01", network: common.NetworkTestnet, expected: "ST1THWXQ8368SDN2MJGE4BMDKMCHZ2GSVTSQDA7QF"},
	}

	for _, spec := range testSpecs {
		t.Run(spec.expected, func(t *testing.T) {
			signer, err := NewSigner(spec.key, spec.network)
			require.NoError(t, err)
			assert.Equal(t, spec.expected, signer.Address())
		})
	}
}

func TestNewSignerInvalid(t *testing.T) {
	test := func(name string, key string, network common.Network, expected error) {
		t.Run(name, func(t *testing.T) {
			_, err := NewSigner(key, network)
			assert.ErrorIs(t, err, expected)
		})
	}

	test("not_hex", "zz", common.NetworkTestnet, errs.InvalidArgument)
	test("short", "abcd", common.NetworkTestnet, errs.InvalidArgument)
	test("bad_suffix", testKey+"02", common.NetworkTestnet, errs.InvalidArgument)
	test("empty", "", common.NetworkTestnet, errs.InvalidArgument)
	test("unknown_network", testKey+"01", common.Network("devnet"), errs.Unsupported)
}

func TestSignTokenTransfer(t *testing.T) {
	signer, err := NewSigner(testKey+"01", common.NetworkTestnet)
	require.NoError(t, err)

	recipient := "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13"
	transfer := TokenTransfer{
		Recipient: recipient,
		Amount:    1_500_000,
		Fee:       2000,
		Nonce:     7,
		Memo:      "faucet",
	}
	tx, err := signer.SignTokenTransfer(transfer)
	require.NoError(t, err)

	raw := tx.Raw
	require.Len(t, raw, 180)

	txId := sha512.Sum512_256(raw)
	assert.Equal(t, hex.EncodeToString(txId[:]), tx.TxId)

	assert.Equal(t, byte(0x80), raw[0], "version")
	assert.Equal(t, uint32(0x80000000), binary.BigEndian.Uint32(raw[1:5]), "chain id")
	assert.Equal(t, byte(authTypeStandard), raw[5])
	assert.Equal(t, byte(hashModeP2PKH), raw[6])

	_, signerHash, err := c32.DecodeAddress(signer.Address())
	require.NoError(t, err)
	assert.Equal(t, signerHash, raw[7:27])
	assert.Equal(t, uint64(7), binary.BigEndian.Uint64(raw[27:35]), "nonce")
	assert.Equal(t, uint64(2000), binary.BigEndian.Uint64(raw[35:43]), "fee")
	assert.Equal(t, byte(keyEncodingCompressed), raw[43])
	signature := raw[44:109]

	assert.Equal(t, byte(anchorModeAny), raw[109])
	assert.Equal(t, byte(postConditionModeAllow), raw[110])
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(raw[111:115]))

	payload := raw[115:]
	assert.Equal(t, byte(payloadTypeTokenTransfer), payload[0])
	assert.Equal(t, byte(principalTypeStandard), payload[1])
	version, recipientHash, err := c32.DecodeAddress(recipient)
	require.NoError(t, err)
	assert.Equal(t, version, payload[2])
	assert.Equal(t, recipientHash, payload[3:23])
	assert.Equal(t, uint64(1_500_000), binary.BigEndian.Uint64(payload[23:31]))
	assert.Equal(t, append([]byte("faucet"), make([]byte, MemoLength-6)...), payload[31:])

	t.Run("signature_recovers_signer", func(t *testing.T) {
		cleared := bytes.Clone(raw)
		copy(cleared[27:43], make([]byte, 16))
		copy(cleared[44:109], make([]byte, signatureLength))
		initial := sha512.Sum512_256(cleared)

		presign := append(initial[:], authTypeStandard)
		presign = binary.BigEndian.AppendUint64(presign, 2000)
		presign = binary.BigEndian.AppendUint64(presign, 7)
		hash := sha512.Sum512_256(presign)

		compact := append([]byte{signature[0] + 27 + 4}, signature[1:]...)
		pubKey, compressed, err := ecdsa.RecoverCompact(compact, hash[:])
		require.NoError(t, err)
		assert.True(t, compressed)
		assert.Equal(t, signerHash, btcutil.Hash160(pubKey.SerializeCompressed()))
	})

	t.Run("deterministic", func(t *testing.T) {
		again, err := signer.SignTokenTransfer(transfer)
		require.NoError(t, err)
		assert.Equal(t, tx.Raw, again.Raw)

		transfer.Nonce++
		other, err := signer.SignTokenTransfer(transfer)
		require.NoError(t, err)
		assert.NotEqual(t, tx.TxId, other.TxId)
	})
}

func TestSignTokenTransferUncompressed(t *testing.T) {
	signer, err := NewSigner(testKey, common.NetworkMainnet)
	require.NoError(t, err)

	tx, err := signer.SignTokenTransfer(TokenTransfer{Recipient: "SP2X0TZ59D5SZ8ACQ6YMCHHNR2ZN51Z32E2CJ173", Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), tx.Raw[0])
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(tx.Raw[1:5]))
	assert.Equal(t, byte(keyEncodingUncompressed), tx.Raw[43])
}

func TestSignTokenTransferInvalid(t *testing.T) {
	signer, err := NewSigner(testKey+"01", common.NetworkTestnet)
	require.NoError(t, err)

	_, err = signer.SignTokenTransfer(TokenTransfer{Recipient: "not-an-address", Amount: 1})
	assert.ErrorIs(t, err, c32.ErrInvalidAddress)

	_, err = signer.SignTokenTransfer(TokenTransfer{
		Recipient: "ST1G4ZDXED8XM2XJ4Q4GJ7F4PG4EJQ1KKXVPSAX13",
		Amount:    1,
		Memo:      "this memo is definitely longer than thirty four bytes",
	})
	assert.ErrorIs(t, err, ErrMemoTooLong)
}
