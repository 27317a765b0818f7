package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TokenKind
		wantErr  bool
	}{
		{name: "main", input: "main", expected: TokenMain},
		{name: "mixed case with spaces", input: " Presale ", expected: TokenPresale},
		{name: "barracks", input: "barracks", expected: TokenBarracks},
		{name: "stablecoin", input: "stablecoin", expected: TokenStablecoin},
		{name: "unknown", input: "doge", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ParseTokenKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestTokenMetadata(t *testing.T) {
	assert.Equal(t, "SOLDIERS Token", TokenMain.Metadata().Name)
	assert.Equal(t, "$SLDRS", TokenMain.Metadata().Symbol)
	assert.Equal(t, "Pre-Sale SOLDIERS Token", TokenPresale.Metadata().Name)
	assert.Equal(t, "$pSLDRS", TokenPresale.Metadata().Symbol)
	for _, kind := range TokenKinds {
		assert.Equal(t, uint8(6), kind.Metadata().Decimals, kind.String())
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xaa"), addr)

	_, err = ParseAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddresses([]string{"0x00000000000000000000000000000000000000aa", "nope"})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestSystemAddressIsDeterministic(t *testing.T) {
	assert.Equal(t, SystemAddress("staking-pool"), SystemAddress("staking-pool"))
	assert.NotEqual(t, SystemAddress("staking-pool"), SystemAddress("reward-reserve"))
	assert.NotEqual(t, ZeroAddress, SystemAddress("staking-pool"))
}

func TestLedgerErrorReasons(t *testing.T) {
	assert.Equal(t, "Token Paused", ErrTokenPaused.Error())
	assert.Equal(t, "Token Paused", ErrAlreadyPaused.Error())
	assert.Equal(t, "Token Not Paused", ErrAlreadyUnpaused.Error())

	le, ok := AsLedgerError(ErrNotWhitelisted)
	require.True(t, ok)
	assert.Equal(t, "NotWhitelisted", le.Code)

	_, ok = AsLedgerError(assert.AnError)
	assert.False(t, ok)
}
