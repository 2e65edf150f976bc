package baas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLSOptionsAllowList(t *testing.T) {
	opts, err := TLSOptionsFromMap(map[string]any{
		"ca":              "-----BEGIN CERTIFICATE-----",
		"allowSelfSigned": true,
	})
	require.NoError(t, err)
	assert.True(t, opts.AllowSelfSigned)
	assert.Equal(t, []byte("-----BEGIN CERTIFICATE-----"), opts.CA)

	// Any key outside the allow-list is a hard configuration error.
	_, err = TLSOptionsFromMap(map[string]any{"pfx": []byte{1}})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))

	_, err = TLSOptionsFromMap(map[string]any{"rejectUnauthorized": false})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))
}

func TestTLSOptionsTypeChecks(t *testing.T) {
	_, err := TLSOptionsFromMap(map[string]any{"allowSelfSigned": "yes"})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))

	_, err = TLSOptionsFromMap(map[string]any{"key": 42})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))
}

func TestTLSOptionsKeyCertPairing(t *testing.T) {
	_, err := TLSOptionsFromMap(map[string]any{"cert": "cert-pem-only"})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))

	_, err = TLSOptionsFromMap(map[string]any{"key": "key-pem-only"})
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))
}

func TestTLSConfigFromOptions(t *testing.T) {
	var nilOpts *TLSOptions
	cfg, err := nilOpts.tlsConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	opts := &TLSOptions{AllowSelfSigned: true}
	cfg, err = opts.tlsConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.InsecureSkipVerify)

	// A CA bundle with no certificates is rejected.
	opts = &TLSOptions{CA: []byte("not a pem")}
	_, err = opts.tlsConfig()
	require.Error(t, err)
	assert.True(t, ErrConfiguration.Has(err))
}
