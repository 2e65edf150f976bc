// tls.go
// ------
// Client-certificate configuration for the stream executor. Options arrive
// as a loose key-value map and are checked against a fixed allow-list
// before any request is sent: an unknown key is a hard configuration
// error, not something to ignore. This is a security boundary.
package baas

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Allow-listed client-certificate option keys.
const (
	tlsOptionKey             = "key"
	tlsOptionCert            = "cert"
	tlsOptionPassphrase      = "passphrase"
	tlsOptionCA              = "ca"
	tlsOptionAllowSelfSigned = "allowSelfSigned"
)

var allowedTLSOptionKeys = map[string]bool{
	tlsOptionKey:             true,
	tlsOptionCert:            true,
	tlsOptionPassphrase:      true,
	tlsOptionCA:              true,
	tlsOptionAllowSelfSigned: true,
}

// TLSOptions is the validated client-certificate material for TLS
// exchanges.
type TLSOptions struct {
	Key             []byte
	Cert            []byte
	Passphrase      string
	CA              []byte
	AllowSelfSigned bool
}

// TLSOptionsFromMap validates opts against the allow-list and builds
// TLSOptions. Any key outside the allow-list is rejected before the
// options can reach a request.
func TLSOptionsFromMap(opts map[string]any) (*TLSOptions, error) {
	for k := range opts {
		if !allowedTLSOptionKeys[k] {
			return nil, ErrConfiguration.New("disallowed TLS option key %q", k)
		}
	}
	o := &TLSOptions{}
	var ok bool
	if v, present := opts[tlsOptionKey]; present {
		if o.Key, ok = asBytes(v); !ok {
			return nil, ErrConfiguration.New("TLS option %q must be a string or byte slice", tlsOptionKey)
		}
	}
	if v, present := opts[tlsOptionCert]; present {
		if o.Cert, ok = asBytes(v); !ok {
			return nil, ErrConfiguration.New("TLS option %q must be a string or byte slice", tlsOptionCert)
		}
	}
	if v, present := opts[tlsOptionCA]; present {
		if o.CA, ok = asBytes(v); !ok {
			return nil, ErrConfiguration.New("TLS option %q must be a string or byte slice", tlsOptionCA)
		}
	}
	if v, present := opts[tlsOptionPassphrase]; present {
		if o.Passphrase, ok = v.(string); !ok {
			return nil, ErrConfiguration.New("TLS option %q must be a string", tlsOptionPassphrase)
		}
	}
	if v, present := opts[tlsOptionAllowSelfSigned]; present {
		if o.AllowSelfSigned, ok = v.(bool); !ok {
			return nil, ErrConfiguration.New("TLS option %q must be a bool", tlsOptionAllowSelfSigned)
		}
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate enforces that key and cert come as a pair.
func (o *TLSOptions) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.Key, validation.Required.When(len(o.Cert) > 0).Error("key is required when cert is set")),
		validation.Field(&o.Cert, validation.Required.When(len(o.Key) > 0).Error("cert is required when key is set")),
	)
	if err != nil {
		return ErrConfiguration.Wrap(err)
	}
	return nil
}

// tlsConfig materializes a *tls.Config from the validated options. A nil
// receiver yields a nil config, letting the agent use its defaults.
func (o *TLSOptions) tlsConfig() (*tls.Config, error) {
	if o == nil {
		return nil, nil
	}
	cfg := &tls.Config{InsecureSkipVerify: o.AllowSelfSigned}
	if len(o.Cert) > 0 {
		key := o.Key
		if o.Passphrase != "" {
			decrypted, err := decryptPEMKey(key, o.Passphrase)
			if err != nil {
				return nil, ErrConfiguration.Wrap(err)
			}
			key = decrypted
		}
		cert, err := tls.X509KeyPair(o.Cert, key)
		if err != nil {
			return nil, ErrConfiguration.Wrap(err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	if len(o.CA) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(o.CA) {
			return nil, ErrConfiguration.New("no certificates found in CA bundle")
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

func decryptPEMKey(keyPEM []byte, passphrase string) ([]byte, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, ErrConfiguration.New("invalid PEM in private key")
	}
	if !x509.IsEncryptedPEMBlock(block) {
		return keyPEM, nil
	}
	der, err := x509.DecryptPEMBlock(block, []byte(passphrase))
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}

func asBytes(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	default:
		return nil, false
	}
}
