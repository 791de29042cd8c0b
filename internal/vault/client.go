// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package vault wraps the HashiCorp Vault API client for the calls vssh
// needs: token self-lookup, SSH CA signing and role listing. Failures are
// mapped onto a closed set of errors; nothing is retried.
package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/toeirei/vssh/internal/config"
	"github.com/toeirei/vssh/internal/logging"
	"github.com/toeirei/vssh/internal/security"
)

const defaultTimeout = 30 * time.Second

// Client talks to one Vault server with one token. It is immutable after
// New and safe to share.
type Client struct {
	api   *vaultapi.Client
	mount string
}

// Option customises the underlying API configuration.
type Option func(*vaultapi.Config)

// WithHTTPClient replaces the HTTP client built from the TLS policy.
func WithHTTPClient(hc *http.Client) Option {
	return func(vc *vaultapi.Config) { vc.HttpClient = hc }
}

// New builds a client from the configuration. The TLS policy (custom CA,
// verification on or off) is fixed here.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	mount := strings.Trim(cfg.Path, "/")
	if mount == "" {
		mount = config.DefaultMount
	}
	server := strings.TrimRight(cfg.Server, "/")

	vaultCfg := vaultapi.DefaultConfig()
	if vaultCfg.Error != nil {
		logging.Debugf("vault: ignoring environment: %v", vaultCfg.Error)
		vaultCfg.Error = nil
	}
	vaultCfg.Address = server
	vaultCfg.AgentAddress = ""
	vaultCfg.Timeout = defaultTimeout
	vaultCfg.MaxRetries = 0

	if cfg.CustomCA != "" {
		if _, err := cfg.ReadCertificate(); err != nil {
			return nil, err
		}
	}
	if !cfg.TLS {
		logging.Warnf("TLS certificate verification is disabled for %s", server)
	}
	tlsCfg := &vaultapi.TLSConfig{
		CACert:   cfg.CustomCA,
		Insecure: !cfg.TLS,
	}
	if err := vaultCfg.ConfigureTLS(tlsCfg); err != nil {
		return nil, &config.CertificateError{Path: cfg.CustomCA, Err: err}
	}

	for _, opt := range opts {
		opt(vaultCfg)
	}

	vc, err := vaultapi.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	token := security.NewSecret(cfg.Token)
	vc.SetToken(token.Reveal())
	logging.Debugf("vault: client for %s, mount %s, token %v", server, mount, token)
	return &Client{api: vc, mount: mount}, nil
}

// ValidateToken performs a token self-lookup. It reports whether Vault
// answered with a success status; only transport failures are errors.
func (c *Client) ValidateToken(ctx context.Context) (bool, error) {
	logging.Debugf("vault: token lookup-self")
	_, err := c.api.Auth().Token().LookupSelfWithContext(ctx)
	if err == nil {
		return true, nil
	}
	switch mapped := mapError("lookup-self", err).(type) {
	case *ResponseError:
		return false, nil
	case *DecodeError:
		return true, nil
	default:
		return false, mapped
	}
}

// Sign asks the SSH CA to sign publicKey under role and returns the
// certificate text.
func (c *Client) Sign(ctx context.Context, role, publicKey string) (string, error) {
	p := path.Join(c.mount, "sign", role)
	logging.Debugf("vault: write %s", p)
	secret, err := c.api.Logical().WriteWithContext(ctx, p, map[string]interface{}{
		"public_key": publicKey,
	})
	if err != nil {
		return "", mapError("sign", err)
	}
	if secret == nil || secret.Data == nil {
		return "", &DecodeError{Op: "sign", Err: errors.New("empty response")}
	}
	signed, ok := secret.Data["signed_key"].(string)
	if !ok || signed == "" {
		return "", &DecodeError{Op: "sign", Err: errors.New("response has no signed_key")}
	}
	return signed, nil
}

// ListRoles returns the role names configured on the SSH CA. Order is
// whatever Vault returns. Vault answers LIST on a path with no entries
// with a bare 404, which is an empty list.
func (c *Client) ListRoles(ctx context.Context) ([]string, error) {
	p := path.Join(c.mount, "roles")
	logging.Debugf("vault: list %s", p)
	secret, err := c.api.Logical().ListWithContext(ctx, p)
	if err != nil {
		return nil, mapError("list roles", err)
	}
	if secret == nil || secret.Data == nil {
		return []string{}, nil
	}
	raw, ok := secret.Data["keys"]
	if !ok || raw == nil {
		return []string{}, nil
	}
	keys, ok := raw.([]interface{})
	if !ok {
		return nil, &DecodeError{Op: "list roles", Err: fmt.Errorf("unexpected keys type %T", raw)}
	}
	roles := make([]string, 0, len(keys))
	for _, k := range keys {
		s, ok := k.(string)
		if !ok {
			return nil, &DecodeError{Op: "list roles", Err: fmt.Errorf("unexpected key type %T", k)}
		}
		roles = append(roles, s)
	}
	return roles, nil
}

// mapError sorts an API client error into the closed taxonomy. Error
// responses carry a status; transport failures surface as *url.Error or a
// context error; anything else came from decoding a success body.
func mapError(op string, err error) error {
	var re *vaultapi.ResponseError
	if errors.As(err, &re) {
		logging.Debugf("vault: %s -> %d", op, re.StatusCode)
		switch {
		case re.StatusCode >= 500:
			return &ResponseError{StatusCode: re.StatusCode, Err: ErrServer}
		case re.RawError:
			return &ResponseError{StatusCode: re.StatusCode, Err: ErrUnknown}
		default:
			return &ResponseError{StatusCode: re.StatusCode, Messages: re.Errors, Err: ErrorFromMessages(re.Errors)}
		}
	}
	var ue *url.Error
	if errors.As(err, &ue) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &SendError{Op: op, Err: err}
	}
	return &DecodeError{Op: op, Err: err}
}
