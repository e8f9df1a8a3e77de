package state

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// InitSecret loads the RSA public key used to verify access tokens. The
// private key is optional; the hub only needs it to mint tokens in dev setups.
func InitSecret(publicKeyPath, privateKeyPath string) (*JwtSecret, error) {
	pubKeyBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, err
	}

	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	secret := &JwtSecret{Public: pubKey}

	if privateKeyPath != "" {
		privKeyBytes, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return nil, err
		}

		var privKey *rsa.PrivateKey
		privKey, err = jwt.ParseRSAPrivateKeyFromPEM(privKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		secret.Private = privKey
	}

	log.Info().Bool("signing", secret.Private != nil).Msg("JWT secret initialized successfully")
	return secret, nil
}
