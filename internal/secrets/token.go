package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the engine's secrets in the OS keychain.
	KeyringService = "hhagent"
)

// Access and refresh tokens for the HH account are kept in the OS keyring,
// never in the config file or the database.

func GetAccessToken(hhUserID string) (string, error) {
	return get(accessAccount(hhUserID))
}

func SetAccessToken(hhUserID, token string) error {
	return set(accessAccount(hhUserID), token)
}

func GetRefreshToken(hhUserID string) (string, error) {
	return get(refreshAccount(hhUserID))
}

func SetRefreshToken(hhUserID, token string) error {
	return set(refreshAccount(hhUserID), token)
}

func DeleteTokens(hhUserID string) error {
	err1 := keyring.Delete(KeyringService, accessAccount(hhUserID))
	err2 := keyring.Delete(KeyringService, refreshAccount(hhUserID))
	if err1 != nil {
		return err1
	}
	return err2
}

func get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	tok, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", errors.New("HH token not found (authorize first or set it via the API)")
	}
	return tok, nil
}

func set(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, token)
}

func accessAccount(hhUserID string) string  { return "hhagent:access:" + hhUserID }
func refreshAccount(hhUserID string) string { return "hhagent:refresh:" + hhUserID }
