package keyloader

import (
	"bufio"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"wallet_vote/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrKeysFileNotFound   = errors.New("key file not found")
	ErrKeysFileReadFailed = errors.New("failed to read key file")
	ErrInvalidKey         = errors.New("invalid private key format")
	ErrNoValidKeysFound   = errors.New("no valid private keys found in the file")
)

// LoadedKey stores a private key, its address and an optional display label.
// It does not provide any signing capabilities itself.
type LoadedKey struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
	Label      string
}

// Name returns the label, or the hex address when the key has none.
func (k *LoadedKey) Name() string {
	if k.Label != "" {
		return k.Label
	}
	return k.Address.Hex()
}

// LoadKeys reads private keys from a file, one per line, optionally prefixed
// with "0x" and optionally followed by whitespace and a label.
// Lines starting with '#' or empty lines are ignored; invalid lines are logged and skipped.
func LoadKeys(path string, log logger.Logger) ([]*LoadedKey, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("key file '%s': %w", path, ErrKeysFileNotFound)
		}
		return nil, fmt.Errorf("reading key file '%s': %w: %w", path, ErrKeysFileReadFailed, err)
	}
	defer file.Close()

	var loadedKeys []*LoadedKey
	seen := make(map[common.Address]bool)
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, err := ParseKeyLine(line)
		if err != nil {
			log.Warn("Skipping invalid private key", "line", lineNumber, "file", path, "error", err)
			continue
		}
		if seen[key.Address] {
			log.Warn("Skipping duplicate key", "line", lineNumber, "address", key.Address.Hex())
			continue
		}
		seen[key.Address] = true
		loadedKeys = append(loadedKeys, key)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning key file '%s': %w: %w", path, ErrKeysFileReadFailed, err)
	}

	if len(loadedKeys) == 0 {
		log.Error("No valid private keys found in file", "file", path)
		return nil, fmt.Errorf("%w in file '%s'", ErrNoValidKeysFound, path)
	}

	return loadedKeys, nil
}

// ParseKeyLine converts a single "<hex key> [label]" line into a LoadedKey.
func ParseKeyLine(line string) (*LoadedKey, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrInvalidKey
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(fields[0], "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	return &LoadedKey{
		PrivateKey: privateKey,
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		Label:      strings.Join(fields[1:], " "),
	}, nil
}
