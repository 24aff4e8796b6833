package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opd-ai/l64/limits"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations for key derivation (NIST recommendation)
	PBKDF2Iterations = 100000
	// EncryptionVersion is the current on-disk format version
	EncryptionVersion = 1
	// SaltSize is the size of the salt for PBKDF2
	SaltSize = 32

	saltFileName  = ".salt"
	checkFileName = ".check"
	keyFileExt    = ".key"
	tmpFileExt    = ".tmp"
)

// checkPlaintext is sealed into the check file so a wrong master password is
// caught when the store is opened, before anything is written under it.
var checkPlaintext = []byte("l64 key store v1")

// KeyStore keeps named cipher keys on disk, each sealed with AES-256-GCM
// under a key derived from a master password.
//
// File format: [version:2][nonce:12][ciphertext+tag:N], where the plaintext
// is a JSON keyRecord. A sealed check record next to the salt lets the store
// reject a wrong master password on open.
type KeyStore struct {
	mu            sync.RWMutex
	encryptionKey [32]byte
	dataDir       string
	saltFile      string
	timeProvider  TimeProvider
}

// keyRecord is the sealed content of one key file.
type keyRecord struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// NewKeyStore opens (or creates) a key store in dataDir.
// masterPassword is wiped before NewKeyStore returns.
func NewKeyStore(dataDir string, masterPassword []byte) (*KeyStore, error) {
	return NewKeyStoreWithTimeProvider(dataDir, masterPassword, DefaultTimeProvider{})
}

// NewKeyStoreWithTimeProvider is NewKeyStore with an injected clock.
func NewKeyStoreWithTimeProvider(dataDir string, masterPassword []byte, tp TimeProvider) (*KeyStore, error) {
	if len(masterPassword) == 0 {
		return nil, &ArgumentError{Param: "masterPassword", Reason: "master password cannot be empty"}
	}
	if tp == nil {
		tp = DefaultTimeProvider{}
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ks := &KeyStore{
		dataDir:      dataDir,
		saltFile:     filepath.Join(dataDir, saltFileName),
		timeProvider: tp,
	}

	salt, err := ks.loadOrGenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salt: %w", err)
	}

	derivedKey := pbkdf2.Key(masterPassword, salt, PBKDF2Iterations, 32, sha256.New)
	copy(ks.encryptionKey[:], derivedKey)

	ZeroBytes(derivedKey)
	ZeroBytes(masterPassword)

	if err := ks.verifyPassword(); err != nil {
		ZeroBytes(ks.encryptionKey[:])
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewKeyStore",
		"data_dir": dataDir,
	}).Debug("Key store opened")

	return ks, nil
}

// loadOrGenerateSalt loads existing salt or generates a new one
func (ks *KeyStore) loadOrGenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)

	data, err := os.ReadFile(ks.saltFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read salt file: %w", err)
		}

		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		if err := os.WriteFile(ks.saltFile, salt, 0o600); err != nil {
			return nil, fmt.Errorf("failed to save salt: %w", err)
		}
		return salt, nil
	}

	if len(data) != SaltSize {
		return nil, fmt.Errorf("invalid salt file size: got %d, want %d", len(data), SaltSize)
	}

	copy(salt, data)
	return salt, nil
}

// verifyPassword checks the derived key against the check record. A store
// written without one is checked against its first key file instead, and the
// record is created once the key is known to be right.
func (ks *KeyStore) verifyPassword() error {
	plaintext, err := ks.readSealed(checkFileName)
	switch {
	case err == nil:
		if !bytes.Equal(plaintext, checkPlaintext) {
			return fmt.Errorf("%w: check record mismatch", ErrKeyStoreAuth)
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	files, err := filepath.Glob(filepath.Join(ks.dataDir, "*"+keyFileExt))
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(files)
	if len(files) > 0 {
		plaintext, err := ks.readSealed(filepath.Base(files[0]))
		if err != nil {
			return err
		}
		ZeroBytes(plaintext)
	}

	return ks.writeSealed(checkFileName, checkPlaintext)
}

// StoreKey validates key and persists it under name, replacing any key
// already stored there.
func (ks *KeyStore) StoreKey(name, key string) error {
	if err := limits.ValidateKeyName(name); err != nil {
		return &ArgumentError{Param: "name", Reason: "unusable key name", Err: err}
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	record, err := json.Marshal(keyRecord{Key: key, CreatedAt: ks.timeProvider.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode key record: %w", err)
	}
	defer ZeroBytes(record)

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := ks.writeSealed(name+keyFileExt, record); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":        "StoreKey",
		"name":            name,
		"key_fingerprint": KeyFingerprint(key),
	}).Info("Key stored")

	return nil
}

// LoadKey returns the key stored under name. The key is validated again
// after decryption.
func (ks *KeyStore) LoadKey(name string) (string, error) {
	record, err := ks.loadRecord(name)
	if err != nil {
		return "", err
	}
	return record.Key, nil
}

// KeyAge reports how long ago the key under name was stored.
func (ks *KeyStore) KeyAge(name string) (time.Duration, error) {
	record, err := ks.loadRecord(name)
	if err != nil {
		return 0, err
	}
	return ks.timeProvider.Since(record.CreatedAt), nil
}

// NeedsRotation reports whether the key under name is older than maxAge.
func (ks *KeyStore) NeedsRotation(name string, maxAge time.Duration) (bool, error) {
	if maxAge <= 0 {
		return false, &ArgumentError{Param: "maxAge", Reason: "must be positive"}
	}
	age, err := ks.KeyAge(name)
	if err != nil {
		return false, err
	}
	return age >= maxAge, nil
}

// ListKeys returns the names of all stored keys in sorted order.
func (ks *KeyStore) ListKeys() ([]string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	files, err := filepath.Glob(filepath.Join(ks.dataDir, "*"+keyFileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(file), keyFileExt))
	}
	sort.Strings(names)
	return names, nil
}

// DeleteKey removes the key under name. The file is overwritten with zeros
// before removal (best effort). Deleting a missing key is not an error.
func (ks *KeyStore) DeleteKey(name string) error {
	if err := limits.ValidateKeyName(name); err != nil {
		return &ArgumentError{Param: "name", Reason: "unusable key name", Err: err}
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	filePath := filepath.Join(ks.dataDir, name+keyFileExt)

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat key file: %w", err)
	}

	zeros := make([]byte, info.Size())
	if err := os.WriteFile(filePath, zeros, 0o600); err != nil {
		return os.Remove(filePath)
	}

	return os.Remove(filePath)
}

// ChangePassword re-seals every stored key under a key derived from
// newMasterPassword and a fresh salt. newMasterPassword is wiped.
//
// All re-sealed files are staged as temporaries before anything is replaced,
// and the salt is replaced last. If a replacement fails, files already
// replaced are sealed again under the old key, so the store stays
// readable with the old password.
func (ks *KeyStore) ChangePassword(newMasterPassword []byte) error {
	if len(newMasterPassword) == 0 {
		return &ArgumentError{Param: "newMasterPassword", Reason: "master password cannot be empty"}
	}
	defer ZeroBytes(newMasterPassword)

	ks.mu.Lock()
	defer ks.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(ks.dataDir, "*"+keyFileExt))
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	filenames := make([]string, 0, len(files)+1)
	records := make(map[string][]byte, len(files)+1)
	defer func() {
		for _, r := range records {
			ZeroBytes(r)
		}
	}()
	for _, file := range files {
		filename := filepath.Base(file)
		plaintext, err := ks.readSealed(filename)
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filename, err)
		}
		filenames = append(filenames, filename)
		records[filename] = plaintext
	}
	filenames = append(filenames, checkFileName)
	records[checkFileName] = append([]byte(nil), checkPlaintext...)

	newSalt := make([]byte, SaltSize)
	if _, err := rand.Read(newSalt); err != nil {
		return fmt.Errorf("failed to generate new salt: %w", err)
	}

	newKey := pbkdf2.Key(newMasterPassword, newSalt, PBKDF2Iterations, 32, sha256.New)
	oldKey := ks.encryptionKey
	defer ZeroBytes(oldKey[:])
	copy(ks.encryptionKey[:], newKey)
	ZeroBytes(newKey)

	// Stage
	staged := make([]string, 0, len(filenames)+1)
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for _, filename := range filenames {
		tmp, err := ks.stageSealed(filename, records[filename])
		if err != nil {
			cleanup()
			ks.encryptionKey = oldKey
			return fmt.Errorf("failed to re-encrypt %s: %w", filename, err)
		}
		staged = append(staged, tmp)
	}
	saltTmp := ks.saltFile + tmpFileExt
	if err := os.WriteFile(saltTmp, newSalt, 0o600); err != nil {
		cleanup()
		ks.encryptionKey = oldKey
		return fmt.Errorf("failed to stage new salt: %w", err)
	}
	staged = append(staged, saltTmp)

	// Commit
	for k, filename := range filenames {
		if err := os.Rename(staged[k], filepath.Join(ks.dataDir, filename)); err != nil {
			cleanup()
			return ks.rollbackPassword(oldKey, filenames[:k], records,
				fmt.Errorf("failed to replace %s: %w", filename, err))
		}
	}
	if err := os.Rename(saltTmp, ks.saltFile); err != nil {
		cleanup()
		return ks.rollbackPassword(oldKey, filenames, records,
			fmt.Errorf("failed to save new salt: %w", err))
	}

	logrus.WithFields(logrus.Fields{
		"function": "ChangePassword",
		"keys":     len(files),
	}).Info("Key store re-sealed under new master password")

	return nil
}

// rollbackPassword restores oldKey and seals the already replaced files
// under it again. Callers hold ks.mu.
func (ks *KeyStore) rollbackPassword(oldKey [32]byte, replaced []string, records map[string][]byte, cause error) error {
	ks.encryptionKey = oldKey

	for _, filename := range replaced {
		if err := ks.writeSealed(filename, records[filename]); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "ChangePassword",
				"file":     filename,
				"error":    err.Error(),
			}).Error("Failed to restore file under the old master password")
			return fmt.Errorf("%w (restoring %s also failed: %w)", cause, filename, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "ChangePassword",
		"restored": len(replaced),
		"error":    cause.Error(),
	}).Warn("Password change rolled back")

	return cause
}

// Close wipes the derived encryption key. The store must not be used after
// Close.
func (ks *KeyStore) Close() error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ZeroBytes(ks.encryptionKey[:])
	return nil
}

func (ks *KeyStore) loadRecord(name string) (keyRecord, error) {
	if err := limits.ValidateKeyName(name); err != nil {
		return keyRecord{}, &ArgumentError{Param: "name", Reason: "unusable key name", Err: err}
	}

	ks.mu.RLock()
	plaintext, err := ks.readSealed(name + keyFileExt)
	ks.mu.RUnlock()
	if err != nil {
		return keyRecord{}, err
	}
	defer ZeroBytes(plaintext)

	var record keyRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return keyRecord{}, fmt.Errorf("failed to decode key record %s: %w", name, err)
	}
	if err := ValidateKey(record.Key); err != nil {
		return keyRecord{}, fmt.Errorf("stored key %s is corrupt: %w", name, err)
	}
	return record, nil
}

// writeSealed encrypts plaintext and writes it atomically (temp file +
// rename). Callers hold ks.mu.
func (ks *KeyStore) writeSealed(filename string, plaintext []byte) error {
	tmpFile, err := ks.stageSealed(filename, plaintext)
	if err != nil {
		return err
	}

	if err := os.Rename(tmpFile, filepath.Join(ks.dataDir, filename)); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// stageSealed encrypts plaintext under the current key into the temporary
// file for filename and returns its path.
func (ks *KeyStore) stageSealed(filename string, plaintext []byte) (string, error) {
	gcm, err := ks.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	output := make([]byte, 2+len(nonce)+len(ciphertext))
	binary.BigEndian.PutUint16(output[0:2], EncryptionVersion)
	copy(output[2:2+len(nonce)], nonce)
	copy(output[2+len(nonce):], ciphertext)

	tmpFile := filepath.Join(ks.dataDir, filename+tmpFileExt)
	if err := os.WriteFile(tmpFile, output, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}

	return tmpFile, nil
}

// readSealed reads and decrypts one file. Callers hold ks.mu for reading.
func (ks *KeyStore) readSealed(filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(ks.dataDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	// version + nonce + tag
	if len(data) < 2+12+16 {
		return nil, fmt.Errorf("file too short: %d bytes (minimum 30 bytes)", len(data))
	}

	version := binary.BigEndian.Uint16(data[0:2])
	if version != EncryptionVersion {
		return nil, fmt.Errorf("unsupported encryption version: %d (expected %d)", version, EncryptionVersion)
	}

	gcm, err := ks.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	nonce := data[2 : 2+nonceSize]
	ciphertext := data[2+nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w (wrong password or corrupted data): %w", ErrKeyStoreAuth, err)
	}

	return plaintext, nil
}

func (ks *KeyStore) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(ks.encryptionKey[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
