package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/metadata"
)

// EncryptionService toggles the reversible transform applied to settings
// blobs and backups. When disabled every operation passes text through, so
// callers must check IsEncryptionEnabled before interpreting stored values.
type EncryptionService struct {
	store  metadata.Repository
	random io.Reader
	log    logging.Logger
}

func NewEncryptionService(store metadata.Repository, log logging.Logger) *EncryptionService {
	return &EncryptionService{store: store, random: rand.Reader, log: log}
}

// WithRandom replaces the key material source.
func (s *EncryptionService) WithRandom(r io.Reader) *EncryptionService {
	s.random = r
	return s
}

func (s *EncryptionService) IsEncryptionEnabled(ctx context.Context) bool {
	v, err := s.store.Get(ctx, common.EncryptionEnabledKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read encryption flag", "error", err)
		return false
	}
	return string(v) == "true"
}

func (s *EncryptionService) EnableEncryption(ctx context.Context) error {
	if s.IsEncryptionEnabled(ctx) {
		return nil
	}

	key := make([]byte, cryptox.KeySize)
	if _, err := io.ReadFull(s.random, key); err != nil {
		return fmt.Errorf("generate encryption key: %w", err)
	}
	defer common.WipeByteArray(key)

	if err := s.store.Set(ctx, common.EncryptionKeyKey, []byte(hex.EncodeToString(key))); err != nil {
		return fmt.Errorf("store encryption key: %w", err)
	}
	if err := s.store.Set(ctx, common.EncryptionEnabledKey, []byte("true")); err != nil {
		return fmt.Errorf("store encryption flag: %w", err)
	}

	s.log.Info(ctx, "encryption enabled")
	return nil
}

func (s *EncryptionService) DisableEncryption(ctx context.Context) error {
	if err := s.store.Delete(ctx, common.EncryptionKeyKey); err != nil {
		return fmt.Errorf("delete encryption key: %w", err)
	}
	if err := s.store.Set(ctx, common.EncryptionEnabledKey, []byte("false")); err != nil {
		return fmt.Errorf("store encryption flag: %w", err)
	}

	s.log.Info(ctx, "encryption disabled")
	return nil
}

func (s *EncryptionService) key(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, common.EncryptionKeyKey)
	if err != nil {
		return "", fmt.Errorf("read encryption key: %w", err)
	}
	if len(v) == 0 {
		return "", common.ErrEncryptionKeyMissing
	}
	return string(v), nil
}

// EncryptData transforms text with the stored key. The output is stable for
// a given key.
func (s *EncryptionService) EncryptData(ctx context.Context, text string) (string, error) {
	if !s.IsEncryptionEnabled(ctx) {
		return text, nil
	}

	key, err := s.key(ctx)
	if err != nil {
		return "", err
	}
	return cryptox.Transform(text, key)
}

// DecryptData reverses EncryptData. Text that does not reverse cleanly is
// returned unchanged.
func (s *EncryptionService) DecryptData(ctx context.Context, text string) (string, error) {
	if !s.IsEncryptionEnabled(ctx) {
		return text, nil
	}

	key, err := s.key(ctx)
	if err != nil {
		return "", err
	}

	plain, ok := cryptox.Reverse(text, key)
	if !ok {
		s.log.Debug(ctx, "stored value is not transformed, using it as is")
		return text, nil
	}
	return plain, nil
}

func (s *EncryptionService) EncryptObject(ctx context.Context, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal object: %w", err)
	}
	return s.EncryptData(ctx, string(b))
}

func DecryptObject[T any](ctx context.Context, s *EncryptionService, text string) (T, error) {
	var out T

	plain, err := s.DecryptData(ctx, text)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(plain), &out); err != nil {
		return out, fmt.Errorf("unmarshal object: %w", err)
	}
	return out, nil
}
