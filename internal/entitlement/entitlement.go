// Package entitlement tracks whether premium features are unlocked.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrPremiumRequired is returned by Require when premium is locked.
	ErrPremiumRequired = errors.New("premium required: unlock with `tasbih premium unlock`")
	// ErrEntitlementCheck reports that the premium flag could not be read.
	ErrEntitlementCheck = errors.New("unable to check premium status")
)

// KeyPremium is the store key of the premium flag.
const KeyPremium = "isPremiumUnlocked"

// Store is the key-value store holding the flag.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Service reads and writes the premium flag. The flag is trusted as stored.
type Service struct {
	store Store
}

// New returns a Service backed by store.
func New(store Store) *Service {
	return &Service{store: store}
}

// IsPremiumUnlocked reports the flag. On a read failure it returns false and
// an error wrapping ErrEntitlementCheck.
func (s *Service) IsPremiumUnlocked(ctx context.Context) (bool, error) {
	raw, ok, err := s.store.Get(ctx, KeyPremium)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEntitlementCheck, err)
	}
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	return err == nil && v, nil
}

// Unlock sets the flag.
func (s *Service) Unlock(ctx context.Context) error {
	return s.store.Set(ctx, KeyPremium, "true")
}

// Lock clears the flag.
func (s *Service) Lock(ctx context.Context) error {
	return s.store.Set(ctx, KeyPremium, "false")
}

// Require returns nil when premium is unlocked, ErrPremiumRequired when it is
// locked, and an ErrEntitlementCheck error when the flag cannot be read.
func (s *Service) Require(ctx context.Context) error {
	ok, err := s.IsPremiumUnlocked(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPremiumRequired
	}
	return nil
}
