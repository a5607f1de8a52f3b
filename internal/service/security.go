package service

import (
	"context"
	"fmt"
	"time"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/repository"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

// SecurityService owns the lock and pairing state of platform users on WhatsApp.
type SecurityService struct {
	repo          repository.SecurityRepository
	pairingSecret string
	idleLockAfter time.Duration
	now           func() time.Time
}

func NewSecurityService(repo repository.SecurityRepository, pairingSecret string, idleLockAfter time.Duration) *SecurityService {
	return &SecurityService{
		repo:          repo,
		pairingSecret: pairingSecret,
		idleLockAfter: idleLockAfter,
		now:           time.Now,
	}
}

func (s *SecurityService) state(ctx context.Context, userID string) (*model.SecurityState, error) {
	st, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find security state: %w", err)
	}
	if st == nil {
		st = &model.SecurityState{UserID: userID}
	}
	return st, nil
}

func (s *SecurityService) IsLocked(ctx context.Context, userID string) (bool, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return false, err
	}
	return st.Locked, nil
}

func (s *SecurityService) Lock(ctx context.Context, userID string, reason model.LockReason) error {
	if err := s.repo.Lock(ctx, userID, reason); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	audit.Log(ctx, audit.Event{
		Type:    audit.EventAccountLock,
		UserID:  userID,
		Details: map[string]interface{}{"reason": string(reason)},
	})
	return nil
}

// Unlock clears the lock and pairs the phone that completed the unlock challenge.
func (s *SecurityService) Unlock(ctx context.Context, userID, phone string) error {
	if err := s.repo.Unlock(ctx, userID); err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}
	if err := s.Pair(ctx, userID, phone); err != nil {
		return err
	}
	audit.Log(ctx, audit.Event{
		Type:   audit.EventAccountUnlock,
		UserID: userID,
		Phone:  util.MaskPhone(phone),
	})
	return nil
}

func (s *SecurityService) Pair(ctx context.Context, userID, phone string) error {
	fp := util.PairingFingerprint(s.pairingSecret, phone)
	if err := s.repo.SetPairing(ctx, userID, fp); err != nil {
		return fmt.Errorf("set pairing: %w", err)
	}
	audit.Log(ctx, audit.Event{
		Type:   audit.EventPairing,
		UserID: userID,
		Phone:  util.MaskPhone(phone),
	})
	return nil
}

// IsPaired reports whether phone is the number the user last verified from.
func (s *SecurityService) IsPaired(ctx context.Context, userID, phone string) (bool, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return false, err
	}
	if st.PairingFingerprint == nil {
		return false, nil
	}
	return util.ConstantTimeEqual(*st.PairingFingerprint, util.PairingFingerprint(s.pairingSecret, phone)), nil
}

// CheckActivity locks users idle for longer than the configured threshold and
// records activity otherwise. It returns true when the user is locked.
func (s *SecurityService) CheckActivity(ctx context.Context, userID string) (bool, error) {
	st, err := s.state(ctx, userID)
	if err != nil {
		return false, err
	}
	if st.Locked {
		return true, nil
	}

	now := s.now()
	if s.idleLockAfter > 0 && st.LastActivityAt != nil && now.Sub(*st.LastActivityAt) > s.idleLockAfter {
		if err := s.Lock(ctx, userID, model.LockReasonIdle); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := s.repo.TouchActivity(ctx, userID, now); err != nil {
		return false, fmt.Errorf("touch activity: %w", err)
	}
	return false, nil
}
