package conversation

import (
	"fmt"
	"strings"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/otp"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return email
	}
	return local[:1] + "***@" + domain
}

func (t *Turn) destination(email string) otp.Destination {
	return otp.Destination{Phone: t.Phone, Email: email}
}

// sendCode starts an OTP challenge. It reports false when the send was
// refused by the cool-down, in which case the session is back at the menu.
func (e *Engine) sendCode(t *Turn, email string) (bool, error) {
	err := e.OTP.Send(t.ctx, t.destination(email))
	if err == nil {
		return true, nil
	}
	if apperrors.GetCode(err) == apperrors.ErrCodeRateLimitExceeded {
		if err := t.Reset(); err != nil {
			return false, err
		}
		t.Say("otp.cooldown")
		e.showMenu(t)
		return false, nil
	}
	return false, err
}

// checkCode validates a typed code. It reports true only when the code was
// accepted; wrong codes re-prompt and an exhausted challenge ends the flow.
func (e *Engine) checkCode(t *Turn, email, raw string) (bool, error) {
	code := strings.TrimSpace(raw)
	if !util.IsNumericCode(code) {
		t.Say("otp.format")
		return false, nil
	}

	err := e.OTP.Verify(t.ctx, t.destination(email), code)
	if err == nil {
		return true, nil
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeOTPInvalid, apperrors.ErrCodeOTPExpired:
		t.Say("otp.invalid")
		return false, nil
	case apperrors.ErrCodeOTPExhausted, apperrors.ErrCodeRateLimitExceeded:
		if err := t.Reset(); err != nil {
			return false, err
		}
		t.Say("otp.exhausted")
		e.showMenu(t)
		return false, nil
	}
	return false, err
}

// link binds this phone to a verified account: the marketplace record, the
// pairing fingerprint, the contact and the session.
func (e *Engine) link(t *Turn, userID, email string) (*model.Account, error) {
	if err := e.Market.MarkVerified(t.ctx, userID); err != nil {
		return nil, apperrors.Business("mark verified", err)
	}
	if err := e.Market.LinkPhone(t.ctx, userID, t.Phone); err != nil {
		return nil, apperrors.Business("link phone", err)
	}
	if err := e.Security.Pair(t.ctx, userID, t.Phone); err != nil {
		return nil, err
	}
	if err := e.Contacts.BindUser(t.ctx, t.Phone, &userID); err != nil {
		return nil, err
	}

	acct, err := e.Market.FindAccountByEmail(t.ctx, email)
	if err != nil {
		return nil, apperrors.Business("find account", err)
	}
	if acct == nil {
		return nil, fmt.Errorf("account %s vanished after verification", userID)
	}

	err = t.set(session.Patch{
		Flow:         session.FlowPtr(model.FlowMenu),
		ReplaceData:  true,
		SkipSnapshot: true,
		User:         acct.SessionUser(),
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (e *Engine) startSignup(t *Turn) error {
	if u := t.User(); u != nil {
		t.Say("already.registered", u.Email)
		e.showMenu(t)
		return nil
	}
	return e.begin(t, seqSignup, nil)
}

func (e *Engine) signupEmail(t *Turn, raw string) error {
	email, ok := validEmail(raw)
	if !ok {
		e.reject(t, "signup.email_invalid")
		return nil
	}
	existing, err := e.Market.FindAccountByEmail(t.ctx, email)
	if err != nil {
		return apperrors.Business("find account", err)
	}
	if existing != nil {
		if err := t.Reset(); err != nil {
			return err
		}
		t.Say("signup.exists")
		return nil
	}
	return e.advance(t, steps[model.FlowSignupEmail], map[string]any{"signup_email": email})
}

func (e *Engine) completeSignup(t *Turn) error {
	acct, err := e.Market.CreateAccount(t.ctx, model.SignupInput{
		Name:        t.str("signup_name"),
		Email:       t.str("signup_email"),
		Phone:       t.Phone,
		Country:     t.str("signup_country"),
		AccountType: model.AccountType(t.str("signup_type")),
	})
	if err != nil {
		return apperrors.Business("create account", err)
	}

	sent, err := e.sendCode(t, acct.Email)
	if err != nil || !sent {
		return err
	}
	if err := t.Goto(model.FlowSignupOTP, map[string]any{"signup_user_id": acct.ID}); err != nil {
		return err
	}
	t.Say("otp.sent", maskEmail(acct.Email))
	return nil
}

func (e *Engine) signupOTP(t *Turn, raw string) error {
	email := t.str("signup_email")
	ok, err := e.checkCode(t, email, raw)
	if err != nil || !ok {
		return err
	}
	acct, err := e.link(t, t.str("signup_user_id"), email)
	if err != nil {
		return err
	}
	audit.Log(t.ctx, audit.Event{
		Type:    audit.EventSignup,
		UserID:  acct.ID,
		Phone:   util.MaskPhone(t.Phone),
		Details: map[string]interface{}{"accountType": string(acct.AccountType)},
	})
	t.Say("signup.welcome", firstName(acct.Name))
	e.showMenu(t)
	return nil
}

func (e *Engine) startLogin(t *Turn) error {
	if u := t.User(); u != nil {
		t.Say("already.registered", u.Email)
		e.showMenu(t)
		return nil
	}
	if err := t.Start(model.FlowLoginEmail, nil); err != nil {
		return err
	}
	e.prompt(t)
	return nil
}

func (e *Engine) loginEmail(t *Turn, raw string) error {
	email, ok := validEmail(raw)
	if !ok {
		e.reject(t, "signup.email_invalid")
		return nil
	}
	acct, err := e.Market.FindAccountByEmail(t.ctx, email)
	if err != nil {
		return apperrors.Business("find account", err)
	}
	if acct == nil {
		if err := t.Reset(); err != nil {
			return err
		}
		t.Say("login.unknown")
		return nil
	}

	sent, err := e.sendCode(t, acct.Email)
	if err != nil || !sent {
		return err
	}
	err = t.Goto(model.FlowLoginOTP, map[string]any{"login_user_id": acct.ID, "login_email": acct.Email})
	if err != nil {
		return err
	}
	t.Say("otp.sent", maskEmail(acct.Email))
	return nil
}

func (e *Engine) loginOTP(t *Turn, raw string) error {
	email := t.str("login_email")
	ok, err := e.checkCode(t, email, raw)
	if err != nil || !ok {
		return err
	}
	acct, err := e.link(t, t.str("login_user_id"), email)
	if err != nil {
		return err
	}
	audit.Log(t.ctx, audit.Event{Type: audit.EventLogin, UserID: acct.ID, Phone: util.MaskPhone(t.Phone)})
	t.Say("login.done", firstName(acct.Name))
	e.showMenu(t)
	return nil
}

// beginVerify challenges the phone before it may act for userID. next names
// the flow to resume once the code is accepted.
func (e *Engine) beginVerify(t *Turn, userID, email, next string) error {
	sent, err := e.sendCode(t, email)
	if err != nil || !sent {
		return err
	}
	data := map[string]any{"verify_user_id": userID, "verify_email": email}
	if next != "" {
		data["verify_next"] = next
	}
	if err := t.Start(model.FlowVerifyOTP, data); err != nil {
		return err
	}
	t.Say("verify.required")
	t.Say("otp.sent", maskEmail(email))
	return nil
}

func (e *Engine) verifyOTP(t *Turn, raw string) error {
	email := t.str("verify_email")
	next := t.str("verify_next")
	ok, err := e.checkCode(t, email, raw)
	if err != nil || !ok {
		return err
	}
	if _, err := e.link(t, t.str("verify_user_id"), email); err != nil {
		return err
	}
	t.Say("verify.done")
	if next == seqProduct {
		return e.startProduct(t)
	}
	e.showMenu(t)
	return nil
}

func (e *Engine) startUnlock(t *Turn) error {
	if !e.requireUser(t) {
		return nil
	}
	locked, err := e.Security.IsLocked(t.ctx, t.User().ID)
	if err != nil {
		return err
	}
	if !locked {
		if t.S.Flow == model.FlowUnlockOTP {
			if err := t.Reset(); err != nil {
				return err
			}
		}
		t.Say("unlock.not_locked")
		return nil
	}

	sent, err := e.sendCode(t, t.User().Email)
	if err != nil || !sent {
		return err
	}
	if err := t.Start(model.FlowUnlockOTP, nil); err != nil {
		return err
	}
	t.Say("otp.sent", maskEmail(t.User().Email))
	return nil
}

func (e *Engine) unlockOTP(t *Turn, raw string) error {
	u := t.User()
	if u == nil {
		return t.Reset()
	}
	ok, err := e.checkCode(t, u.Email, raw)
	if err != nil || !ok {
		return err
	}

	// The account may have been unlocked by another channel meanwhile.
	locked, err := e.Security.IsLocked(t.ctx, u.ID)
	if err != nil {
		return err
	}
	if locked {
		if err := e.Security.Unlock(t.ctx, u.ID, t.Phone); err != nil {
			return err
		}
	}
	if err := t.Finish(); err != nil {
		return err
	}
	t.Say("unlock.done")
	e.showMenu(t)
	return nil
}

func (e *Engine) cmdLock(t *Turn) error {
	if !e.requireUser(t) {
		return nil
	}
	if err := e.Security.Lock(t.ctx, t.User().ID, model.LockReasonManual); err != nil {
		return err
	}
	if err := t.Reset(); err != nil {
		return err
	}
	t.Say("lock.done")
	return nil
}

func (e *Engine) cmdLogout(t *Turn) error {
	if !e.requireUser(t) {
		return nil
	}
	userID := t.User().ID
	if err := e.Market.UnlinkPhone(t.ctx, userID); err != nil {
		return apperrors.Business("unlink phone", err)
	}
	if err := e.Contacts.BindUser(t.ctx, t.Phone, nil); err != nil {
		return err
	}
	if err := e.Sessions.Clear(t.ctx, t.Phone); err != nil {
		return err
	}
	locale := t.S.Locale
	t.S = model.NewSession(t.S.UpdatedAt)
	t.S.Locale = locale
	audit.Log(t.ctx, audit.Event{Type: audit.EventLogout, UserID: userID, Phone: util.MaskPhone(t.Phone)})
	t.Say("logout.done")
	return nil
}
