package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

func (a *App) Settings(ctx context.Context) error {
	sec, err := a.svc.Settings.GetSecuritySettings(ctx)
	if err != nil {
		return err
	}
	bs, err := a.svc.Settings.GetBackupSettings(ctx)
	if err != nil {
		return err
	}

	a.println(RenderResult("Keamanan", true,
		Field{"level", string(sec.SecurityLevel)},
		Field{"privacy", string(sec.PrivacyMode)},
		Field{"hide_balances", yesNo(sec.HideBalances)},
		Field{"hide_transactions", yesNo(sec.HideTransactions)},
		Field{"hide_budgets", yesNo(sec.HideBudgets)},
		Field{"sensitive_auth", yesNo(sec.RequireAuthForSensitiveActions)},
		Field{"session_timeout", fmt.Sprintf("%d menit", sec.SessionTimeoutMinutes)},
		Field{"auto_lock", fmt.Sprintf("%d menit", sec.AutoLockMinutes)},
		Field{"max_attempts", strconv.Itoa(sec.MaxLoginAttempts)},
	))

	last := "-"
	if bs.LastBackupAt != nil {
		last = formatTime(*bs.LastBackupAt)
	}
	a.println(RenderResult("Backup", true,
		Field{"auto", yesNo(bs.AutoBackupEnabled)},
		Field{"frequency", string(bs.BackupFrequency)},
		Field{"location", string(bs.BackupLocation)},
		Field{"transactions", yesNo(bs.IncludeTransactions)},
		Field{"budgets", yesNo(bs.IncludeBudgets)},
		Field{"challenges", yesNo(bs.IncludeChallenges)},
		Field{"settings", yesNo(bs.IncludeSettings)},
		Field{"encryption", yesNo(bs.EncryptionEnabled)},
		Field{"last_backup", last},
	))
	return nil
}

// parseAssignments splits "key=value" arguments.
func parseAssignments(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: expected key=value", common.ErrInvalidSettingArg)
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidSettingArg, arg)
		}
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

func parseBool(key, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "ya", "yes", "1":
		return true, nil
	case "off", "false", "tidak", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s=%q", common.ErrInvalidSettingArg, key, v)
}

func parsePositive(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", common.ErrInvalidSettingArg, key, v)
	}
	return n, nil
}

func applySecurity(s *models.SecuritySettings, kv map[string]string) (privacyChanged bool, err error) {
	for k, v := range kv {
		switch k {
		case "level":
			s.SecurityLevel = models.SecurityLevel(v)
		case "privacy":
			s.PrivacyMode = models.PrivacyMode(v)
			privacyChanged = true
		case "hide_balances":
			s.HideBalances, err = parseBool(k, v)
			privacyChanged = true
		case "hide_transactions":
			s.HideTransactions, err = parseBool(k, v)
			privacyChanged = true
		case "hide_budgets":
			s.HideBudgets, err = parseBool(k, v)
			privacyChanged = true
		case "sensitive_auth":
			s.RequireAuthForSensitiveActions, err = parseBool(k, v)
		case "session_timeout":
			s.SessionTimeoutMinutes, err = parsePositive(k, v)
		case "auto_lock":
			s.AutoLockMinutes, err = parsePositive(k, v)
		case "max_attempts":
			s.MaxLoginAttempts, err = parsePositive(k, v)
		default:
			err = fmt.Errorf("%w: unknown key %q", common.ErrInvalidSettingArg, k)
		}
		if err != nil {
			return false, err
		}
	}
	return privacyChanged, nil
}

func (a *App) SetSecurity(ctx context.Context, args []string) error {
	kv, err := parseAssignments(args)
	if err != nil {
		return err
	}

	s, err := a.svc.Settings.GetSecuritySettings(ctx)
	if err != nil {
		return err
	}
	privacyChanged, err := applySecurity(s, kv)
	if err != nil {
		return err
	}

	if err := a.svc.Policy.Authorize(ctx, models.ActionChangeSecuritySettings); err != nil {
		return err
	}
	if privacyChanged {
		if err := a.svc.Policy.Authorize(ctx, models.ActionChangePrivacySettings); err != nil {
			return err
		}
	}

	if err := a.svc.Settings.UpdateSecuritySettings(ctx, s); err != nil {
		return err
	}
	a.println("Pengaturan keamanan disimpan")
	return nil
}

func applyBackup(s *models.BackupSettings, kv map[string]string) (err error) {
	for k, v := range kv {
		switch k {
		case "auto":
			s.AutoBackupEnabled, err = parseBool(k, v)
		case "transactions":
			s.IncludeTransactions, err = parseBool(k, v)
		case "budgets":
			s.IncludeBudgets, err = parseBool(k, v)
		case "challenges":
			s.IncludeChallenges, err = parseBool(k, v)
		case "settings":
			s.IncludeSettings, err = parseBool(k, v)
		case "encryption":
			s.EncryptionEnabled, err = parseBool(k, v)
		case "frequency":
			s.BackupFrequency = models.BackupFrequency(v)
		case "location":
			s.BackupLocation = models.BackupLocation(v)
		default:
			err = fmt.Errorf("%w: unknown key %q", common.ErrInvalidSettingArg, k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) SetBackup(ctx context.Context, args []string) error {
	kv, err := parseAssignments(args)
	if err != nil {
		return err
	}

	s, err := a.svc.Settings.GetBackupSettings(ctx)
	if err != nil {
		return err
	}
	if err := applyBackup(s, kv); err != nil {
		return err
	}

	if err := a.svc.Settings.UpdateBackupSettings(ctx, s); err != nil {
		return err
	}
	a.println("Pengaturan backup disimpan")
	return nil
}

func (a *App) Encryption(ctx context.Context, arg string) error {
	switch arg {
	case "on":
		if err := a.svc.Encryption.EnableEncryption(ctx); err != nil {
			return err
		}
	case "off":
		if err := a.svc.Policy.Authorize(ctx, models.ActionChangeSecuritySettings); err != nil {
			return err
		}
		if err := a.svc.Encryption.DisableEncryption(ctx); err != nil {
			return err
		}
	case "", "status":
	default:
		return fmt.Errorf("%w: encryption on|off|status", common.ErrInvalidSettingArg)
	}

	a.println("Enkripsi aktif:", yesNo(a.svc.Encryption.IsEncryptionEnabled(ctx)))
	return nil
}

func (a *App) Biometric(ctx context.Context, arg string) error {
	switch arg {
	case "on":
		if err := a.svc.Credentials.EnableBiometricLogin(ctx); err != nil {
			return err
		}
	case "off":
		if err := a.svc.Credentials.DisableBiometricLogin(ctx); err != nil {
			return err
		}
	case "", "status":
	default:
		return fmt.Errorf("%w: biometric on|off|status", common.ErrInvalidSettingArg)
	}

	a.println("Login biometrik aktif:", yesNo(a.svc.Credentials.IsBiometricLoginEnabled(ctx)))
	return nil
}

var viewCategories = map[models.Action]models.DataCategory{
	models.ActionViewBalance:      models.DataBalances,
	models.ActionViewTransactions: models.DataTransactions,
	models.ActionViewBudgets:      models.DataBudgets,
}

// Check shows how the security policy treats an action.
func (a *App) Check(ctx context.Context, action string) error {
	if action == "" {
		return fmt.Errorf("%w: check <aksi>", common.ErrInvalidSettingArg)
	}
	act := models.Action(action)

	fields := []Field{{"Perlu autentikasi", yesNo(a.svc.Policy.RequiresAuthentication(ctx, act))}}
	if c, ok := viewCategories[act]; ok {
		fields = append(fields, Field{"Data disembunyikan", yesNo(a.svc.Policy.ShouldHideData(ctx, c))})
	}
	a.println(RenderResult(action, true, fields...))
	return nil
}
