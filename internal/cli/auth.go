package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Nama lengkap", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.svc.Auth.Register(ctx, email, string(password), name)
	if err != nil {
		return err
	}

	a.println(RenderResult("Registrasi berhasil", true,
		Field{"Email", u.Email},
		Field{"ID", u.ID},
	))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.svc.Auth.Login(ctx, email, string(password)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return errors.New("email atau kata sandi salah")
		}
		return err
	}

	a.afterLogin(ctx)
	return nil
}

func (a *App) BiometricLogin(ctx context.Context) error {
	if _, err := a.svc.Auth.BiometricLogin(ctx); err != nil {
		if errors.Is(err, common.ErrNoStoredCredentials) {
			a.println("Login biometrik tidak tersedia, silakan login manual")
			return nil
		}
		return err
	}

	a.afterLogin(ctx)
	return nil
}

// afterLogin greets the user and runs the automatic backup when it is due.
func (a *App) afterLogin(ctx context.Context) {
	if err := a.Greet(ctx); err != nil {
		a.log.Warn(ctx, "greeting failed", "error", err)
	}

	ran, err := a.svc.AutoBackup.CheckAndRun(ctx)
	if err != nil {
		a.log.Warn(ctx, "auto backup failed", "error", err)
		a.println(RenderWarning("Backup otomatis gagal: " + err.Error()))
		return
	}
	if ran {
		a.println("Backup otomatis dibuat")
	}
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.svc.Auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Anda telah keluar")
	return nil
}

func (a *App) Greet(ctx context.Context) error {
	name := "Tamu"
	if id, err := a.svc.Session.Current(ctx); err == nil {
		name, _, _ = strings.Cut(id.Email, "@")
	}

	msg, err := a.svc.Greeting.Greet(ctx, name)
	if err != nil {
		return err
	}
	a.println(titleStyle.Render(msg))
	return nil
}
