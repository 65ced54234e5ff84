package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	BiometricLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context, historyID string) error
	History(ctx context.Context) error
	Settings(ctx context.Context) error
	SetSecurity(ctx context.Context, args []string) error
	SetBackup(ctx context.Context, args []string) error
	Encryption(ctx context.Context, arg string) error
	Biometric(ctx context.Context, arg string) error
	Check(ctx context.Context, action string) error
	Greet(ctx context.Context) error
}

const (
	helpGuest    = "Perintah: register, login, biologin, greet, exit"
	helpLoggedIn = "Perintah: backup, restore [id], history, settings, set-security k=v..., set-backup k=v..., " +
		"encryption on|off|status, biometric on|off|status, check <aksi>, greet, logout, exit"
)

// runREPL reads commands line by line until EOF or "exit". Commands that
// need a session are refused while logged out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpGuest)
			}
			continue

		case "exit", "quit":
			printlnFn("Sampai jumpa!")
			return

		case "register":
			report(a.Register(ctx))
			continue

		case "login":
			report(a.Login(ctx))
			continue

		case "biologin":
			report(a.BiometricLogin(ctx))
			continue

		case "greet":
			report(a.Greet(ctx))
			continue
		}

		if !a.isLoggedIn(ctx) {
			switch cmd {
			case "logout", "backup", "restore", "history", "settings", "set-security", "set-backup",
				"encryption", "biometric", "check":
				printlnFn("Silakan login terlebih dahulu")
			default:
				printlnFn("Perintah tidak dikenal:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			report(a.Logout(ctx))
		case "backup":
			report(a.Backup(ctx))
		case "restore":
			report(a.Restore(ctx, arg))
		case "history":
			report(a.History(ctx))
		case "settings":
			report(a.Settings(ctx))
		case "set-security":
			report(a.SetSecurity(ctx, args))
		case "set-backup":
			report(a.SetBackup(ctx, args))
		case "encryption":
			report(a.Encryption(ctx, arg))
		case "biometric":
			report(a.Biometric(ctx, arg))
		case "check":
			report(a.Check(ctx, arg))
		default:
			printlnFn("Perintah tidak dikenal:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn(RenderError("Gagal", err))
	}
}
