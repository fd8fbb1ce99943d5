package config

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// RunSetupWizard interactively collects the admin credentials and writes a
// .env file the server reads on the next start. The JWT secret is generated
// rather than prompted for.
func RunSetupWizard() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("AI Tracker Server Setup")
	fmt.Println("=======================")

	fmt.Print("Admin username [admin]: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}

	password, err := promptPassword("Admin password: ")
	if err != nil {
		return err
	}
	if len(password) < 4 {
		return fmt.Errorf("password must be at least 4 characters")
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	env := fmt.Sprintf(
		"SERVER_HOST=0.0.0.0\nSERVER_PORT=8080\nDATABASE_PATH=data/app.db\nJWT_SECRET=%s\nADMIN_USERNAME=%s\nADMIN_PASSWORD=%s\n",
		secret, username, password,
	)
	if err := os.WriteFile(".env", []byte(env), 0o600); err != nil {
		return fmt.Errorf("failed to write .env: %w", err)
	}

	fmt.Println("\nConfiguration written to .env")
	fmt.Println("Start the server again to apply it.")
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
