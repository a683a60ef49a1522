package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"figmamcp/internal/config"
	"figmamcp/internal/logging"
)

// CredentialStore is the OS credential store as seen by the auth commands.
type CredentialStore interface {
	Store(key string) error
	Get() (string, error)
	Delete() error
}

// AuthOptions configures the auth commands.
type AuthOptions struct {
	// APIKey is the --figma-api-key value, if given.
	APIKey string
	// APIKeySource is where ff took APIKey from. Empty means the command
	// line.
	APIKeySource config.Source
	// NoKeyring skips the OS credential store in AuthStatus.
	NoKeyring bool
	// StdinIsPipe reports whether stdin is piped. Defaults to IsStdinPipe.
	StdinIsPipe func() bool
	// Credentials defaults to the OS credential store.
	Credentials CredentialStore
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (opts *AuthOptions) credentials() CredentialStore {
	if opts.Credentials != nil {
		return opts.Credentials
	}
	return config.NewCredentials()
}

// AuthLogin stores an API key in the OS credential store.
//
// The key is taken from --figma-api-key, then the first argument, then
// the first line of piped stdin.
//
// Exit Codes:
// - 0: Key stored
// - 1: No key given or the store failed
func AuthLogin(args []string, stdin io.Reader, stdout, stderr io.Writer, opts AuthOptions) int {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" && len(args) > 0 {
		key = strings.TrimSpace(args[0])
	}

	isPipe := opts.StdinIsPipe
	if isPipe == nil {
		isPipe = IsStdinPipe
	}
	if key == "" && stdin != nil && isPipe() {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(stderr, "error: failed to read key from stdin: %v\n", err)
			return 1
		}
		key = strings.TrimSpace(line)
	}

	if key == "" {
		fmt.Fprintln(stderr, "error: no API key provided")
		fmt.Fprintln(stderr, "usage: figma-mcp auth login [--figma-api-key=<key> | <key>]")
		fmt.Fprintln(stderr, "       echo <key> | figma-mcp auth login")
		return 1
	}

	if err := opts.credentials().Store(key); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Stored Figma API key %s in the OS credential store\n", logging.Redact(key))
	return 0
}

// AuthLogout deletes the stored API key. Removing a key that was never
// stored succeeds.
func AuthLogout(stdout, stderr io.Writer, opts AuthOptions) int {
	if err := opts.credentials().Delete(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Removed Figma API key from the OS credential store")
	return 0
}

// AuthStatus reports which source the server would take its key from.
//
// Exit Codes:
// - 0: A key is available
// - 1: No key is configured
func AuthStatus(stdout, stderr io.Writer, opts AuthOptions) int {
	var creds config.KeyGetter
	if !opts.NoKeyring {
		creds = opts.credentials()
	}

	key, source, err := config.Resolve(config.ResolveOptions{
		FlagKey:     opts.APIKey,
		Getenv:      opts.Getenv,
		Credentials: creds,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if source == config.SourceFlag && opts.APIKeySource != "" {
		source = opts.APIKeySource
	}

	fmt.Fprintf(stdout, "API key: %s\n", logging.Redact(key))
	fmt.Fprintf(stdout, "Source:  %s\n", source)
	return 0
}
