// Package main provides the command-line interface for the L64 cipher.
//
// It generates keys, encrypts and decrypts text, and manages keys kept in an
// encrypted key store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opd-ai/l64/crypto"
	"github.com/sirupsen/logrus"
)

// Supported modes
const (
	modeGenKey  = "genkey"
	modeEncrypt = "encrypt"
	modeDecrypt = "decrypt"
	modeStore   = "store"
	modeLoad    = "load"
	modeList    = "list"
)

var validModes = []string{modeGenKey, modeEncrypt, modeDecrypt, modeStore, modeLoad, modeList}

// CLI configuration
type CLIConfig struct {
	mode        string
	key         string
	keyName     string
	keystoreDir string
	passwordEnv string
	text        string
	textSet     bool
	trim        bool
	logLevel    string
	help        bool
}

// parseCLIFlags parses command-line arguments and returns the configuration.
func parseCLIFlags(args []string, output io.Writer) (*CLIConfig, *flag.FlagSet, error) {
	config := &CLIConfig{}

	fs := flag.NewFlagSet("l64", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&config.mode, "mode", "", "Operation: "+strings.Join(validModes, ", "))

	// Key selection
	fs.StringVar(&config.key, "key", "", "Cipher key (64 symbols, a shuffle of the Base64 alphabet)")
	fs.StringVar(&config.keyName, "key-name", "", "Name of a key in the key store")
	fs.StringVar(&config.keystoreDir, "keystore", "", "Key store directory")
	fs.StringVar(&config.passwordEnv, "password-env", "L64_PASSWORD", "Environment variable holding the key store master password")

	// Input/output
	fs.StringVar(&config.text, "text", "", "Input text (default: read stdin)")
	fs.BoolVar(&config.trim, "trim", false, "Trim trailing padding spaces after decryption")

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")

	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "text" {
			config.textSet = true
		}
	})

	return config, fs, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "L64 matrix substitution cipher")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s -mode <mode> [options]\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  # Generate a key")
	fmt.Fprintf(w, "  %s -mode genkey\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Encrypt with an explicit key")
	fmt.Fprintf(w, "  %s -mode encrypt -key <key> -text 'Hello, World!'\n", fs.Name())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Decrypt with a stored key, trimming padding")
	fmt.Fprintf(w, "  L64_PASSWORD=secret %s -mode decrypt -keystore ~/.l64 -key-name default -trim < message.txt\n", fs.Name())
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	known := false
	for _, m := range validModes {
		if config.mode == m {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("invalid mode %q: must be one of %s", config.mode, strings.Join(validModes, ", "))
	}

	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", config.logLevel)
	}

	usesStore := config.keystoreDir != ""
	if (config.keyName != "") != usesStore && config.mode != modeList {
		return fmt.Errorf("-key-name and -keystore must be given together")
	}
	if usesStore && config.passwordEnv == "" {
		return fmt.Errorf("password environment variable name cannot be empty")
	}

	switch config.mode {
	case modeEncrypt, modeDecrypt:
		if config.key == "" && !usesStore {
			return fmt.Errorf("%s requires -key or -keystore with -key-name", config.mode)
		}
		if config.key != "" && usesStore {
			return fmt.Errorf("-key cannot be combined with -keystore")
		}
	case modeStore:
		if !usesStore || config.key == "" {
			return fmt.Errorf("store requires -key, -keystore and -key-name")
		}
	case modeLoad:
		if !usesStore {
			return fmt.Errorf("load requires -keystore and -key-name")
		}
	case modeList:
		if !usesStore {
			return fmt.Errorf("list requires -keystore")
		}
	}

	if config.trim && config.mode != modeDecrypt {
		return fmt.Errorf("-trim only applies to decrypt")
	}

	return nil
}

// configureLogging applies the log level and sends logs to w.
func configureLogging(level string, w io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

// app carries the process environment so run can be exercised in tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	getenv func(string) string
}

// run executes one CLI operation.
func (a *app) run(config *CLIConfig) error {
	switch config.mode {
	case modeGenKey:
		return a.genKey(config)
	case modeEncrypt, modeDecrypt:
		return a.transform(config)
	case modeStore:
		return a.withStore(config, func(ks *crypto.KeyStore) error {
			return ks.StoreKey(config.keyName, config.key)
		})
	case modeLoad:
		return a.withStore(config, func(ks *crypto.KeyStore) error {
			key, err := ks.LoadKey(config.keyName)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, key)
			return err
		})
	case modeList:
		return a.withStore(config, func(ks *crypto.KeyStore) error {
			names, err := ks.ListKeys()
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(a.stdout, name); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return fmt.Errorf("unsupported mode %q", config.mode)
}

func (a *app) genKey(config *CLIConfig) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	if config.keystoreDir != "" {
		err := a.withStore(config, func(ks *crypto.KeyStore) error {
			return ks.StoreKey(config.keyName, key)
		})
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(a.stdout, key)
	return err
}

func (a *app) transform(config *CLIConfig) error {
	key := config.key
	if key == "" {
		err := a.withStore(config, func(ks *crypto.KeyStore) error {
			var err error
			key, err = ks.LoadKey(config.keyName)
			return err
		})
		if err != nil {
			return err
		}
	}

	input, err := a.input(config)
	if err != nil {
		return err
	}

	var output string
	if config.mode == modeEncrypt {
		output, err = crypto.Encrypt(input, key)
	} else {
		output, err = crypto.Decrypt(input, key)
		if err == nil && config.trim {
			output = crypto.TrimPadding(output)
		}
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.stdout, output)
	return err
}

// input returns -text verbatim, or stdin without the single line terminator
// that echo and most editors append.
func (a *app) input(config *CLIConfig) (string, error) {
	if config.textSet {
		return config.text, nil
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func (a *app) withStore(config *CLIConfig, fn func(*crypto.KeyStore) error) error {
	password := a.getenv(config.passwordEnv)
	if password == "" {
		return fmt.Errorf("environment variable %s is empty or unset", config.passwordEnv)
	}

	ks, err := crypto.NewKeyStore(config.keystoreDir, []byte(password))
	if err != nil {
		return fmt.Errorf("failed to open key store: %w", err)
	}
	defer ks.Close()

	return fn(ks)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, crypto.ErrInvariantViolation):
		return 3
	default:
		return 1
	}
}

// main is the entry point for the cipher tool.
func main() {
	cliConfig, fs, err := parseCLIFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if cliConfig.help {
		printUsage(os.Stdout, fs)
		os.Exit(0)
	}

	if err := validateCLIConfig(cliConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	if err := configureLogging(cliConfig.logLevel, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	a := &app{stdin: os.Stdin, stdout: os.Stdout, getenv: os.Getenv}
	if err := a.run(cliConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
