// Package main provides the diplomat command, a line-oriented relay that
// exercises both sides of the diplomacy bridge.
//
// Each stdin line is a wire-form envoy ("{id}:{payload}") injected as if the
// foreign side had sent it. The Go side answers it, optionally prefixing the
// payload, and the answer is printed to stdout in wire form.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/praborrow/diplomacy"
	"github.com/sirupsen/logrus"
)

// CLI configuration
type CLIConfig struct {
	configPath  string
	logLevel    string
	replyPrefix string
	help        bool
}

// parseCLIFlags parses command-line flags and returns the configuration.
func parseCLIFlags(args []string) (*CLIConfig, *flag.FlagSet, error) {
	config := &CLIConfig{}
	fs := flag.NewFlagSet("diplomat", flag.ContinueOnError)

	fs.StringVar(&config.configPath, "config", "", "Path to a .toml or .yaml relay config")
	fs.StringVar(&config.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.StringVar(&config.replyPrefix, "reply-prefix", "", "Prefix added to every answered payload")
	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return config, fs, nil
}

// resolveRelayConfig loads the config file and applies flag overrides.
func resolveRelayConfig(cli *CLIConfig) (RelayConfig, error) {
	cfg, err := loadRelayConfig(cli.configPath)
	if err != nil {
		return RelayConfig{}, err
	}
	if cli.logLevel != "" {
		cfg.LogLevel = cli.logLevel
	}
	if cli.replyPrefix != "" {
		cfg.ReplyPrefix = cli.replyPrefix
	}
	if err := cfg.Validate(); err != nil {
		return RelayConfig{}, err
	}
	return cfg, nil
}

// printUsage prints the usage information.
func printUsage(fs *flag.FlagSet) {
	fmt.Println("Diplomat: envoy relay")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options] < envoys.txt\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  printf '42:hello\\n7:\\n' | %s -reply-prefix ack:\n", os.Args[0])
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command and returns the process exit code.
func run(args []string) int {
	cli, fs, err := parseCLIFlags(args)
	if err != nil {
		return 2
	}
	if cli.help {
		printUsage(fs)
		return 0
	}

	cfg, err := resolveRelayConfig(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if err := configureLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	if err := diplomacy.EstablishRelations(cfg.Options()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("Failed to establish relations")
		return 1
	}
	defer diplomacy.Dissolve()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &relay{replyPrefix: cfg.ReplyPrefix, out: os.Stdout}
	runErr := r.run(ctx, os.Stdin)

	if stats, err := diplomacy.CurrentStats(); err == nil {
		logrus.WithFields(logrus.Fields{
			"function":          "main",
			"accepted":          stats.Accepted,
			"dispatched":        stats.Dispatched,
			"rejected_incoming": stats.RejectedIncoming,
			"rejected_outbound": stats.RejectedOutbound,
			"skipped_lines":     r.skipped,
			"rejected_replies":  r.rejectedReplies,
		}).Info("Relay finished")
	}

	if runErr != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    runErr.Error(),
		}).Error("Relay stopped")
		return 1
	}
	return 0
}
