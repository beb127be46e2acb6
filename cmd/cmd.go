/*
Package cmd implements the webgrep command line: a pattern, one or more seed
URLs, and a handful of flags controlling crawl depth and link filtering.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/webgrep/webgrep"
	"github.com/webgrep/webgrep/internal/glog"
)

// CommanderStreams holds the i/o functions the test harness can swap out to
// make os.Exit and the output streams testable.
type CommanderStreams struct {
	Printf func(format string, args ...interface{})
	Errorf func(format string, args ...interface{})
	Exit   func(status int)
}

// Streams installs cstream as the active CommanderStreams, returning the
// previous value so a test can restore it.
func Streams(cstream CommanderStreams) CommanderStreams {
	old := commander.Streams
	commander.Streams = cstream
	return old
}

// Execute runs the command specified on the process's command line.
func Execute() {
	commander.Execute()
}

var commander struct {
	*cobra.Command
	Streams CommanderStreams
}

var (
	maxDepth      int
	ignoreCase    bool
	excludeURLsRe string
	configPath    string
)

func initCommand() {
	if commander.Streams.Printf == nil {
		commander.Streams.Printf = func(format string, args ...interface{}) {
			fmt.Printf(format, args...)
		}
	}
	if commander.Streams.Errorf == nil {
		commander.Streams.Errorf = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format, args...)
		}
	}
	if commander.Streams.Exit == nil {
		commander.Streams.Exit = func(status int) {
			os.Exit(status)
		}
	}
}

func loadConfig(errorf func(string, ...interface{}), exit func(int)) webgrep.Config {
	cfg := webgrep.DefaultConfig()
	if configPath == "" {
		return cfg
	}
	loaded, err := webgrep.LoadConfigFile(cfg, configPath)
	if err != nil {
		errorf("Failed to load config %v: %v\n", configPath, err)
		exit(1)
	}
	return loaded
}

func init() {
	rootCommand := &cobra.Command{
		Use:   "webgrep PATTERN URL...",
		Short: "crawl a set of seed URLs, emitting the path to every page matching PATTERN",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			initCommand()
			errorf := commander.Streams.Errorf
			exit := commander.Streams.Exit

			patternSrc := args[0]
			seeds := args[1:]
			if ignoreCase {
				patternSrc = "(?i)" + patternSrc
			}
			pattern, err := regexp.Compile(patternSrc)
			if err != nil {
				errorf("Invalid pattern %q: %v\n", args[0], err)
				exit(1)
				return
			}

			var excludePattern *regexp.Regexp
			if excludeURLsRe != "" {
				excludePattern, err = regexp.Compile(excludeURLsRe)
				if err != nil {
					errorf("Invalid --exclude-urls-re %q: %v\n", excludeURLsRe, err)
					exit(1)
					return
				}
			}

			cfg := loadConfig(errorf, exit)
			if cmd.Flags().Changed("max-depth") {
				cfg.MaxDepth = maxDepth
			}
			glog.SetLevel(cfg.LogLevel)

			cache, err := webgrep.OpenCache(cfg.CacheDir, cfg.MaxPageTasks*4)
			if err != nil {
				errorf("Failed to initialize cache at %v: %v\n", cfg.CacheDir, err)
				exit(1)
				return
			}

			transport, err := webgrep.NewTransport(cfg)
			if err != nil {
				errorf("Failed to build HTTP transport: %v\n", err)
				exit(1)
				return
			}

			dispatcher := webgrep.NewDispatcher(cfg, cache, transport, pattern, excludePattern, os.Stdout)
			dispatcher.Run(seeds)
			exit(0)
		},
	}
	rootCommand.Flags().IntVarP(&maxDepth, "max-depth", "d", 1, "maximum link depth from seeds (0 = seeds only)")
	rootCommand.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "match PATTERN case-insensitively")
	rootCommand.Flags().StringVar(&excludeURLsRe, "exclude-urls-re", "", "regex; matching URLs are never enqueued")
	rootCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file to load")

	fetchCommand := &cobra.Command{
		Use:   "fetch URL",
		Short: "fetch a single URL through the rate-limited Fetcher and print what was classified, bypassing the cache and crawl loop",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			initCommand()
			printf := commander.Streams.Printf
			errorf := commander.Streams.Errorf
			exit := commander.Streams.Exit

			cfg := loadConfig(errorf, exit)
			transport, err := webgrep.NewTransport(cfg)
			if err != nil {
				errorf("Failed to build HTTP transport: %v\n", err)
				exit(1)
				return
			}
			fetcher := webgrep.NewFetcher(transport, cfg)
			outcome := fetcher.Get(context.Background(), args[0])
			if !outcome.Success() {
				printf("Error: %v\n", outcome.Err)
				exit(0)
				return
			}
			printf("Kind: %v\n", outcome.Body.Kind)
			printf("Body:\n%v\n", outcome.Body.MatchableText())
			exit(0)
		},
	}
	rootCommand.AddCommand(fetchCommand)

	commander.Command = rootCommand
}
