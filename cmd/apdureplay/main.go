package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/apdureplay/internal/adapters/log"
	"github.com/bft-labs/apdureplay/internal/cliconfig"
	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
	"github.com/bft-labs/apdureplay/pkg/apdureplay"
)

var longHelp = strings.TrimSpace(`
Replay APDU command frames against a hardware wallet or an emulator.

Frames are read one per line from a file, a single line of standard input, or
(not yet) a Ledger Live log. Anything that is not a hex digit is dropped, blank
and comment lines are skipped, and every remaining frame is exchanged in order
over one session: Speculos TCP by default, USB HID with --hid, or a serial line
with --serial. The first transport failure stops the run.

Configuration is read from $HOME/.apdureplay/config.toml, then APDUREPLAY_*
environment variables, then flags.
`)

var exampleUsage = strings.TrimSpace(`
  apdureplay file session.apdu
  apdureplay --condition "=> " file --follow speculos.log
  echo "e0c4000000" | apdureplay --hid stdin
  apdureplay --server 10.0.0.5 --port 40000 --connect-retries 5 file boot.apdu
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// sessionOpener opens the transport selected by cfg.
type sessionOpener func(ctx context.Context, cfg cliconfig.Config, logger ports.Logger) (ports.Session, error)

func openSession(ctx context.Context, cfg cliconfig.Config, logger ports.Logger) (ports.Session, error) {
	switch cfg.Transport() {
	case cliconfig.TransportHID:
		return apdureplay.OpenHID(apdureplay.HIDOptions{Timeout: cfg.Timeout, Logger: logger})
	case cliconfig.TransportSerial:
		return apdureplay.OpenSerial(cfg.Serial, cfg.BaudRate, cfg.Timeout)
	default:
		return apdureplay.DialTCP(ctx, cfg.Server, cfg.Port, apdureplay.DialOptions{
			Timeout: cfg.Timeout,
			Retries: cfg.ConnectRetries,
			Logger:  logger,
		})
	}
}

type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	follow  bool

	open   sessionOpener
	stdin  io.Reader
	logOut io.Writer
}

func newRootCmd(open sessionOpener, stdin io.Reader, logOut io.Writer) *cobra.Command {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		open:   open,
		stdin:  stdin,
		logOut: logOut,
	}

	root := &cobra.Command{
		Use:           "apdureplay",
		Short:         "Replay APDU frames against a hardware wallet or emulator",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.apdureplay/config.toml)")
	flags.BoolVar(&c.cfg.HID, "hid", c.cfg.HID, "use a USB HID device instead of TCP")
	flags.StringVar(&c.cfg.Server, "server", c.cfg.Server, "APDU server host")
	flags.IntVar(&c.cfg.Port, "port", c.cfg.Port, "APDU server port")
	flags.StringVar(&c.cfg.Condition, "condition", c.cfg.Condition, "strip this marker from lines that start with it")
	flags.StringVar(&c.cfg.Serial, "serial", c.cfg.Serial, "serial device path (replaces TCP)")
	flags.IntVar(&c.cfg.BaudRate, "baud", c.cfg.BaudRate, "serial baud rate")
	flags.DurationVar(&c.cfg.Timeout, "timeout", c.cfg.Timeout, "connect and exchange timeout")
	flags.IntVar(&c.cfg.ConnectRetries, "connect-retries", c.cfg.ConnectRetries, "extra TCP connection attempts")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	fileCmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Replay every frame of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.follow {
				return c.run(cmd, apdureplay.FollowLines(args[0]))
			}
			return c.run(cmd, apdureplay.FileLines(args[0]))
		},
	}
	fileCmd.Flags().BoolVar(&c.follow, "follow", false, "keep reading lines appended to the file until it is removed")

	stdinCmd := &cobra.Command{
		Use:   "stdin",
		Short: "Replay one frame read from standard input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, apdureplay.ReaderLine(c.stdin))
		},
	}

	logCmd := &cobra.Command{
		Use:   "log <path>",
		Short: "Replay frames from a Ledger Live log (unsupported)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// fails before a transport is opened, so no device is needed
			source := apdureplay.LedgerLiveLog(args[0])
			if err := source.Open(cmd.Context()); err != nil {
				return err
			}
			return c.run(cmd, source)
		},
	}

	root.AddCommand(fileCmd, stdinCmd, logCmd)
	return root
}

// resolve layers the config file and environment under the flags that were set.
func (c *cli) resolve(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	} else if !cliconfig.FileExists(cfgFile) {
		return fmt.Errorf("%w: config file %s not found", domain.ErrInvalidConfig, cfgFile)
	}

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	return c.cfg.Validate()
}

func (c *cli) run(cmd *cobra.Command, source ports.LineSource) error {
	if err := c.resolve(cmd); err != nil {
		return err
	}

	lvl, err := c.cfg.Level()
	if err != nil {
		return err
	}
	zl := cliconfig.NewLogger(c.logOut).Level(lvl).With().
		Str("run", uuid.NewString()).
		Logger()
	logger := logAdapter.NewZerologAdapterWithLogger(zl)

	logger.Debug("configuration",
		ports.String("transport", c.cfg.Transport()),
		ports.String("server", c.cfg.Server),
		ports.Int("port", c.cfg.Port),
		ports.String("serial", c.cfg.Serial),
		ports.String("condition", c.cfg.Condition),
		ports.Duration("timeout", c.cfg.Timeout),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := c.open(ctx, c.cfg, logger)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: open %s transport: %w", domain.ErrTransportFault, c.cfg.Transport(), err)
	}

	_, err = apdureplay.Replay(ctx, source, session,
		apdureplay.WithCondition(c.cfg.Condition),
		apdureplay.WithLogger(logger),
	)
	return err
}

func main() {
	log := cliconfig.Logger()

	root := newRootCmd(openSession, os.Stdin, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("apdureplay")
		os.Exit(1)
	}
}
