// cmd/root.go
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/cw"
	"github.com/ColonelBlimp/cwkeyer/internal/recovery"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps persistent flags to the config keys they override
var flagKeys = map[string]string{
	"device":    "device_index",
	"wpm":       "wpm",
	"pin":       "gpio_pin",
	"verbose":   "verbose",
	"output":    "outputs",
	"frequency": "tone_frequency",
	"debug":     "debug",
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cwkeyer",
		Short: "Key a GPIO line in Morse code",
		Long: `Reads phrases and keys them in International Morse code on a GPIO line,
an audio sidetone or the console, at the configured words per minute.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
		RunE:              runInteractive,
	}

	// Global flags (override config file)
	flags := rootCmd.PersistentFlags()
	flags.IntP("device", "d", -1, "sidetone audio device index (-1 for default)")
	flags.Float64P("wpm", "w", cw.DefaultWPM, "words per minute")
	flags.StringP("pin", "p", "17", "GPIO pin name or number")
	flags.BoolP("verbose", "v", false, "echo each word and its symbols")
	flags.StringSliceP("output", "o", []string{config.OutputGPIO}, "outputs to key: gpio, sidetone, console")
	flags.Float64P("frequency", "f", 600, "sidetone frequency in Hz")
	flags.BoolP("debug", "D", false, "enable debug output")

	rootCmd.AddCommand(newSendCmd(), newTableCmd())
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig binds the flags and loads the config file. Binding happens per
// run so a viper reset between runs keeps the flags wired.
func initConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// runInteractive prompts for phrases and keys each one until an empty line,
// end of input or an interrupt.
func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer recovery.HandlePanicFunc(func() { _ = sess.release() })
	sess.watchConfig()

	out := cmd.OutOrStdout()
	lines := readLines(ctx, cmd.InOrStdin())

	_, _ = fmt.Fprintln(out, "Phrase to send (Enter to quit)")
	var sendErr error
loop:
	for {
		_, _ = fmt.Fprint(out, ": ")

		var phrase string
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			phrase = strings.TrimSuffix(line, "\r")
		}
		if phrase == "" {
			break loop
		}

		words := strings.Fields(phrase)
		if len(words) == 0 {
			continue
		}
		if err := sess.send(ctx, words); err != nil {
			if !errors.Is(err, context.Canceled) {
				sendErr = err
			}
			break loop
		}
		if sess.settings.Verbose {
			_, _ = fmt.Fprintln(out)
		}
	}

	_, _ = fmt.Fprintln(out, "\nCleaning up...")
	releaseErr := sess.release()
	_, _ = fmt.Fprintln(out, "Exiting...")
	return errors.Join(sendErr, releaseErr)
}

// readLines feeds lines from r until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
