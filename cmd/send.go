// cmd/send.go
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ColonelBlimp/cwkeyer/internal/recovery"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send WORDS...",
		Short: "Key the given words once and exit",
		Example: `  cwkeyer send CQ CQ DE M0ABC
  cwkeyer send -o console -w 40 "hello world"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSend,
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer recovery.HandlePanicFunc(func() { _ = sess.release() })

	sendErr := sess.send(ctx, strings.Fields(strings.Join(args, " ")))
	if errors.Is(sendErr, context.Canceled) {
		sendErr = nil
	}
	if sess.settings.Verbose {
		_, _ = cmd.OutOrStdout().Write([]byte("\n"))
	}
	return errors.Join(sendErr, sess.release())
}
