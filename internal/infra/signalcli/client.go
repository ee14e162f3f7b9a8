// internal/infra/signalcli/client.go
package signalcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"hort_notification_bot/internal/domain/recipient"

	"github.com/sirupsen/logrus"
)

// defaultCommandTimeout bounds a single signal-cli invocation. The binary
// has no timeout of its own and can hang on a dead transport session.
const defaultCommandTimeout = 2 * time.Minute

// Client implements the delivery.Client interface by invoking the external
// signal-cli binary. A mutex serializes all invocations so the keep-alive
// job and the poll loop never run signal-cli concurrently.
type Client struct {
	binPath string
	number  string
	timeout time.Duration
	log     *logrus.Entry

	mu sync.Mutex
}

func NewClient(binPath, number string, log *logrus.Entry) *Client {
	return &Client{
		binPath: binPath,
		number:  number,
		timeout: defaultCommandTimeout,
		log:     log,
	}
}

// Send delivers a message to a single recipient. A zero exit code from
// signal-cli is the only success signal.
func (c *Client) Send(ctx context.Context, rcpt recipient.Recipient, message string) error {
	var args []string
	switch rcpt.Kind {
	case recipient.KindIndividual:
		args = []string{"-u", c.number, "send", "-m", message, rcpt.ID}
	case recipient.KindGroup:
		args = []string{"-u", c.number, "send", "-g", rcpt.ID, "-m", message}
	default:
		return fmt.Errorf("unknown recipient kind: %q", rcpt.Kind)
	}

	c.log.WithFields(logrus.Fields{
		"recipient": rcpt.ID,
		"kind":      rcpt.Kind,
	}).Debug("Invoking signal-cli send")
	return c.run(ctx, args)
}

// Receive performs a short receive call, which keeps the underlying Signal
// session from expiring and drains pending sync messages.
func (c *Client) Receive(ctx context.Context) error {
	return c.run(ctx, []string{"-u", c.number, "receive", "--timeout", "1"})
}

func (c *Client) run(ctx context.Context, args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("signal-cli %s failed: %w (output: %s)", args[2], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Verify checks that the signal-cli binary exists and is executable. Called
// once at startup; a broken path is a configuration error and fatal.
func Verify(binPath string) error {
	info, err := os.Stat(binPath)
	if err != nil {
		return fmt.Errorf("signal-cli not found at %s: %w", binPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("signal-cli path %s is a directory", binPath)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("signal-cli at %s is not executable", binPath)
	}
	return nil
}
