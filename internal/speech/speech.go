// Package speech reads activity names aloud through an external synthesizer.
package speech

import (
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Speaker plays text aloud. Speak returns immediately; playback failures are
// the speaker's own business.
type Speaker interface {
	Speak(text, lang string)
}

type Nop struct{}

func (Nop) Speak(string, string) {}

// Command speaks by starting an espeak-compatible program:
// <name> -v <lang> <text>.
type Command struct {
	Name   string
	Logger *zap.Logger

	start func(cmd *exec.Cmd) error
}

func NewCommand(name string, logger *zap.Logger) *Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Command{Name: name, Logger: logger, start: startDetached}
}

func (c *Command) Speak(text, lang string) {
	text = strings.TrimSpace(text)
	if text == "" || c.Name == "" {
		return
	}

	cmd := exec.Command(c.Name, Args(text, lang)...)
	if err := c.start(cmd); err != nil {
		c.Logger.Warn("speech command failed", zap.String("command", c.Name), zap.Error(err))
		return
	}
	c.Logger.Debug("speaking", zap.String("text", text), zap.String("lang", lang))
}

// Args builds the engine arguments. "--" keeps names starting with a dash
// from being read as options.
func Args(text, lang string) []string {
	args := make([]string, 0, 4)
	if lang = strings.TrimSpace(lang); lang != "" {
		args = append(args, "-v", lang)
	}
	return append(args, "--", text)
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
