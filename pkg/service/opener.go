package service

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Opener receives the URL of a selected document.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open implements Opener.
func (f OpenerFunc) Open(url string) error { return f(url) }

// SystemOpener hands documents to the desktop's default handler. Command
// overrides the platform default (xdg-open, open or start).
type SystemOpener struct {
	Command string
}

// Open implements Opener. The handler is started and not waited for.
func (o SystemOpener) Open(url string) error {
	name, args := o.command(url)
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (o SystemOpener) command(url string) (string, []string) {
	if o.Command != "" {
		return o.Command, []string{url}
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		return "xdg-open", []string{url}
	}
}
