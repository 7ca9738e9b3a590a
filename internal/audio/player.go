package audio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Player plays an audio file and blocks until playback has finished.
type Player interface {
	Play(ctx context.Context, audioFile string) error
}

// CommandPlayer plays audio through a platform-specific command-line player.
type CommandPlayer struct {
	lookPath func(string) (string, error)
	goos     string
}

// NewCommandPlayer creates a player for the current platform
func NewCommandPlayer() *CommandPlayer {
	return &CommandPlayer{lookPath: exec.LookPath, goos: runtime.GOOS}
}

// command picks the player program for audioFile
func (p *CommandPlayer) command(ctx context.Context, audioFile string) (*exec.Cmd, error) {
	switch p.goos {
	case "darwin": // macOS
		return exec.CommandContext(ctx, "afplay", audioFile), nil
	case "linux":
		// mpg123 first since it handles MP3 files best
		candidates := [][]string{
			{"mpg123", "-q", audioFile},
			{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", audioFile},
			{"play", "-q", audioFile}, // SoX
			{"paplay", audioFile},
		}
		for _, c := range candidates {
			if _, err := p.lookPath(c[0]); err == nil {
				return exec.CommandContext(ctx, c[0], c[1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w. Install mpg123, ffplay, sox or paplay", ErrNoPlayer)
	case "windows":
		// Media Player via PowerShell waits until the file has been played
		script := fmt.Sprintf(`Add-Type -AssemblyName presentationCore; $p = New-Object System.Windows.Media.MediaPlayer; $p.Open('%s'); Start-Sleep -Milliseconds 500; $p.Play(); Start-Sleep -Seconds $p.NaturalDuration.TimeSpan.TotalSeconds`, audioFile)
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", p.goos)
	}
}

// Play implements Player
func (p *CommandPlayer) Play(ctx context.Context, audioFile string) error {
	cmd, err := p.command(ctx, audioFile)
	if err != nil {
		return err
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w\nOutput: %s", cmd.Args[0], err, string(output))
	}
	return nil
}
