package notification

import (
	"os"
	"os/exec"
	"strconv"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/app/playback"
)

// LogSubscriber writes every notification to the global logger.
func LogSubscriber() Subscriber {
	return SubscriberFunc(func(n Notification) error {
		e := n.Event
		ev := zlog.Info()
		if e.Type == playback.EventTrackLoadFailed || e.Type == playback.EventNoTracks {
			ev = zlog.Warn().Err(e.Err)
		}
		if e.Track != nil {
			ev = ev.Str("track", e.Track.DisplayName()).Int("index", e.Index)
		}
		ev.Uint64("seq", n.SequenceNo).
			Str("state", e.State.String()).
			Dur("position", e.Position).
			Msgf("playback: %s", e.Type)
		return nil
	})
}

// HookSubscriber runs shell commands when a track starts. Commands are
// started without waiting, with PADBOX_TRACK_PATH, PADBOX_TRACK_NAME and
// PADBOX_TRACK_INDEX set in their environment.
type HookSubscriber struct {
	commands []string
	start    func(cmd *exec.Cmd) error
}

// NewHookSubscriber creates a hook subscriber for the given commands.
func NewHookSubscriber(commands []string) *HookSubscriber {
	return &HookSubscriber{
		commands: commands,
		start:    startDetached,
	}
}

// Notify implements Subscriber.
func (h *HookSubscriber) Notify(n Notification) error {
	e := n.Event
	if e.Type != playback.EventTrackStarted || e.Track == nil {
		return nil
	}

	var firstErr error
	for _, hook := range h.commands {
		zlog.Debug().Msgf("Executing track hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(),
			"PADBOX_TRACK_PATH="+e.Track.Path,
			"PADBOX_TRACK_NAME="+e.Track.DisplayName(),
			"PADBOX_TRACK_INDEX="+strconv.Itoa(e.Index),
		)
		if err := h.start(cmd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			zlog.Error().Err(err).Msgf("Track hook failed: %s", cmd.String())
		}
	}()
	return nil
}
