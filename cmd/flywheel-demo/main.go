package main

import (
	"fmt"
	"os"
	"time"

	flywheel "github.com/ccheshirecat/flywheel"
	"github.com/ccheshirecat/flywheel/config"
	"github.com/ccheshirecat/flywheel/input"
	"github.com/ccheshirecat/flywheel/stream"
)

func main() {
	cfg := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "flywheel-demo: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	e, err := flywheel.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flywheel-demo: %v\n", err)
		os.Exit(1)
	}
	defer e.Close()

	out := stream.New(0, 1, e.Width(), e.Height()-1, cfg.StreamMaxLines, cfg.StreamMaxLineCols)
	out.SetFg(flywheel.RGB(120, 200, 255))
	out.Append("flywheel demo - streaming tokens, q to quit\n")
	out.SetFg(flywheel.DefaultColor)

	tokens := []string{"The ", "quick ", "brown ", "fox ", "jumps ", "over ", "the ", "lazy ", "dog.\n"}
	next := 0

	for e.IsRunning() {
		e.BeginFrame()

		ev := e.PollEvent()
		switch ev.Type {
		case flywheel.EventKey:
			if ev.CharCode == 'q' {
				e.Stop()
			}
			if ev.KeyCode == input.KeyUp {
				out.ScrollUp(1)
			}
			if ev.KeyCode == input.KeyDown {
				out.ScrollDown(1)
			}
		case flywheel.EventResize:
			out.SetFg(flywheel.DefaultColor)
		case flywheel.EventShutdown:
			e.Stop()
		}

		if next < len(tokens) {
			out.Append(tokens[next])
			next++
		} else {
			next = 0
		}

		e.Clear()
		e.DrawText(0, 0, "flywheel-demo", flywheel.RGB(255, 200, 0), flywheel.DefaultColor)
		out.Render(e)

		e.EndFrame()
		time.Sleep(16 * time.Millisecond)
	}
}
