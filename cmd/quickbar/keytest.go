package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/quickbar/internal/input"
	"github.com/dshills/quickbar/internal/input/key"
)

func newKeytestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keytest",
		Short: "Show how key presses are decoded",
		Long: `Keytest opens the terminal and prints each key press the way the host
names it, marking the ones that close a plugin. Press Ctrl+C to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init screen: %w", err)
			}
			defer screen.Fini()
			return keyLoop(screen)
		},
	}
}

func keyLoop(screen tcell.Screen) error {
	var lines []string
	draw := func() {
		screen.Clear()
		_, h := screen.Size()
		drawLine(screen, 0, "press keys, Ctrl+C to exit")
		start := max(0, len(lines)-(h-2))
		for i, l := range lines[start:] {
			drawLine(screen, i+2, l)
		}
		screen.Show()
	}
	draw()

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			draw()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			lines = append(lines, describeKey(key.FromTcell(ev)))
			draw()
		}
	}
}

func describeKey(ev key.Event) string {
	s := ev.String()
	if input.IsCancel(ev) {
		s += "  (cancel)"
	}
	return s
}

func drawLine(screen tcell.Screen, y int, s string) {
	x := 0
	for _, r := range s {
		screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}
