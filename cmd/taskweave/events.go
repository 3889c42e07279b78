package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/taskweave/taskweave/internal/orchestrator"
)

var (
	infoColor   = color.New(color.FgCyan)
	planColor   = color.New(color.FgBlue)
	stepColor   = color.New(color.FgWhite)
	verifyColor = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
)

// printEvent renders one run event to stdout.
func printEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventInfo:
		infoColor.Printf("• %s\n", ev.Message)
	case orchestrator.EventPlan:
		planColor.Println("plan:")
		fmt.Println(indent(ev.Message))
	case orchestrator.EventStepStart:
		stepColor.Printf("  [%d] %s: %s\n", ev.Step+1, ev.Action, ev.Message)
	case orchestrator.EventStepResult:
		if ev.Err != nil {
			errColor.Printf("  [%d] failed: %v\n", ev.Step+1, ev.Err)
		}
	case orchestrator.EventVerify:
		verifyColor.Printf("⏵ %s\n", ev.Message)
	case orchestrator.EventVerifyResult:
		if ev.Err != nil {
			errColor.Printf("✗ %s\n", ev.Message)
		} else {
			okColor.Printf("✓ %s\n", ev.Message)
		}
	case orchestrator.EventComplete:
		okColor.Printf("✓ %s\n", ev.Message)
	case orchestrator.EventError:
		if ev.Err != nil {
			errColor.Printf("✗ %s: %v\n", ev.Message, ev.Err)
		} else {
			errColor.Printf("✗ %s\n", ev.Message)
		}
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
