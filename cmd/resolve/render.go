package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Underline(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	narrativeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Foreground(lipgloss.Color("86")). // green
			Padding(0, 1)
)

// render formats a processed turn for the terminal
func render(req *queue.TurnRequest, res *queue.TurnResult, width int) (string, error) {
	if width < 20 {
		width = 20
	}
	evs, err := res.DecodeEvents()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	turnNo := 0
	if res.State != nil {
		turnNo = res.State.Turn
	}
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Turn %d: %s", turnNo, req.Action.Text)))
	sb.WriteString("\n\n")

	sb.WriteString(headingStyle.Render("Events"))
	sb.WriteString("\n")
	for _, ev := range evs {
		line := events.Describe(ev)
		if ev.Kind() == events.KindTextNotice {
			line = noticeStyle.Render(line)
		}
		sb.WriteString(wordwrap.String("• "+line, width))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(headingStyle.Render("Enrichment"))
	sb.WriteString("\n")
	if res.Enrichment == nil {
		sb.WriteString(mutedStyle.Render("none available"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(mutedStyle.Render(strings.Join(res.Enrichment.ExecutionChain, " → ")))
		sb.WriteString("\n")
		for _, id := range res.Enrichment.ExecutionChain {
			data, _ := res.Enrichment.Data(id)
			raw, err := json.Marshal(data)
			if err != nil {
				return "", fmt.Errorf("failed to encode %s data: %w", id, err)
			}
			sb.WriteString(wordwrap.String(fmt.Sprintf("%s: %s", id, raw), width))
			sb.WriteString("\n")
		}
	}

	if res.Narration != nil {
		sb.WriteString("\n")
		body := wordwrap.String(res.Narration.Narrative, width-4)
		if len(res.Narration.SuggestedActions) > 0 {
			body += "\n\n" + mutedStyle.Render("Next: "+strings.Join(res.Narration.SuggestedActions, " · "))
		}
		sb.WriteString(narrativeStyle.Render(body))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
