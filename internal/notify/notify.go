// Package notify posts qualification outcomes back to the chat workspace:
// a reaction and threaded summary on the source message, plus a direct
// message to the sales owner for qualified leads.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/model"
	"github.com/sells-group/lead-qualifier/pkg/slack"
)

const (
	reactionQualified   = "white_check_mark"
	reactionUnqualified = "x"
	reactionPossible    = "grey_question"
)

// Notifier writes qualification results back to Slack.
type Notifier struct {
	chat        slack.Client
	dmRecipient string
}

// New creates a Notifier. dmRecipient may be empty, in which case no direct
// messages are sent for qualified leads.
func New(chat slack.Client, dmRecipient string) *Notifier {
	return &Notifier{chat: chat, dmRecipient: dmRecipient}
}

// ReplyResult reacts to the original message and posts the scored summary in
// its thread. For qualified leads it also notifies the configured recipient
// by direct message. Partial failures are logged and folded into the
// returned error so the caller can record a warning without aborting.
func (n *Notifier) ReplyResult(ctx context.Context, scored model.ScoredLead) error {
	var errs []error

	reaction := reactionFor(scored.Classification)
	if err := n.chat.AddReaction(ctx, scored.Channel, scored.ThreadTS, reaction); err != nil {
		zap.L().Warn("reaction failed",
			zap.String("channel", scored.Channel),
			zap.Error(err))
		errs = append(errs, err)
	}

	if err := n.chat.PostThreadReply(ctx, scored.Channel, scored.ThreadTS, formatSummary(scored)); err != nil {
		zap.L().Warn("thread reply failed",
			zap.String("channel", scored.Channel),
			zap.Error(err))
		errs = append(errs, err)
	}

	if scored.Qualified() && n.dmRecipient != "" {
		if err := n.sendQualifiedDM(ctx, scored); err != nil {
			zap.L().Warn("qualified dm failed",
				zap.String("recipient", n.dmRecipient),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return eris.Wrap(errs[0], "notify: reply result")
	}
	return nil
}

// ReplyDegraded posts a manual-review notice when scoring could not run.
func (n *Notifier) ReplyDegraded(ctx context.Context, lead model.Lead) error {
	text := fmt.Sprintf(":warning: Could not auto-verify *%s* (%s). Please review this lead manually.",
		displayName(lead), lead.Identity())
	if err := n.chat.PostThreadReply(ctx, lead.Channel, lead.ThreadTS, text); err != nil {
		return eris.Wrap(err, "notify: reply degraded")
	}
	return nil
}

func (n *Notifier) sendQualifiedDM(ctx context.Context, scored model.ScoredLead) error {
	dm, err := n.chat.OpenDM(ctx, n.dmRecipient)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(":tada: New qualified lead: *%s* (%s) scored %d/100.",
		displayName(scored.Lead), scored.Identity(), scored.Score)
	return n.chat.PostMessage(ctx, dm, text)
}

func reactionFor(c model.Classification) string {
	switch c {
	case model.ClassQualified:
		return reactionQualified
	case model.ClassPossible:
		return reactionPossible
	default:
		return reactionUnqualified
	}
}

// formatSummary renders the threaded verdict message.
func formatSummary(scored model.ScoredLead) string {
	var b strings.Builder
	if scored.Qualified() {
		fmt.Fprintf(&b, ":white_check_mark: *Lead qualified* — %s\n", displayName(scored.Lead))
	} else if scored.Classification == model.ClassSpam {
		fmt.Fprintf(&b, ":no_entry_sign: *Spam detected* — %s\n", displayName(scored.Lead))
	} else {
		fmt.Fprintf(&b, ":x: *Not qualified* — %s\n", displayName(scored.Lead))
	}
	fmt.Fprintf(&b, "Score: *%d/100* (%s)\n", scored.Score, scored.Classification)
	if scored.Verdict.ProfileLabel != "" {
		fmt.Fprintf(&b, "Profile: %s\n", scored.Verdict.ProfileLabel)
	}
	if len(scored.Factors) > 0 {
		parts := make([]string, 0, len(scored.Factors))
		for _, f := range scored.Factors {
			parts = append(parts, fmt.Sprintf("%s +%d", f.Criterion, f.Points))
		}
		fmt.Fprintf(&b, "Factors: %s\n", strings.Join(parts, ", "))
	}
	if scored.Verdict.Reasoning != "" {
		fmt.Fprintf(&b, "> %s", scored.Verdict.Reasoning)
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayName(lead model.Lead) string {
	if lead.FullName != "" {
		return lead.FullName
	}
	if lead.Email != "" {
		return lead.Email
	}
	return "unknown lead"
}
