package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-qualifier/internal/model"
)

// fakeChat records every Slack call the notifier makes.
type fakeChat struct {
	reactions []string
	replies   []string
	messages  []string
	dmOpened  string

	reactionErr error
	replyErr    error
}

func (f *fakeChat) PostMessage(_ context.Context, channel, text string) error {
	f.messages = append(f.messages, channel+": "+text)
	return nil
}

func (f *fakeChat) PostThreadReply(_ context.Context, _, _, text string) error {
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeChat) AddReaction(_ context.Context, _, _, name string) error {
	if f.reactionErr != nil {
		return f.reactionErr
	}
	f.reactions = append(f.reactions, name)
	return nil
}

func (f *fakeChat) OpenDM(_ context.Context, userID string) (string, error) {
	f.dmOpened = userID
	return "D999", nil
}

func scoredLead(class model.Classification, score int) model.ScoredLead {
	return model.ScoredLead{
		Lead: model.Lead{
			Channel:  "C123",
			ThreadTS: "1700000000.000100",
			FullName: "Marie Dubois",
			Email:    "marie@cabinet.fr",
		},
		Verdict: model.Verdict{
			ProfileLabel: "Orthodontiste",
			Reasoning:    "Verified on doctolib.fr.",
		},
		Score:          score,
		Classification: class,
		Factors: []model.Factor{
			{Criterion: "name_verified", Points: 40},
			{Criterion: "pro_domain", Points: 20},
		},
	}
}

func TestReplyResult_Qualified(t *testing.T) {
	chat := &fakeChat{}
	n := New(chat, "U089")

	err := n.ReplyResult(context.Background(), scoredLead(model.ClassQualified, 90))
	require.NoError(t, err)

	assert.Equal(t, []string{"white_check_mark"}, chat.reactions)
	require.Len(t, chat.replies, 1)
	assert.Contains(t, chat.replies[0], "Lead qualified")
	assert.Contains(t, chat.replies[0], "90/100")
	assert.Contains(t, chat.replies[0], "Orthodontiste")
	assert.Contains(t, chat.replies[0], "name_verified +40")

	// Qualified leads trigger a DM to the configured recipient.
	assert.Equal(t, "U089", chat.dmOpened)
	require.Len(t, chat.messages, 1)
	assert.Contains(t, chat.messages[0], "D999:")
	assert.Contains(t, chat.messages[0], "Marie Dubois")
}

func TestReplyResult_Unqualified(t *testing.T) {
	chat := &fakeChat{}
	n := New(chat, "U089")

	err := n.ReplyResult(context.Background(), scoredLead(model.ClassUnqualified, 20))
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, chat.reactions)
	assert.Contains(t, chat.replies[0], "Not qualified")
	assert.Empty(t, chat.dmOpened, "no DM for unqualified leads")
	assert.Empty(t, chat.messages)
}

func TestReplyResult_Spam(t *testing.T) {
	chat := &fakeChat{}
	n := New(chat, "")

	err := n.ReplyResult(context.Background(), scoredLead(model.ClassSpam, 0))
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, chat.reactions)
	assert.Contains(t, chat.replies[0], "Spam detected")
}

func TestReplyResult_Possible(t *testing.T) {
	chat := &fakeChat{}
	n := New(chat, "U089")

	err := n.ReplyResult(context.Background(), scoredLead(model.ClassPossible, 50))
	require.NoError(t, err)

	assert.Equal(t, []string{"grey_question"}, chat.reactions)
	assert.Empty(t, chat.dmOpened)
}

func TestReplyResult_NoDMWithoutRecipient(t *testing.T) {
	chat := &fakeChat{}
	n := New(chat, "")

	err := n.ReplyResult(context.Background(), scoredLead(model.ClassQualified, 90))
	require.NoError(t, err)
	assert.Empty(t, chat.dmOpened)
}

func TestReplyResult_ReactionFailureStillReplies(t *testing.T) {
	chat := &fakeChat{reactionErr: errors.New("invalid_auth")}
	n := New(chat, "")

	err := n.ReplyResult(context.Background(), scoredLead(model.ClassQualified, 90))
	assert.Error(t, err)
	// The thread reply still went out despite the reaction failure.
	assert.Len(t, chat.replies, 1)
}

func TestReplyDegraded(t *testing.T) {
	chat := &fakeChat{}
	n := New(chat, "U089")

	lead := model.Lead{Channel: "C123", ThreadTS: "1.2", FullName: "Jean Dupont", Email: "jean@cabinet.fr"}
	err := n.ReplyDegraded(context.Background(), lead)
	require.NoError(t, err)

	require.Len(t, chat.replies, 1)
	assert.Contains(t, chat.replies[0], "Could not auto-verify")
	assert.Contains(t, chat.replies[0], "Jean Dupont")
	assert.Empty(t, chat.dmOpened)
}
