package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "first "},
		{Type: "server_tool_use"},
		{Type: "web_search_tool_result"},
		{Type: "text", Text: "second"},
	}}
	assert.Equal(t, "first second", resp.Text())
}

func TestMessageResponse_Text_Empty(t *testing.T) {
	resp := &MessageResponse{}
	assert.Empty(t, resp.Text())
}

func TestMessageResponse_CitedURLs_DeduplicatesInOrder(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", CitedURLs: []string{"https://a.fr", "https://b.fr"}},
		{Type: "text", CitedURLs: []string{"https://b.fr", "https://c.fr"}},
	}}
	assert.Equal(t, []string{"https://a.fr", "https://b.fr", "https://c.fr"}, resp.CitedURLs())
}

func TestToSDKTools_WebSearchOnly(t *testing.T) {
	tools := toSDKTools([]Tool{
		{Type: ToolWebSearch, MaxUses: 6},
		{Type: "unknown_tool"},
	})
	assert.Len(t, tools, 1)
	assert.NotNil(t, tools[0].OfWebSearchTool20250305)
}

func TestToSDKMessages_Roles(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	})
	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}
