package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessagesRejectsEmptyList(t *testing.T) {
	err := ValidateMessages(nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestValidateMessagesRejectsUnknownRole(t *testing.T) {
	err := ValidateMessages([]Message{
		{Role: "system", Content: "提示词"},
		{Role: "tool", Content: "不支持的角色"},
	})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestValidateMessagesAcceptsStandardRoles(t *testing.T) {
	err := ValidateMessages([]Message{
		{Role: "system", Content: "提示词"},
		{Role: "user", Content: "我梦见了什么"},
		{Role: "assistant", Content: "嗯，我在听"},
	})
	assert.NoError(t, err)
}
