package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeSplitsOnPunctuation(t *testing.T) {
	tokens := Tokenize("我在海边跑，后面有人追我！很害怕。")
	assert.Equal(t, []string{"我在海边跑", "后面有人追我", "很害怕"}, tokens)
}

func TestTokenizeDeduplicatesKeepingFirstSeen(t *testing.T) {
	tokens := Tokenize("梦，海，梦，山，海")
	assert.Equal(t, []string{"梦", "海", "山"}, tokens)
}

func TestTokenizeLowercasesAndStripsSymbols(t *testing.T) {
	tokens := Tokenize("EXAM @#* nightmare")
	assert.Equal(t, []string{"exam", "nightmare"}, tokens)
}

func TestTokenizeEmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("，。！？"))
}

func TestTokenizeIdempotent(t *testing.T) {
	// 把分词结果拼回去再分一次，结果不变
	inputs := []string{
		"昨晚梦见考试，很紧张",
		"我在海边跑，后面有人追我！很害怕。",
		"EXAM @#* nightmare",
		"梦，海，梦，山，海",
	}
	for _, text := range inputs {
		once := Tokenize(text)
		again := Tokenize(strings.Join(once, " "))
		assert.Equal(t, once, again, text)
	}
}
