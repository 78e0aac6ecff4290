package chat

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/tapir/pkg/tool"
)

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("persona text", "prior memory", "the question", "web_search: searches")

	gt.S(t, prompt).Contains("persona text")
	gt.S(t, prompt).Contains("MEMORY:\nprior memory")
	gt.S(t, prompt).Contains("QUESTION: the question")
	gt.S(t, prompt).Contains("TOOLS:\nweb_search: searches")
	gt.S(t, prompt).Contains(tool.DirectiveOpen)
	gt.S(t, prompt).Contains("Think first, then act.")
}

func TestBuildPromptWithoutMemory(t *testing.T) {
	prompt := buildPrompt("persona", "", "query", "decl")
	gt.S(t, prompt).NotContains("MEMORY:")
}

func TestBuildPromptWithoutTools(t *testing.T) {
	prompt := buildPrompt("persona", "", "query", "")
	gt.S(t, prompt).NotContains("TOOLS:")
	gt.S(t, prompt).NotContains(tool.DirectiveOpen)
}

func TestBuildPromptDeterministic(t *testing.T) {
	a := buildPrompt("p", "m", "q", "t")
	b := buildPrompt("p", "m", "q", "t")
	gt.Equal(t, a, b)
}
