package cli

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestIsExitPhrase(t *testing.T) {
	for _, phrase := range []string{"exit", "q", "выход", "EXIT", "Q", "Выход"} {
		gt.True(t, isExitPhrase(phrase))
	}

	for _, phrase := range []string{"quit", "exit now", "qq", ""} {
		gt.False(t, isExitPhrase(phrase))
	}
}
