package cmd

import (
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "worklog"},
		{"zsh", "#compdef worklog"},
		{"fish", "complete -c worklog"},
		{"powershell", "worklog"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			env := newTestEnv(t)

			generateCompletion(tt.shell)

			env.assertExit(t, 0)
			if !strings.Contains(env.stdout.String(), tt.want) {
				t.Errorf("expected %q in %s completion", tt.want, tt.shell)
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	for _, shell := range []string{"", "tcsh", "Bash", " zsh"} {
		t.Run(shell, func(t *testing.T) {
			env := newTestEnv(t)

			generateCompletion(shell)

			env.assertExit(t, 1)
			if !strings.Contains(env.stderr.String(), "Unsupported shell") {
				t.Errorf("expected unsupported-shell error, got: %s", env.stderr.String())
			}
			if env.stdout.Len() != 0 {
				t.Errorf("expected no script output, got %d bytes", env.stdout.Len())
			}
		})
	}
}

func TestCompletionCmd_Args(t *testing.T) {
	if err := completionCmd.Args(completionCmd, []string{"bash"}); err != nil {
		t.Errorf("Args(bash) returned unexpected error: %v", err)
	}
	if err := completionCmd.Args(completionCmd, []string{"tcsh"}); err == nil {
		t.Error("Args(tcsh) should be rejected")
	}
	if err := completionCmd.Args(completionCmd, nil); err == nil {
		t.Error("Args() without a shell should be rejected")
	}
}

func TestLogCmd_CompletesCategories(t *testing.T) {
	newTestEnv(t)

	got, _ := logCmd.ValidArgsFunction(logCmd, nil, "")
	if len(got) != 4 || got[0] != "打印机维护" || got[3] != "其他" {
		t.Errorf("unexpected completions: %v", got)
	}

	got, _ = logCmd.ValidArgsFunction(logCmd, []string{"其他"}, "")
	if len(got) != 0 {
		t.Errorf("expected no completions after the category, got: %v", got)
	}
}
