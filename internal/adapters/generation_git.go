package adapters

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/ports"
	"config-packager/internal/shared"
	"config-packager/internal/types"
)

const (
	GitMethodID = "git"

	defaultCommitAuthor = "config-packager"
	defaultCommitEmail  = "config-packager@localhost"
)

// GitGenerationMethod writes packages into a git working tree and commits
// the result.  Location returns the commit id of the last run.
type GitGenerationMethod struct {
	Write   WriteGenerationMethod
	Message string

	mu     sync.Mutex
	commit string
}

func NewGitGenerationMethod(write WriteGenerationMethod, message string) *GitGenerationMethod {
	return &GitGenerationMethod{Write: write, Message: message}
}

func (m *GitGenerationMethod) ID() string   { return GitMethodID }
func (m *GitGenerationMethod) Name() string { return "Git commit" }
func (m *GitGenerationMethod) Weight() int  { return 2 }

func (m *GitGenerationMethod) Description() string {
	return "Write packages to the export folder and commit them to its git repository."
}

func (m *GitGenerationMethod) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit
}

func (m *GitGenerationMethod) Generate(ctx context.Context, req types.GenerationRequest) ([]types.GenerationResult, error) {
	root := m.Write.Root
	if err := ensureDir(root); err != nil {
		return nil, err
	}
	if _, err := runGit(ctx, root, "rev-parse", "--is-inside-work-tree"); err != nil {
		if _, err := runGit(ctx, root, "init"); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to initialize git repository").
				WithCause(err)
		}
	}
	results, err := m.Write.Generate(ctx, req)
	if err != nil {
		return results, err
	}
	var written []string
	for _, result := range results {
		if result.Success {
			written = append(written, result.PackageName)
		}
	}
	if len(written) == 0 {
		return results, nil
	}
	args := append([]string{"add", "-A", "--"}, written...)
	if _, err := runGit(ctx, root, args...); err != nil {
		return results, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stage exported packages").
			WithCause(err)
	}
	staged, err := hasStagedChanges(ctx, root)
	if err != nil {
		return results, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read git status").
			WithCause(err)
	}
	if staged {
		if _, err := runGit(ctx, root, m.commitArgs(ctx, root, written)...); err != nil {
			return results, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to commit exported packages").
				WithCause(err)
		}
	}
	head, err := runGit(ctx, root, "rev-parse", "HEAD")
	if err != nil {
		return results, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve commit").
			WithCause(err)
	}
	m.mu.Lock()
	m.commit = strings.TrimSpace(head)
	m.mu.Unlock()
	log.Ctx(ctx).Debug().Str("method", GitMethodID).Str("commit", m.Location()).Msg("packages committed")
	return results, nil
}

func (m *GitGenerationMethod) commitArgs(ctx context.Context, root string, written []string) []string {
	var args []string
	if email, err := runGit(ctx, root, "config", "--get", "user.email"); err != nil || strings.TrimSpace(email) == "" {
		args = append(args, "-c", "user.name="+defaultCommitAuthor, "-c", "user.email="+defaultCommitEmail)
	}
	message := m.Message
	if message == "" {
		message = fmt.Sprintf("Export %s", strings.Join(written, ", "))
	}
	return append(args, "commit", "-m", message)
}

// hasStagedChanges reports whether the index differs from HEAD.  Untracked
// and unstaged files in the tree are ignored.
func hasStagedChanges(ctx context.Context, dir string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "diff", "--cached", "--quiet")
	output, err := cmd.CombinedOutput()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, shared.CommandError(output, err)
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", shared.CommandError(output, err)
	}
	return string(output), nil
}

var _ ports.GenerationMethodPort = (*GitGenerationMethod)(nil)
