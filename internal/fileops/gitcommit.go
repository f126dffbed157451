/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package fileops

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitCommit is a FileOperations view of the resource tree as it existed at
// one git commit, used by the publisher to read the previous tree at the
// commit named by its --since flag without needing a separate worktree
// checkout.
type GitCommit struct {
	tree *object.Tree
}

// OpenGitCommit resolves commitish (a full or abbreviated commit hash, or
// any git revision go-git's ResolveRevision accepts) within the repository
// at repoDir and returns a FileOperations reading that commit's tree.
func OpenGitCommit(repoDir, commitish string) (*GitCommit, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return nil, fmt.Errorf("fileops: open repository at %s: %w", repoDir, err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(commitish))
	if err != nil {
		return nil, fmt.Errorf("fileops: resolve commit %s: %w", commitish, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("fileops: load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("fileops: load tree for commit %s: %w", hash, err)
	}
	return &GitCommit{tree: tree}, nil
}

func (g *GitCommit) ReadFile(_ context.Context, relPath string) ([]byte, error) {
	f, err := g.tree.File(relPath)
	if err != nil {
		if err == object.ErrFileNotFound {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("fileops: read %s: %w", relPath, err)
	}
	rc, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("fileops: open %s: %w", relPath, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (g *GitCommit) SubDirectories(_ context.Context, relPath string) ([]string, error) {
	sub, err := g.subtree(relPath)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	var out []string
	for _, e := range sub.Entries {
		if e.Mode.IsFile() {
			continue
		}
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out, nil
}

func (g *GitCommit) EnumerateFiles(_ context.Context, relPath string) ([]string, error) {
	sub, err := g.subtree(relPath)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	var out []string
	walker := object.NewTreeWalker(sub, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fileops: walk %s: %w", relPath, err)
		}
		if entry.Mode.IsFile() {
			out = append(out, path.Join(relPath, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (g *GitCommit) Exists(_ context.Context, relPath string) (bool, error) {
	if relPath == "" || relPath == "." {
		return true, nil
	}
	if _, err := g.tree.File(relPath); err == nil {
		return true, nil
	}
	if sub, err := g.subtree(relPath); err == nil && sub != nil {
		return true, nil
	}
	return false, nil
}

// CommitTree stages every file under the worktree at repoDir (as written
// there by the extractor) and commits it, returning the new commit hash.
// It walks the worktree through its billy.Filesystem rather than trusting
// AddOptions{All: true} to see files the extractor just wrote, since a
// fresh write is not guaranteed to be reflected in go-git's cached status
// until the filesystem has been walked at least once.
func CommitTree(repoDir, message, authorName, authorEmail string) (plumbing.Hash, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("fileops: open repository at %s: %w", repoDir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("fileops: open worktree at %s: %w", repoDir, err)
	}

	files, err := walkBillyFiles(wt.Filesystem, "")
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("fileops: walk worktree: %w", err)
	}
	for _, f := range files {
		if _, err := wt.Add(f); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("fileops: stage %s: %w", f, err)
		}
	}

	status, err := wt.Status()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("fileops: read status: %w", err)
	}
	if status.IsClean() {
		head, err := repo.Head()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("fileops: resolve HEAD: %w", err)
		}
		return head.Hash(), nil
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("fileops: commit: %w", err)
	}
	return hash, nil
}

// walkBillyFiles recursively lists every regular file under dir in fs,
// skipping .git, returning paths relative to fs's root.
func walkBillyFiles(fs billy.Filesystem, dir string) ([]string, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		rel := fs.Join(dir, e.Name())
		if e.IsDir() {
			sub, err := walkBillyFiles(fs, rel)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, rel)
	}
	return out, nil
}

// subtree resolves relPath to a *object.Tree, returning (nil, nil) if
// relPath does not name a directory in this commit's tree.
func (g *GitCommit) subtree(relPath string) (*object.Tree, error) {
	if relPath == "" || relPath == "." {
		return g.tree, nil
	}
	t, err := g.tree.Tree(relPath)
	if err != nil {
		if err == object.ErrDirectoryNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fileops: resolve directory %s: %w", relPath, err)
	}
	return t, nil
}
