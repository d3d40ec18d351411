package buildsys

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
)

// RemovalPlan lists the top-level entries of Root that the source removal would delete
type RemovalPlan struct {
	Root  string
	Files []string
	Dirs  []string
	// Skipped contains entries that are neither files, symlinks nor directories
	Skipped []string
}

// RemovalFailure describes an entry that couldn't be deleted
type RemovalFailure struct {
	Name string
	Dir  bool
	Err  error
}

// PlanRemoval lists everything in root except the entries named in keep. Nothing is deleted.
func PlanRemoval(root string, keep []string) (*RemovalPlan, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, name := range keep {
		keepSet[name] = true
	}

	entries, err := ioutil.ReadDir(root)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to list %s", root)
	}

	plan := &RemovalPlan{Root: root}
	for _, info := range entries {
		name := info.Name()
		if keepSet[name] {
			continue
		}

		mode := info.Mode()
		switch {
		case mode.IsDir():
			plan.Dirs = append(plan.Dirs, name)
		case mode.IsRegular() || mode&os.ModeSymlink != 0:
			plan.Files = append(plan.Files, name)
		default:
			plan.Skipped = append(plan.Skipped, name)
		}
	}

	sort.Strings(plan.Files)
	sort.Strings(plan.Dirs)
	return plan, nil
}

// Empty returns true if there's nothing to delete
func (p *RemovalPlan) Empty() bool {
	return len(p.Files) == 0 && len(p.Dirs) == 0
}

// Execute deletes the planned entries. It keeps going after failures and returns all of them.
func (p *RemovalPlan) Execute() []RemovalFailure {
	failures := make([]RemovalFailure, 0)

	for _, name := range p.Files {
		err := os.Remove(filepath.Join(p.Root, name))
		if err != nil && !eris.Is(err, os.ErrNotExist) {
			failures = append(failures, RemovalFailure{Name: name, Err: err})
		}
	}

	for _, name := range p.Dirs {
		err := os.RemoveAll(filepath.Join(p.Root, name))
		if err != nil {
			failures = append(failures, RemovalFailure{Name: name, Dir: true, Err: err})
		}
	}

	return failures
}

func removeSource(ctx context.Context, b *Build) error {
	plan, err := PlanRemoval(b.Root, b.Config.KeepNames())
	if err != nil {
		b.warn("couldn't remove all development files, ", "see error", err.Error())
		return nil
	}

	for _, name := range plan.Skipped {
		b.warn("skipped "+name+", ", "not a regular file or directory", "")
	}

	log(ctx).Debug().
		Strs("files", plan.Files).
		Strs("dirs", plan.Dirs).
		Msg("removing development files")

	for _, failure := range plan.Execute() {
		kind := "file"
		if failure.Dir {
			kind = "folder"
		}
		b.warn("failed to delete "+kind+": ", failure.Name, "because: "+failure.Err.Error())
	}

	return nil
}
