// Package gpat keeps a linear git history and a directory of patch files in
// sync.
//
// An archive holds one file per commit, named <timestamp>.patch after the
// commit time in Unix seconds, containing the full diff of that commit
// against its parent (the first against the empty tree). Sorting the names
// numerically gives the commit order, so the archive alone rebuilds the
// chain and the chain alone rebuilds the archive.
//
// # Basic Usage
//
//	fs := billyfs.NewBaseOSFS()
//
//	repo, err := git.Open(ctx, &git.Options{FS: fs, Workdir: "/src/project"})
//	if err != nil {
//	    return err
//	}
//	arch, err := archive.Open(ctx, fs, "/backup/project.gpat")
//	if err != nil {
//	    return err
//	}
//
//	report, err := gpat.New(repo, arch, gpat.WithLogger(slog.Default())).Export(ctx)
//
// Import runs the other way, usually into a bare repository created on
// demand with git.OpenOrInit. Check compares both sides without writing.
//
// # Invariants
//
// Runs never rewrite existing data. Only the shorter side is extended, one
// entry at a time, and only after every position both sides hold has been
// verified. A violation stops the run with a *SyncError that names the
// phase and position reached and wraps one of the sentinel errors:
//
//	var syncErr *gpat.SyncError
//	if errors.As(err, &syncErr) && errors.Is(err, gpat.ErrContentDrift) {
//	    fmt.Println("drift at", syncErr.Position)
//	}
//
// Entries completed before a failure are kept; the next run picks up where
// the previous one stopped.
package gpat
