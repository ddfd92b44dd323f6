/*
Package batch slices every sprite sheet selected by a list of paths.

A path is either a single image or a directory that is walked for images.
Sheets are decoded and sliced concurrently but the results are applied to
the sink one at a time. A sheet that fails is reported in its Result and
doesn't stop the remaining sheets.
*/
package batch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bodgit/spriteslice"
	"github.com/pkg/errors"
)

// Sink receives the sprites of each successfully sliced sheet
type Sink interface {
	Apply(path string, width, height int, sprites []spriteslice.SpriteDescriptor) error
}

// Result is the outcome of slicing one sheet
type Result struct {
	Path    string
	Width   int
	Height  int
	Sprites []spriteslice.SpriteDescriptor
	Err     error
}

// Empty reports whether the sheet was processed but produced no sprites
func (r Result) Empty() bool {
	return r.Err == nil && len(r.Sprites) == 0
}

// Batch slices sheets with the same parameters
type Batch struct {
	slicer  *spriteslice.Slicer
	sink    Sink
	logger  *log.Logger
	workers int
}

// New returns a Batch that slices with slicer and applies the results to
// sink, which may be nil. workers sheets are processed at once.
func New(slicer *spriteslice.Slicer, sink Sink, logger *log.Logger, workers int) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{
		slicer:  slicer,
		sink:    sink,
		logger:  logger,
		workers: workers,
	}
}

type job struct {
	index int
	path  string
	err   error
}

func hidden(name string) bool {
	return name != "." && name != ".." && strings.HasPrefix(name, ".")
}

func findSheets(ctx context.Context, paths []string) (<-chan job, <-chan error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		index := 0
		send := func(j job) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			j.index = index
			index++
			select {
			case out <- j:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		}

		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil {
				if err := send(job{path: path, err: err}); err != nil {
					errc <- err
					return
				}
				continue
			}

			if !info.IsDir() {
				if err := send(job{path: path}); err != nil {
					errc <- err
					return
				}
				continue
			}

			if err := filepath.Walk(path, func(file string, info os.FileInfo, err error) error {
				if err != nil {
					// Report the entry and carry on with the rest of the tree
					if err := send(job{path: file, err: err}); err != nil {
						return err
					}
					if info != nil && info.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}

				// Ignore any hidden files or directories
				if hidden(info.Name()) {
					if info.Mode().IsDir() {
						return filepath.SkipDir
					}
					return nil
				}

				if !info.Mode().IsRegular() {
					return nil
				}

				if _, ok := extensions[strings.ToLower(filepath.Ext(file))]; !ok {
					return nil
				}

				return send(job{path: file})
			}); err != nil {
				errc <- err
				return
			}
		}
	}()
	return out, errc
}

func (b *Batch) slice(ctx context.Context, path string, slice spriteslice.SliceSpec, pivot spriteslice.PivotSpec) Result {
	r := Result{Path: path}

	buf, err := Load(path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Width, r.Height = buf.Width(), buf.Height()

	r.Sprites, r.Err = b.slicer.Slice(ctx, buf, slice, pivot, BaseName(path))
	if r.Err != nil {
		r.Err = errors.Wrap(r.Err, path)
	}
	return r
}

func (b *Batch) sheetWorker(ctx context.Context, in <-chan job, out chan<- indexedResult, slice spriteslice.SliceSpec, pivot spriteslice.PivotSpec) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			var r Result
			if j.err != nil {
				r = Result{Path: j.path, Err: j.err}
			} else {
				r = b.slice(ctx, j.path, slice, pivot)
			}
			select {
			case out <- indexedResult{j.index, r}:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return errc
}

type indexedResult struct {
	index int
	Result
}

// Select expands paths into the list of sheets that Run would process, in
// the same order
func Select(ctx context.Context, paths []string) ([]string, error) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	jobs, errc := findSheets(ctx, paths)

	var files []string
	for j := range jobs {
		files = append(files, j.path)
	}

	if err := drain(cancelFunc, errc); err != nil {
		return nil, err
	}

	return files, nil
}

// Run slices every sheet found under paths. The returned results are in
// selection order and include any entry that could not be read. An error is
// only returned if ctx is cancelled, alongside the results gathered so far.
func (b *Batch) Run(ctx context.Context, paths []string, slice spriteslice.SliceSpec, pivot spriteslice.PivotSpec) ([]Result, error) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	jobs, errc := findSheets(ctx, paths)
	errcList = append(errcList, errc)

	out := make(chan indexedResult)
	var workerErrs []<-chan error
	for i := 0; i < b.workers; i++ {
		workerErrs = append(workerErrs, b.sheetWorker(ctx, jobs, out, slice, pivot))
	}
	workers := mergeErrors(workerErrs...)
	errcList = append(errcList, workers)

	done := make(chan struct{})
	var results []indexedResult
	go func() {
		defer close(done)
		// The sink is only ever called from this goroutine
		for r := range out {
			if r.Err == nil && b.sink != nil {
				if err := b.sink.Apply(r.Path, r.Width, r.Height, r.Sprites); err != nil {
					r.Err = errors.Wrapf(err, "%s: applying sprites", r.Path)
				}
			}
			switch {
			case r.Err != nil:
				b.logger.Printf("%v\n", r.Err)
			case len(r.Sprites) == 0:
				b.logger.Printf("%s: no sprites\n", r.Path)
			default:
				b.logger.Printf("%s: %d sprites\n", r.Path, len(r.Sprites))
			}
			results = append(results, r)
		}
	}()

	// Every stage has to finish before out can be closed
	err := drain(cancelFunc, errcList...)
	close(out)
	<-done

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	ordered := make([]Result, len(results))
	for i, r := range results {
		ordered[i] = r.Result
	}
	return ordered, err
}

// drain waits for every stage to close its error channel and returns the
// first error seen. onError is called once, as soon as that error arrives.
func drain(onError func(), errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			onError()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	out := make(chan error, len(cs))

	var wg sync.WaitGroup
	forward := func(c <-chan error) {
		defer wg.Done()
		for err := range c {
			out <- err
		}
	}

	wg.Add(len(cs))
	for _, c := range cs {
		go forward(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
