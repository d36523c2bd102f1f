package files

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/TheMichaelB/filecrypt/internal/models"
	"github.com/TheMichaelB/filecrypt/internal/storage"
)

// ErrOutputWithBatch is returned when an explicit output name is given for
// more than one input.
var ErrOutputWithBatch = errors.New("an output name cannot be used with more than one input")

// BatchItem is the outcome for one file of a batch.
type BatchItem struct {
	Input   string
	Encrypt *EncryptResult
	Decrypt *DecryptResult
	Err     error
}

// BatchResult collects per-file outcomes in input order.
type BatchResult struct {
	Items []BatchItem
}

// Succeeded counts files processed without error.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts files that returned an error.
func (r *BatchResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// Err joins every per-file error, or returns nil.
func (r *BatchResult) Err() error {
	var errs []error
	for _, item := range r.Items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.Input, item.Err))
		}
	}
	return errors.Join(errs...)
}

// EncryptFiles encrypts inputs concurrently. Each file is sealed with its own
// nonce (and salt in password mode). A failing file does not stop the rest.
func (s *Service) EncryptFiles(ctx context.Context, inputs []string, opts EncryptOptions) (*BatchResult, error) {
	if len(inputs) > 1 && opts.Output != "" {
		return nil, ErrOutputWithBatch
	}

	result := &BatchResult{Items: make([]BatchItem, len(inputs))}
	s.runBatch(ctx, inputs, func(ctx context.Context, i int, input string) {
		o := opts
		o.Input = input
		res, err := s.EncryptFile(ctx, o)
		result.Items[i] = BatchItem{Input: input, Encrypt: res, Err: err}
	})

	s.logBatch("encrypt", result)
	return result, result.Err()
}

// DecryptFiles decrypts inputs concurrently. MetaPath and Output only apply
// to single-file batches; otherwise each input uses its own sidecar.
func (s *Service) DecryptFiles(ctx context.Context, inputs []string, opts DecryptOptions) (*BatchResult, error) {
	if len(inputs) > 1 && (opts.Output != "" || opts.MetaPath != "") {
		return nil, ErrOutputWithBatch
	}

	result := &BatchResult{Items: make([]BatchItem, len(inputs))}
	s.runBatch(ctx, inputs, func(ctx context.Context, i int, input string) {
		o := opts
		o.Input = input
		res, err := s.DecryptFile(ctx, o)
		result.Items[i] = BatchItem{Input: input, Decrypt: res, Err: err}
	})

	s.logBatch("decrypt", result)
	return result, result.Err()
}

func (s *Service) runBatch(ctx context.Context, inputs []string, fn func(ctx context.Context, i int, input string)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for i, input := range inputs {
		g.Go(func() error {
			// Cancelled items still get a result carrying ctx.Err().
			fn(gctx, i, input)
			return nil
		})
	}

	_ = g.Wait()
}

func (s *Service) logBatch(op string, result *BatchResult) {
	if len(result.Items) < 2 {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"operation": op,
		"files":     len(result.Items),
		"succeeded": result.Succeeded(),
		"failed":    result.Failed(),
	}).Info("Batch complete")
}

// ExpandInputs replaces directories with the files they directly contain.
// For encryption, existing containers and sidecars are skipped; for
// decryption only containers are kept. Plain file arguments pass through.
func (s *Service) ExpandInputs(paths []string, op models.Operation) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := s.store.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir {
			add(p)
			continue
		}

		entries, err := s.store.ListDir(p)
		if err != nil {
			return nil, err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

		for _, entry := range entries {
			if entry.IsDir || entry.IsSymlink {
				continue
			}
			if s.wants(entry, op) {
				add(entry.Path)
			}
		}
	}

	return out, nil
}

func (s *Service) wants(entry storage.FileInfo, op models.Operation) bool {
	switch op {
	case models.OperationDecrypt:
		return s.IsEncryptedName(entry.Path)
	default:
		return !s.IsEncryptedName(entry.Path) && !s.IsMetadataName(entry.Path)
	}
}
