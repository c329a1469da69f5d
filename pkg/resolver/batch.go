package resolver

import (
	"context"

	"github.com/zeromicro/go-zero/core/mr"
)

// ResolveMany resolves a batch of names over a bounded worker pool.
// Duplicate and empty names are collapsed before dispatch; the result
// is keyed by the input name as given.
func (e *Engine) ResolveMany(ctx context.Context, names []string) (map[string]Resolution, error) {
	if len(names) == 0 {
		return map[string]Resolution{}, nil
	}
	return mr.MapReduce(func(source chan<- string) {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			source <- n
		}
	}, func(name string, writer mr.Writer[Resolution], cancel func(error)) {
		writer.Write(e.Resolve(ctx, name))
	}, func(pipe <-chan Resolution, writer mr.Writer[map[string]Resolution], cancel func(error)) {
		out := make(map[string]Resolution)
		for r := range pipe {
			out[r.Input] = r
		}
		writer.Write(out)
	}, mr.WithContext(ctx), mr.WithWorkers(e.cfg.BatchWorkers))
}
