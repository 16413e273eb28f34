package inference

import "context"

// ctxCheckEvery is how many candidates are filtered between context checks.
const ctxCheckEvery = 1 << 14

// enumerateModels filters every candidate of g through th and returns the
// consistent worlds together with the number of candidates examined. An
// empty result is a valid answer, not an error.
func enumerateModels(ctx context.Context, g *grid, th *theory) ([]world, int, error) {
	var models []world
	examined := 0
	for w := range generateCandidates(g) {
		examined++
		if examined%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, examined, err
			}
		}
		if isConsistent(w, th) {
			models = append(models, w)
		}
	}
	return models, examined, nil
}
