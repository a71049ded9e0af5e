package core

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/signalsfoundry/orbit-kinematics/kb"
)

// ContactWindow is an interval during which a link exists.
type ContactWindow struct {
	Link       kb.LinkKey
	Start, End float64 // simulation seconds
	MinLengthM float64 // shortest sampled length inside the window
}

// Duration returns End - Start.
func (w ContactWindow) Duration() float64 { return w.End - w.Start }

// ContactPlan groups windows by link.
type ContactPlan map[kb.LinkKey][]ContactWindow

// ForSatellite returns the windows of every link that touches id.
func (p ContactPlan) ForSatellite(id int) ContactPlan {
	out := make(ContactPlan)
	for key, windows := range p {
		if key.A == id || key.B == id {
			out[key] = windows
		}
	}
	return out
}

// Links returns the plan's link keys in ascending order.
func (p ContactPlan) Links() []kb.LinkKey {
	keys := make([]kb.LinkKey, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

// SampleContactWindows runs strategy over [from, to] every step seconds and
// records when each link opens and closes. A window still open at to is
// closed there. The model's time is restored before returning; callers must
// not update connectivity on m concurrently.
func SampleContactWindows(ctx context.Context, m *Model, strategy ConnectionStrategy, from, to, step float64) (ContactPlan, error) {
	if to < from {
		return nil, fmt.Errorf("SampleContactWindows: horizon %g before start %g", to, from)
	}
	if !(step > 0) {
		return nil, fmt.Errorf("SampleContactWindows: step must be positive, got %g", step)
	}

	saved := m.T()
	defer m.SetT(saved)

	plan := make(ContactPlan)
	open := make(map[kb.LinkKey]*ContactWindow)

	steps := int(math.Floor((to-from)/step + 1e-9))
	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := from + float64(i)*step

		m.SetT(t)
		topology, err := strategy.Run(m)
		if err != nil {
			return nil, fmt.Errorf("SampleContactWindows: t=%g: %w", t, err)
		}

		seen := make(map[kb.LinkKey]bool, topology.LinkCount())
		for _, l := range topology.Links() {
			key := kb.NewLinkKey(l.A, l.B)
			seen[key] = true
			if w, ok := open[key]; ok {
				w.MinLengthM = math.Min(w.MinLengthM, l.LengthM)
				continue
			}
			open[key] = &ContactWindow{Link: key, Start: t, MinLengthM: l.LengthM}
		}
		for key, w := range open {
			if seen[key] {
				continue
			}
			w.End = t
			plan[key] = append(plan[key], *w)
			delete(open, key)
		}
	}

	for key, w := range open {
		w.End = to
		plan[key] = append(plan[key], *w)
	}
	for _, windows := range plan {
		slices.SortFunc(windows, func(x, y ContactWindow) int { return cmp.Compare(x.Start, y.Start) })
	}
	return plan, nil
}
