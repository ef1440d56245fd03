package registry_test

import (
	"errors"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

// brokenModule adds a few objects and then fails or panics.
type brokenModule struct {
	panics bool
}

func (brokenModule) Name() string        { return "broken" }
func (brokenModule) Description() string { return "fails halfway through create" }

func (m brokenModule) Create(b *scene.Batch, p vizcore.Params) (vizcore.Instance, error) {
	tmpl, err := b.Template(scene.Appearance{Opacity: 1})
	if err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		if _, err := b.AddShaded(scene.Primitive{Kind: scene.Box, Size: scene.One}, tmpl); err != nil {
			return nil, err
		}
	}
	if m.panics {
		panic("boom")
	}
	return nil, errors.New("out of geometry")
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var _ = Describe("Registry", func() {
	var (
		graph *scene.Memory
		reg   *registry.Registry
		p     vizcore.Params
	)

	BeforeEach(func() {
		graph = scene.NewMemory()
		reg = registry.Default(graph, quiet())
		p = vizcore.DefaultParams()
	})

	It("lists the catalogue in sorted order", func() {
		ids := reg.List()
		Expect(ids).To(HaveLen(12))
		Expect(ids).To(ContainElements("spiralArms", "fieldLines", "starfield"))
		Expect(ids[0]).To(Equal("crystalLattice"))
	})

	It("rejects duplicate ids", func() {
		m, ok := reg.Lookup("spiralArms")
		Expect(ok).To(BeTrue())
		err := reg.Register("spiralArms", m)
		Expect(err).To(MatchError(vizcore.ErrDuplicateVisualizer))
	})

	Describe("Activate", func() {
		It("builds the scene and moves to Created", func() {
			a, err := reg.Activate("spiralArms", p)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.State()).To(Equal(vizcore.Created))
			Expect(graph.Len()).To(Equal(a.Len()))
			Expect(reg.Current()).To(BeIdenticalTo(a))
		})

		It("leaves everything untouched for an unknown id", func() {
			a, err := reg.Activate("ringPulse", p)
			Expect(err).NotTo(HaveOccurred())
			before := graph.Snapshot()

			_, err = reg.Activate("nope", p)
			Expect(err).To(MatchError(vizcore.ErrUnknownVisualizer))
			Expect(graph.Snapshot()).To(Equal(before))
			Expect(reg.Current()).To(BeIdenticalTo(a))
			Expect(a.State()).To(Equal(vizcore.Created))
		})

		It("switches cleanly between visualizers", func() {
			a, err := reg.Activate("crystalLattice", p)
			Expect(err).NotTo(HaveOccurred())
			oldHandles := a.Batch().Objects()

			b, err := reg.Activate("helixStrands", p)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.State()).To(Equal(vizcore.Disposed))
			Expect(graph.Len()).To(Equal(b.Len()))
			Expect(graph.Materials()).To(Equal(b.Batch().Materials()))
			for _, h := range oldHandles {
				_, ok := graph.Node(h)
				Expect(ok).To(BeFalse(), "handle %d survived the switch", h)
			}

			Expect(reg.DeactivateCurrent()).To(Succeed())
			Expect(graph.Len()).To(BeZero())
			Expect(graph.Materials()).To(BeZero())
		})

		It("sanitises bad parameters instead of failing", func() {
			bad := vizcore.Params{Complexity: -3, PatternDensity: 1e9, ParticleCount: -1, Intensity: 1}
			a, err := reg.Activate("waveGrid", bad)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Params().Complexity).To(BeZero())
			Expect(a.Params().PatternDensity).To(Equal(float64(vizcore.MaxFactor)))
		})

		DescribeTable("a failing create leaves no objects behind",
			func(panics bool) {
				Expect(reg.Register("broken", brokenModule{panics: panics})).To(Succeed())
				_, err := reg.Activate("broken", p)
				Expect(err).To(HaveOccurred())
				Expect(graph.Len()).To(BeZero())
				Expect(graph.Materials()).To(BeZero())
				Expect(reg.Current()).To(BeNil())
			},
			Entry("returned error", false),
			Entry("panic", true),
		)
	})

	Describe("Animate", func() {
		It("reports nothing when idle", func() {
			_, ok := reg.Animate(vizcore.AudioFrame{}, 0)
			Expect(ok).To(BeFalse())
		})

		It("counts frames and moves to Animating", func() {
			a, err := reg.Activate("fieldLines", p)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 3; i++ {
				info, ok := reg.Animate(vizcore.AudioFrame{Magnitudes: []float64{0.5, 0.2}}, float64(i)/60)
				Expect(ok).To(BeTrue())
				Expect(info.Visualizer).To(Equal("fieldLines"))
				Expect(info.Frame).To(Equal(i + 1))
				Expect(info.Objects).To(Equal(a.Len()))
			}
			Expect(a.State()).To(Equal(vizcore.Animating))
		})

		It("does nothing for a disposed activation", func() {
			a, err := reg.Activate("fieldLines", p)
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.Deactivate(a)).To(Succeed())
			Expect(reg.Deactivate(a)).To(Succeed())
			_, ok := reg.Animate(vizcore.AudioFrame{}, 0)
			Expect(ok).To(BeFalse())
			Expect(a.Frames()).To(BeZero())
		})
	})

	Describe("Update", func() {
		It("fails with nothing active", func() {
			_, err := reg.Update(vizcore.ParamPatch{})
			Expect(err).To(MatchError(vizcore.ErrNotActive))
		})

		It("applies intensity in place", func() {
			a, err := reg.Activate("ringPulse", p)
			Expect(err).NotTo(HaveOccurred())
			i := 2.5
			b, err := reg.Update(vizcore.ParamPatch{Intensity: &i})
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeIdenticalTo(a))
			Expect(b.Params().Intensity).To(Equal(2.5))
		})

		It("rebuilds for structural changes", func() {
			a, err := reg.Activate("ringPulse", p)
			Expect(err).NotTo(HaveOccurred())
			c := 2.0
			b, err := reg.Update(vizcore.ParamPatch{Complexity: &c})
			Expect(err).NotTo(HaveOccurred())
			Expect(b).NotTo(BeIdenticalTo(a))
			Expect(a.State()).To(Equal(vizcore.Disposed))
			Expect(b.Len()).To(Equal(12))
			Expect(graph.Len()).To(Equal(12))
		})

		It("leaves nothing active when the rebuild fails", func() {
			a, err := reg.Activate("ringPulse", p)
			Expect(err).NotTo(HaveOccurred())
			graph.LimitAdds(4)
			c := 2.0
			_, err = reg.Update(vizcore.ParamPatch{Complexity: &c})
			Expect(err).To(HaveOccurred())
			Expect(a.State()).To(Equal(vizcore.Disposed))
			Expect(reg.Current()).To(BeNil())
			Expect(graph.Len()).To(BeZero())
			Expect(graph.Materials()).To(BeZero())
		})
	})

	It("reports disposal failures but still releases the rest", func() {
		a, err := reg.Activate("springBars", p)
		Expect(err).NotTo(HaveOccurred())
		graph.FailRemove(a.Batch().Objects()[0])

		err = reg.DeactivateCurrent()
		Expect(err).To(MatchError(vizcore.ErrResourceDisposal))
		Expect(graph.Len()).To(Equal(1))
		Expect(graph.Materials()).To(BeZero())
	})
})
